// Package diag defines the diagnostic model used by IR validation.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Info, Warning or Error, defined in severity.go.
//   - Code: compact numeric identifier (see codes.go) with a stable string
//     form. REF codes are unresolved names or indices, STR codes are broken
//     structural invariants, WRN codes are legal but suspicious IR.
//   - Message: short human oriented text.
//   - Primary: the Position of the finding, a function name, block name and
//     instruction index, or a module-level object such as "structure S".
//   - Notes: optional secondary positions adding context.
//
// # Emitting diagnostics
//
// Passes report through a Reporter so emission stays decoupled from storage.
// BagReporter collects into a Bag, which supports sorting, deduplication and
// filtering; DedupReporter drops exact repeats before forwarding. For richer
// diagnostics use ReportError/ReportWarning, chain WithNote and call Emit.
//
// Package diag performs no IO. Rendering for terminals and golden files is
// provided by FormatDiagnostic and FormatGoldenDiagnostics.
package diag
