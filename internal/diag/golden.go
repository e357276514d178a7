package diag

import (
	"fmt"
	"sort"
	"strings"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Pos      Position
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics one per line in a stable order,
// suitable for golden files:
//
//	error STR2001 add/entry#0 phi has 2 labels but 1 operands
//
// The result is empty when there is nothing to render.
func FormatGoldenDiagnostics(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendDiagnostic(rendered, &diags[i], includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Pos != dj.Pos {
			return di.Pos.Less(dj.Pos)
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code, d.Pos.Short(), d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FormatDiagnostic renders one diagnostic for terminal output:
//
//	error[STR2001] function add, block entry, instr 0: phi has 2 labels but 1 operands
func FormatDiagnostic(d Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s] %s: %s", d.Severity.Label(), d.Code.ID(), d.Primary, sanitizeMessage(d.Message))
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "\n  note: %s: %s", n.Pos, sanitizeMessage(n.Msg))
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d *Diagnostic, includeNotes bool) []goldenDiagnostic {
	out = append(out, goldenDiagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Pos:      d.Primary,
		Message:  sanitizeMessage(d.Message),
	})
	if includeNotes {
		for _, note := range d.Notes {
			out = append(out, goldenDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Pos:      note.Pos,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}
	return out
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
