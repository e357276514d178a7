package irvalid

import (
	"fmt"
	"slices"
	"strings"

	"irkit/internal/diag"
	"irkit/internal/ir"
)

// CompareTables reports every dispatch table whose key order differs between
// two builds of the same module. Tables present in only one of them are
// reported too.
func CompareTables(before, after *ir.Module) *diag.Bag {
	bag := diag.NewBag(DefaultMaxDiagnostics)
	rep := diag.BagReporter{Bag: bag}

	for _, owner := range union(before.VTableOwners(), after.VTableOwners()) {
		a, aok := before.VTableKeys(owner)
		b, bok := after.VTableKeys(owner)
		pos := diag.AtObject("vtable " + owner)
		switch {
		case aok != bok:
			diag.ReportError(rep, diag.StrTableUnstable, pos, fmt.Sprintf("vtable of %s present in only one build", owner)).Emit()
		case !slices.Equal(a, b):
			diag.ReportError(rep, diag.StrTableUnstable, pos,
				fmt.Sprintf("vtable of %s changed order: [%s] then [%s]", owner, strings.Join(a, ", "), strings.Join(b, ", "))).Emit()
		}
	}

	for _, owner := range union(before.ITableOwners(), after.ITableOwners()) {
		a, aok := before.ITableKeys(owner)
		b, bok := after.ITableKeys(owner)
		pos := diag.AtObject("itable " + owner)
		switch {
		case aok != bok:
			diag.ReportError(rep, diag.StrTableUnstable, pos, fmt.Sprintf("itable of %s present in only one build", owner)).Emit()
		case !slices.EqualFunc(a, b, entryEqual):
			diag.ReportError(rep, diag.StrTableUnstable, pos,
				fmt.Sprintf("itable of %s changed order: %s then %s", owner, ir.NewInterfaceTable(a), ir.NewInterfaceTable(b))).Emit()
		}
	}
	bag.Sort()
	return bag
}

func entryEqual(a, b ir.InterfaceTableEntry) bool {
	return a.Name == b.Name && slices.Equal(a.Functions, b.Functions)
}

// union keeps the order of a and appends the names only b has.
func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, name := range b {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
