package irdump_test

import (
	"path/filepath"
	"strings"
	"testing"

	"irkit/internal/ir"
	"irkit/internal/irdump"
	"irkit/internal/samples"
	"irkit/internal/testkit"
)

func build(t *testing.T, name string) *ir.Module {
	t.Helper()
	m, err := samples.Build(name)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// TestDumpGlobalsGolden checks the full listing of the globals sample.
func TestDumpGlobalsGolden(t *testing.T) {
	got := irdump.String(build(t, "globals"), irdump.DumpOptions{Edges: true, Tables: true})
	testkit.Golden(t, filepath.Join("testdata", "globals.golden"), got)
}

// TestDumpAdd checks the minimal function without edge annotations.
func TestDumpAdd(t *testing.T) {
	got := irdump.String(build(t, "add"), irdump.DumpOptions{})
	want := "module add\nentry add\n\nfunction i32 add(i32 a, i32 b)\n  entry:\n    %r = add i32 %a, %b\n    return %r\n"
	if got != want {
		t.Errorf("dump differs:\n%s", testkit.Diff(want, got))
	}
}

// TestDumpLoopEdges checks the edge annotations of a loop header.
func TestDumpLoopEdges(t *testing.T) {
	got := irdump.String(build(t, "loop"), irdump.DumpOptions{Edges: true})
	for _, want := range []string{
		"  head:  ; preds=[entry, body] succs=[exit, body]\n",
		"    %i = phi i32 [entry, $0], [body, %i.next]\n",
		"    conditional_jump i32 ge, %i, %n, #exit\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dump missing %q:\n%s", want, got)
		}
	}
}

// TestDumpTables checks the table section of the dispatch sample.
func TestDumpTables(t *testing.T) {
	got := irdump.String(build(t, "dispatch"), irdump.DumpOptions{Tables: true})
	for _, want := range []string{
		"\nvtables=2\n  Shape: vtable {area, name}\n  Circle: vtable {area, name, radius}\n",
		"\nitables=2\n  Shape: itable {Named: {name}}\n  Circle: itable {Named: {name}, Measured: {area, radius}}\n",
		"structures=2\n  structure Shape {i8* vtable}\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dump missing %q:\n%s", want, got)
		}
	}
}

// TestDumpNode checks dumping a lone block and a lone instruction.
func TestDumpNode(t *testing.T) {
	var sb strings.Builder
	b := ir.NewBasicBlock("entry", ir.NewNoOperate(), ir.NewReturn(nil))
	if err := irdump.DumpNode(&sb, b, irdump.DumpOptions{Edges: true}); err != nil {
		t.Fatal(err)
	}
	if got, want := sb.String(), "  entry:\n    nop\n    return\n"; got != want {
		t.Errorf("block = %q, want %q", got, want)
	}

	sb.Reset()
	if err := irdump.DumpNode(&sb, ir.NewGoto("exit"), irdump.DumpOptions{}); err != nil {
		t.Fatal(err)
	}
	if got := sb.String(); got != "goto exit\n" {
		t.Errorf("instr = %q", got)
	}
}
