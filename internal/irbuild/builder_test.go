package irbuild_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"irkit/internal/ir"
	"irkit/internal/irbuild"
)

func succNames(g *ir.ControlFlowGraph, name string) []string {
	id, ok := g.Lookup(name)
	if !ok {
		return nil
	}
	var out []string
	for _, s := range g.Successors(id) {
		out = append(out, g.Block(s).Name)
	}
	return out
}

// TestLinkEdges checks edge derivation for each terminator kind.
func TestLinkEdges(t *testing.T) {
	cj, err := ir.NewConditionalJump(false, ir.I32, ir.CondGreaterEqual, ir.NewVirtualRegister("i"), ir.NewVirtualRegister("n"), "exit")
	if err != nil {
		t.Fatal(err)
	}
	g := ir.NewControlFlowGraph("loop")
	g.AddBasicBlock(ir.NewBasicBlock("entry", ir.NewNoOperate()))
	g.AddBasicBlock(ir.NewBasicBlock("head", cj))
	g.AddBasicBlock(ir.NewBasicBlock("body", ir.NewGoto("head")))
	g.AddBasicBlock(ir.NewBasicBlock("exit", ir.NewReturn(nil)))
	g.AddBasicBlock(ir.NewBasicBlock("stray", ir.NewGoto("nowhere")))

	irbuild.LinkEdges(g)

	tests := []struct {
		block string
		want  []string
	}{
		{"entry", []string{"head"}},
		{"head", []string{"exit", "body"}},
		{"body", []string{"head"}},
		{"exit", nil},
		{"stray", nil},
	}
	for _, tt := range tests {
		if got := succNames(g, tt.block); !slices.Equal(got, tt.want) {
			t.Errorf("successors(%s) = %v, want %v", tt.block, got, tt.want)
		}
	}
	if got := g.InDegree("head"); got != 2 {
		t.Errorf("InDegree(head) = %d, want 2", got)
	}

	// Relinking is idempotent.
	irbuild.LinkEdges(g)
	if got := len(g.Edges()); got != 4 {
		t.Errorf("edges after relink = %d, want 4", got)
	}
}

// TestBuildAddFunction builds add(a, b) and checks the rendered function.
func TestBuildAddFunction(t *testing.T) {
	mb := irbuild.NewModule("m")
	f := mb.Function(ir.I32, "add")
	a := f.Param("a", ir.I32)
	b := f.Param("b", ir.I32)
	f.Block("entry")
	r := ir.NewVirtualRegister("r")
	f.CalcInto(r, ir.OpAdd, ir.I32, a, b)
	f.Return(r)
	fn, err := f.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	want := "function i32 add(i32 a, i32 b) {\nentry:\n  %r = add i32 %a, %b\n  return %r\n}"
	if got := fn.String(); got != want {
		t.Errorf("function =\n%s\nwant\n%s", got, want)
	}

	m, err := mb.Finish()
	if err != nil {
		t.Fatalf("module Finish: %v", err)
	}
	if got, ok := m.Function("add"); !ok || got != fn {
		t.Error("function was not registered")
	}
}

func TestBuilderCollectsErrors(t *testing.T) {
	mb := irbuild.NewModule("m")
	f := mb.Function(ir.Void, "bad")
	f.Return(nil) // before any block
	f.Block("entry")
	f.Call(ir.I32, ir.NewVirtualRegister("g"), []ir.Type{ir.I32}, nil)
	f.Cast(ir.CastTrunc, ir.I8, ir.NewVirtualRegister("x"), ir.I64)
	f.Return(nil)
	f.Goto("entry") // after the terminator
	f.Block("entry")

	_, err := f.Finish()
	if err == nil {
		t.Fatal("expected errors")
	}
	if !errors.Is(err, ir.ErrArityMismatch) || !errors.Is(err, ir.ErrInvalidCast) {
		t.Errorf("err = %v, want arity and cast errors", err)
	}
	for _, frag := range []string{"before the first block", "after the terminator", "declared twice"} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("err missing %q:\n%v", frag, err)
		}
	}
	if _, ok := mb.Module().Function("bad"); ok {
		t.Error("failed function was registered")
	}
	if _, err := mb.Finish(); err == nil {
		t.Error("module Finish dropped the function errors")
	}
}

func TestBuilderGlobalsAndTables(t *testing.T) {
	mb := irbuild.NewModule("m")
	d := mb.Global("primes", ir.I32, 2, 3, 5)
	if got, want := d.String(), "global i32 primes, size=$3, values=[$0, $1, $2]"; got != want {
		t.Errorf("global = %q, want %q", got, want)
	}
	size := mb.Module().ConstantPool.Entry(d.Size.(*ir.Constant).Index)
	if v, ok := size.IntValue(); !ok || v != 12 {
		t.Errorf("size = %v", size)
	}
	if c := mb.Constant(ir.I32, 3); c.Index != 1 {
		t.Errorf("interned constant index = %d, want 1", c.Index)
	}

	mb.Structure("Base", ir.NewField("id", ir.I64))
	mb.Structure("Derived", ir.NewField("id", ir.I64), ir.NewField("extra", ir.I32))
	mb.Class(ir.DispatchClass{Name: "Base", Methods: []string{"describe"}})
	mb.Class(ir.DispatchClass{
		Name:       "Derived",
		Parent:     "Base",
		Methods:    []string{"extend", "describe"},
		Interfaces: []ir.DispatchInterface{{Name: "Show", Methods: []string{"show"}}},
	})
	m, err := mb.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if keys, _ := m.VTableKeys("Derived"); !slices.Equal(keys, []string{"describe", "extend"}) {
		t.Errorf("Derived vtable = %v", keys)
	}
	if _, ok := m.ITableKeys("Base"); ok {
		t.Error("Base has no interfaces but got an itable")
	}
	if got := m.ITableOwners(); !slices.Equal(got, []string{"Derived"}) {
		t.Errorf("ITableOwners() = %v", got)
	}
}

func TestBuilderGlobalInit(t *testing.T) {
	mb := irbuild.NewModule("m")
	g := mb.Global("counter", ir.I64)
	init := mb.GlobalInit()
	init.Block("init")
	init.Store(ir.I64, ir.NewMacro("address", []string{g.Name}, nil), mb.Constant(ir.I64, 1))
	init.Goto("done")
	init.Block("done")
	if _, err := init.Finish(); err != nil {
		t.Fatal(err)
	}
	m, err := mb.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if got := succNames(m.GlobalInit, "init"); !slices.Equal(got, []string{"done"}) {
		t.Errorf("global init edges = %v", got)
	}
}

// TestBuilderVTableGlobal checks that vtable globals resolve each key to
// its most derived implementation and that unknown classes fail Finish.
func TestBuilderVTableGlobal(t *testing.T) {
	mb := irbuild.NewModule("m")
	mb.Class(ir.DispatchClass{Name: "Base", Methods: []string{"describe", "id"}})
	mb.Class(ir.DispatchClass{Name: "Derived", Parent: "Base", Methods: []string{"extend", "describe"}})
	impl := func(class, method string) string { return class + "." + method }

	g := mb.VTableGlobal("Derived", impl)
	if g.Name != "Derived.vtable" || len(g.Values) != 1 {
		t.Fatalf("global = %v", g)
	}
	if got, want := g.Values[0].String(), "vtable {Derived.describe, Base.id, Derived.extend}"; got != want {
		t.Errorf("vtable = %s, want %s", got, want)
	}
	if !ir.TypesEqual(g.Type, ir.NewPointerType(ir.I8)) {
		t.Errorf("type = %s", g.Type)
	}
	if _, err := mb.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	mb = irbuild.NewModule("m")
	mb.VTableGlobal("Ghost", impl)
	if _, err := mb.Finish(); err == nil {
		t.Error("vtable of an unregistered class accepted")
	}
}
