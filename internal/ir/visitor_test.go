package ir_test

import (
	"slices"
	"strings"
	"testing"

	"irkit/internal/ir"
)

// addModule builds the module used across traversal tests: a single function
// add(a, b) returning a + b.
func addModule(t *testing.T) *ir.Module {
	t.Helper()
	m := ir.NewModule("m")
	cfg := ir.NewControlFlowGraph("add")
	cfg.AddBasicBlock(ir.NewBasicBlock("entry",
		ir.NewCalculate(false, ir.OpAdd, ir.I32, reg("a"), reg("b"), reg("c")),
		ir.NewReturn(reg("c")),
	))
	fn, err := ir.NewFunction(ir.I32, "add", 2, []*ir.Field{ir.NewField("a", ir.I32), ir.NewField("b", ir.I32)}, cfg)
	if err != nil {
		t.Fatalf("NewFunction: %v", err)
	}
	m.PushFunction(fn)
	return m
}

type kindRecorder struct {
	ir.BaseVisitor
	kinds []string
}

func (r *kindRecorder) VisitModule(m *ir.Module) bool {
	r.kinds = append(r.kinds, ir.KindOf(m))
	return true
}

func (r *kindRecorder) VisitFunction(f *ir.Function) bool {
	r.kinds = append(r.kinds, ir.KindOf(f))
	return true
}

func (r *kindRecorder) VisitBasicBlock(b *ir.BasicBlock) bool {
	r.kinds = append(r.kinds, ir.KindOf(b)+":"+b.Name)
	return true
}

func (r *kindRecorder) VisitCalculate(c *ir.Calculate) bool {
	r.kinds = append(r.kinds, ir.KindOf(c))
	return true
}

func (r *kindRecorder) VisitReturn(ret *ir.Return) bool {
	r.kinds = append(r.kinds, ir.KindOf(ret))
	return true
}

func (r *kindRecorder) VisitVirtualRegister(v *ir.VirtualRegister) bool {
	r.kinds = append(r.kinds, v.String())
	return true
}

// TestWalkAddFunction checks the visiting order over the minimal add function.
func TestWalkAddFunction(t *testing.T) {
	m := addModule(t)
	rec := &kindRecorder{}
	ir.Walk(rec, m)
	want := []string{"module", "function", "basic_block:entry", "calculate", "%a", "%b", "%c", "return", "%c"}
	if !slices.Equal(rec.kinds, want) {
		t.Errorf("visit order = %v\nwant %v", rec.kinds, want)
	}
}

type blockSkipper struct {
	ir.BaseVisitor
	instrs int
}

func (s *blockSkipper) VisitBasicBlock(*ir.BasicBlock) bool { return false }

func (s *blockSkipper) VisitReturn(*ir.Return) bool {
	s.instrs++
	return true
}

// TestWalkPrune checks that returning false skips the children of a node.
func TestWalkPrune(t *testing.T) {
	s := &blockSkipper{}
	ir.Walk(s, addModule(t))
	if s.instrs != 0 {
		t.Errorf("visited %d instructions under a pruned block", s.instrs)
	}
}

// TestInspectReachesEveryKind walks a module holding every node kind and
// checks that each one is reported.
func TestInspectReachesEveryKind(t *testing.T) {
	m := ir.NewModule("all")
	m.PushStructure(ir.NewStructure("S", ir.NewField("p", ir.NewPointerType(ir.Float))))
	m.ConstantPool.Push(ir.NewConstantPoolEntry(ir.Double, 1.0))
	m.GlobalDataSection.Add(ir.NewGlobalData("g", ir.I32, ir.NewConstant(0), nil))

	phi, err := ir.NewPhi(ir.I32, []string{"entry"}, []ir.Operand{ir.NewConstant(0)})
	if err != nil {
		t.Fatal(err)
	}
	cast, err := ir.NewTypeCast(ir.CastSext, ir.I8, reg("s"), ir.I16, reg("w"))
	if err != nil {
		t.Fatal(err)
	}
	call, err := ir.NewInvoke(ir.Void, ir.NewMacro("fn", nil, nil), nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	asm, err := ir.NewAsm("nop", nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	cj, err := ir.NewConditionalJump(false, ir.I32, ir.CondEqual, reg("a"), phi, "exit")
	if err != nil {
		t.Fatal(err)
	}
	cfg := ir.NewControlFlowGraph("f")
	cfg.AddBasicBlock(ir.NewBasicBlock("entry",
		ir.NewCalculate(false, ir.OpMul, ir.I32, reg("a"), reg("b"), reg("c")),
		ir.NewNot(false, ir.I32, reg("c"), reg("d")),
		ir.NewNegate(false, ir.I32, reg("d"), reg("e")),
		ir.NewIncrease(false, ir.I32, reg("e"), nil),
		ir.NewDecrease(false, ir.I32, reg("e"), nil),
		ir.NewMalloc(ir.NewConstant(0), reg("p")),
		ir.NewRealloc(reg("p"), ir.NewConstant(0), reg("q")),
		ir.NewStackAllocate(ir.NewConstant(0), reg("s")),
		ir.NewGet(ir.Void, reg("q"), reg("v")),
		ir.NewSet(ir.I32, reg("q"), reg("v")),
		ir.NewSetVirtualRegister(ir.NewVirtualTable([]string{"m"}), reg("vt")),
		ir.NewSetVirtualRegister(ir.NewInterfaceTable(nil), reg("it")),
		ir.NewFree(reg("q")),
		cast, call, asm, ir.NewNoOperate(),
		cj,
	))
	cfg.AddBasicBlock(ir.NewBasicBlock("mid", ir.NewGoto("exit")))
	cfg.AddBasicBlock(ir.NewBasicBlock("exit", ir.NewReturn(nil)))
	fn, err := ir.NewFunction(ir.Void, "f", 0, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	m.PushFunction(fn)

	seen := make(map[string]bool)
	ir.Inspect(m, func(n ir.Node) bool {
		seen[ir.KindOf(n)] = true
		return true
	})
	kinds := []string{
		"module", "structure", "field", "constant_pool", "constant_pool_entry",
		"global_data_section", "global_data", "cfg", "basic_block", "function",
		"int_type", "float_type", "double_type", "void_type", "pointer_type",
		"virtual_register", "constant", "macro", "phi", "virtual_table", "interface_table",
		"goto", "conditional_jump", "return", "calculate", "not", "negate", "increase",
		"decrease", "malloc", "free", "realloc", "stack_allocate", "get", "set",
		"set_virtual_register", "type_cast", "invoke", "asm", "nop",
	}
	if len(kinds) != 40 {
		t.Fatalf("kind list has %d entries", len(kinds))
	}
	for _, k := range kinds {
		if !seen[k] {
			t.Errorf("kind %s never visited", k)
		}
	}
}

// TestWalkOrderModule checks the top-level emission order of a module.
func TestWalkOrderModule(t *testing.T) {
	m := addModule(t)
	m.PushStructure(ir.NewStructure("S"))
	m.ConstantPool.Push(ir.NewConstantPoolEntry(ir.I32, 0))
	m.GlobalDataSection.Add(ir.NewGlobalData("g", ir.I32, nil, nil))

	var order []string
	ir.Inspect(m, func(n ir.Node) bool {
		switch n.(type) {
		case *ir.Module, *ir.Structure, *ir.ConstantPool, *ir.GlobalDataSection, *ir.ControlFlowGraph, *ir.Function:
			order = append(order, ir.KindOf(n))
		}
		return true
	})
	want := []string{"module", "structure", "constant_pool", "global_data_section", "cfg", "function", "cfg"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

type strayNode struct{}

func (strayNode) Accept(ir.Visitor) bool { return true }
func (strayNode) String() string         { return "stray" }

// TestWalkUnknownKindPanics checks that Walk refuses node kinds it cannot descend into.
func TestWalkUnknownKindPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "unexpected node") {
			t.Errorf("panic = %v", r)
		}
	}()
	ir.Walk(ir.BaseVisitor{}, strayNode{})
}

func TestModuleOrderAndReplacement(t *testing.T) {
	m := ir.NewModule("m")
	for _, name := range []string{"b", "a", "c"} {
		fn, err := ir.NewFunction(ir.Void, name, 0, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		m.PushFunction(fn)
	}
	again, err := ir.NewFunction(ir.I32, "a", 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	m.PushFunction(again)

	var names []string
	for _, fn := range m.Functions() {
		names = append(names, fn.Name)
	}
	if !slices.Equal(names, []string{"b", "a", "c"}) {
		t.Errorf("function order = %v", names)
	}
	if got, ok := m.Function("a"); !ok || got != again {
		t.Error("second push did not replace the first")
	}
	if _, ok := m.Structure("missing"); ok {
		t.Error("missing structure found")
	}

	m.SetVTableKeys("S", []string{"f"})
	m.SetITableKeys("T", []ir.InterfaceTableEntry{{Name: "I", Functions: []string{"g"}}})
	if got := m.VTableOwners(); !slices.Equal(got, []string{"S"}) {
		t.Errorf("VTableOwners() = %v", got)
	}
	if got := m.ITableOwners(); !slices.Equal(got, []string{"T"}) {
		t.Errorf("ITableOwners() = %v", got)
	}
}
