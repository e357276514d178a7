// Package samples builds small canned modules through irbuild. The CLI
// operates on them and package tests use them as fixtures.
package samples

import (
	"fmt"
	"slices"

	"irkit/internal/ir"
	"irkit/internal/irbuild"
)

// Sample is a named module recipe.
type Sample struct {
	Name        string
	Description string
	Build       func() (*ir.Module, error)
}

var all = []Sample{
	{Name: "add", Description: "i32 add(i32 a, i32 b) in one block", Build: Add},
	{Name: "loop", Description: "counting loop with a phi in its header", Build: Loop},
	{Name: "dispatch", Description: "two dispatch classes with vtables and itables", Build: Dispatch},
	{Name: "globals", Description: "global data, a global-init graph and a counter", Build: Globals},
	{Name: "broken", Description: "a module that fails validation", Build: Broken},
}

// All returns every sample in a fixed order.
func All() []Sample {
	return slices.Clone(all)
}

// Names returns the sample names in the order of All.
func Names() []string {
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

// Lookup finds a sample by name.
func Lookup(name string) (Sample, bool) {
	for _, s := range all {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}

// Build builds the named sample.
func Build(name string) (*ir.Module, error) {
	s, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown sample %q (have %v)", name, Names())
	}
	m, err := s.Build()
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", name, err)
	}
	return m, nil
}

// Add is the minimal function: one block, a calculate and a return.
func Add() (*ir.Module, error) {
	mb := irbuild.NewModule("add")
	f := mb.Function(ir.I32, "add")
	a := f.Param("a", ir.I32)
	b := f.Param("b", ir.I32)
	f.Block("entry")
	r := ir.NewVirtualRegister("r")
	f.CalcInto(r, ir.OpAdd, ir.I32, a, b)
	f.Return(r)
	if _, err := f.Finish(); err != nil {
		return nil, err
	}
	mb.EntryPoint("add")
	return mb.Finish()
}

// Loop sums 0..n-1. The header merges the initial and the incremented
// counter through phis.
func Loop() (*ir.Module, error) {
	mb := irbuild.NewModule("loop")
	zero := mb.Constant(ir.I32, 0)
	one := mb.Constant(ir.I32, 1)

	f := mb.Function(ir.I32, "sum")
	n := f.Param("n", ir.I32)
	i := ir.NewVirtualRegister("i")
	acc := ir.NewVirtualRegister("acc")
	nextI := ir.NewVirtualRegister("i.next")
	nextAcc := ir.NewVirtualRegister("acc.next")

	f.Block("entry")
	f.Goto("head")

	f.Block("head")
	labels := []string{"entry", "body"}
	f.PhiInto(i, ir.I32, labels, []ir.Operand{zero, nextI})
	f.PhiInto(acc, ir.I32, labels, []ir.Operand{zero, nextAcc})
	f.Jump(ir.CondGreaterEqual, ir.I32, i, n, "exit")

	f.Block("body")
	f.CalcInto(nextAcc, ir.OpAdd, ir.I32, acc, i)
	f.CalcInto(nextI, ir.OpAdd, ir.I32, i, one)
	f.Goto("head")

	f.Block("exit")
	f.Return(acc)
	if _, err := f.Finish(); err != nil {
		return nil, err
	}
	mb.EntryPoint("sum")
	return mb.Finish()
}

// Dispatch declares Shape and Circle with virtual and interface methods,
// stores Circle's resolved vtable into a fresh object and calls Circle's area
// through its vtable slot.
func Dispatch() (*ir.Module, error) {
	mb := irbuild.NewModule("dispatch")
	bytePtr := ir.NewPointerType(ir.I8)

	mb.Structure("Shape", ir.NewField("vtable", bytePtr))
	mb.Structure("Circle", ir.NewField("vtable", bytePtr), ir.NewField("radius", ir.Double))
	mb.Class(ir.DispatchClass{
		Name:       "Shape",
		Methods:    []string{"area", "name"},
		Interfaces: []ir.DispatchInterface{{Name: "Named", Methods: []string{"name"}}},
	})
	mb.Class(ir.DispatchClass{
		Name:       "Circle",
		Parent:     "Shape",
		Methods:    []string{"radius", "area"},
		Interfaces: []ir.DispatchInterface{{Name: "Measured", Methods: []string{"area", "radius"}}},
	})

	shapeArea := mb.Function(ir.Double, "Shape.area")
	shapeArea.Param("self", bytePtr)
	shapeArea.Block("entry")
	shapeArea.Return(mb.Constant(ir.Double, 0.0))

	shapeName := mb.Function(bytePtr, "Shape.name")
	shapeName.Param("self", bytePtr)
	shapeName.Block("entry")
	shapeName.Return(mb.Constant(bytePtr, "shape"))

	radius := mb.Function(ir.Double, "Circle.radius")
	self := radius.Param("self", bytePtr)
	radius.Block("entry")
	radius.Return(radius.Load(ir.Double, self))

	area := mb.Function(ir.Double, "Circle.area")
	self = area.Param("self", bytePtr)
	area.Block("entry")
	r := area.Load(ir.Double, self)
	area.Return(area.Calc(ir.OpMul, ir.Double, r, r))

	vtable := mb.VTableGlobal("Circle", func(class, method string) string {
		return class + "." + method
	})

	entry := mb.Function(ir.I32, "main")
	entry.Block("entry")
	obj := entry.Temp()
	// vtable pointer and radius
	entry.Emit(ir.NewMalloc(mb.Constant(ir.U64, uint64(16)), obj))
	vptr := entry.Load(bytePtr, ir.NewMacro("address", []string{vtable.Name}, nil))
	entry.Store(bytePtr, obj, vptr)
	slot := ir.NewMacro("vtable_slot", []string{"Circle", "area"}, []ir.Operand{obj})
	entry.Call(ir.Double, slot, []ir.Type{bytePtr}, []ir.Operand{obj})
	entry.Emit(ir.NewFree(obj))
	entry.Return(mb.Constant(ir.I32, 0))

	for _, f := range []*irbuild.FunctionBuilder{shapeArea, shapeName, radius, area, entry} {
		if _, err := f.Finish(); err != nil {
			return nil, err
		}
	}
	mb.EntryPoint("main")
	return mb.Finish()
}

// Globals declares initialised and zeroed globals, stores into one from the
// global-init graph and increments it from a function.
func Globals() (*ir.Module, error) {
	mb := irbuild.NewModule("globals")
	mb.Global("primes", ir.I32, 2, 3, 5, 7)
	mb.Global("greeting", ir.U8, uint8('h'), uint8('i'), uint8(0))
	counter := mb.Global("counter", ir.I64)
	addr := ir.NewMacro("address", []string{counter.Name}, nil)

	init := mb.GlobalInit()
	init.Block("init")
	init.Store(ir.I64, addr, mb.Constant(ir.I64, 1))
	init.Goto("done")
	init.Block("done")
	init.Emit(ir.NewNoOperate())
	if _, err := init.Finish(); err != nil {
		return nil, err
	}

	bump := mb.Function(ir.I64, "bump")
	bump.Block("entry")
	v := bump.Load(ir.I64, addr)
	w := bump.Calc(ir.OpAdd, ir.I64, v, mb.Constant(ir.I64, 1))
	bump.Store(ir.I64, addr, w)
	bump.Return(w)
	if _, err := bump.Finish(); err != nil {
		return nil, err
	}
	return mb.Finish()
}

// Broken builds without construction errors but breaks several validation
// rules: a jump to a missing block, an unreachable block, a phi whose labels
// do not match the predecessors and a global whose size disagrees with its
// values.
func Broken() (*ir.Module, error) {
	mb := irbuild.NewModule("broken")
	m := mb.Module()
	m.GlobalDataSection.Add(ir.NewGlobalData("pair", ir.I32, mb.Constant(ir.U64, uint64(6)),
		[]ir.Operand{mb.Constant(ir.I32, 1), mb.Constant(ir.I32, 2)}))

	f := mb.Function(ir.I32, "f")
	x := f.Param("x", ir.I32)
	f.Block("entry")
	f.Jump(ir.CondEqual, ir.I32, x, mb.Constant(ir.I32, 0), "missing")
	f.Block("join")
	f.PhiInto(ir.NewVirtualRegister("y"), ir.I32, []string{"entry", "orphan"}, []ir.Operand{x, x})
	f.Return(x)
	f.Block("orphan")
	f.Return(x)
	if _, err := f.Finish(); err != nil {
		return nil, err
	}
	mb.EntryPoint("main")
	return mb.Finish()
}
