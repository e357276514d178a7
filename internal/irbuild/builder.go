// Package irbuild is the construction front door for IR: it wraps the ir
// constructors, collects their errors, and populates CFG edges when a
// function is finished.
package irbuild

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"irkit/internal/ir"
)

// ModuleBuilder accumulates a module. Errors from individual constructors are
// collected and returned together by Finish.
type ModuleBuilder struct {
	m       *ir.Module
	classes []ir.DispatchClass
	errs    []error
}

func NewModule(name string) *ModuleBuilder {
	return &ModuleBuilder{m: ir.NewModule(name)}
}

// Module returns the module under construction.
func (b *ModuleBuilder) Module() *ir.Module {
	return b.m
}

// Constant interns a literal in the constant pool and returns an operand
// referring to it.
func (b *ModuleBuilder) Constant(t ir.Type, value any) *ir.Constant {
	return ir.NewConstant(b.m.ConstantPool.Intern(ir.NewConstantPoolEntry(t, value)))
}

// Structure declares a structure.
func (b *ModuleBuilder) Structure(name string, fields ...*ir.Field) *ir.Structure {
	s := ir.NewStructure(name, fields...)
	b.m.PushStructure(s)
	return s
}

// Global declares a global of type t initialised with values. Size is set to
// the byte size of the initialiser so the two stay consistent; without values
// the global is one zeroed element of t.
func (b *ModuleBuilder) Global(name string, t ir.Type, values ...any) *ir.GlobalData {
	var ops []ir.Operand
	for _, v := range values {
		ops = append(ops, b.Constant(t, v))
	}
	size, err := safecast.Conv[uint64](max(len(values), 1) * ir.SizeOf(t))
	if err != nil {
		b.fail(fmt.Errorf("global %s: size: %w", name, err))
	}
	d := ir.NewGlobalData(name, t, b.Constant(ir.U64, size), ops)
	b.m.GlobalDataSection.Add(d)
	return d
}

// Class registers a structure taking part in dynamic dispatch. Its table
// layouts are computed by Finish.
func (b *ModuleBuilder) Class(c ir.DispatchClass) {
	b.classes = append(b.classes, c)
}

// Classes returns the registered dispatch classes.
func (b *ModuleBuilder) Classes() []ir.DispatchClass {
	return b.classes
}

// VTableGlobal declares a global "<class>.vtable" holding the resolved
// virtual table of class, one pointer per key. impl names the function that
// implements a method for the class defining it. The classes involved must
// already be registered.
func (b *ModuleBuilder) VTableGlobal(class string, impl func(class, method string) string) *ir.GlobalData {
	ptr := ir.NewPointerType(ir.I8)
	vt, err := ir.ResolveVTable(b.classes, class, impl)
	if err != nil {
		b.fail(fmt.Errorf("vtable global %s: %w", class, err))
		vt = ir.NewVirtualTable(nil)
	}
	size, err := safecast.Conv[uint64](ir.SizeOf(ptr))
	if err != nil {
		b.fail(fmt.Errorf("vtable global %s: size: %w", class, err))
	}
	d := ir.NewGlobalData(class+".vtable", ptr, b.Constant(ir.U64, size), []ir.Operand{vt})
	b.m.GlobalDataSection.Add(d)
	return d
}

// EntryPoint names the program entry function.
func (b *ModuleBuilder) EntryPoint(name string) {
	b.m.SetEntryPoint(name)
}

// GlobalInit returns a builder appending to the module's global-init graph.
func (b *ModuleBuilder) GlobalInit() *FunctionBuilder {
	return &FunctionBuilder{mb: b, name: "<global_init>", cfg: b.m.GlobalInit, init: true}
}

// Function starts a function returning ret.
func (b *ModuleBuilder) Function(ret ir.Type, name string) *FunctionBuilder {
	return &FunctionBuilder{mb: b, ret: ret, name: name, cfg: ir.NewControlFlowGraph(name)}
}

func (b *ModuleBuilder) fail(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

// Finish lays out the dispatch tables of every registered class, links the
// global-init edges and returns the module together with every error
// collected during construction.
func (b *ModuleBuilder) Finish() (*ir.Module, error) {
	for _, c := range b.classes {
		keys, err := ir.VTableLayout(b.classes, c.Name)
		if err != nil {
			b.fail(err)
			continue
		}
		if len(keys) > 0 {
			b.m.SetVTableKeys(c.Name, keys)
		}
		entries, err := ir.ITableLayout(b.classes, c.Name)
		if err != nil {
			b.fail(err)
			continue
		}
		if len(entries) > 0 {
			b.m.SetITableKeys(c.Name, entries)
		}
	}
	LinkEdges(b.m.GlobalInit)
	return b.m, errors.Join(b.errs...)
}

// FunctionBuilder emits instructions into the current block of one function.
type FunctionBuilder struct {
	mb     *ModuleBuilder
	ret    ir.Type
	name   string
	params []*ir.Field
	locals []*ir.Field
	cfg    *ir.ControlFlowGraph
	cur    *ir.BasicBlock
	temps  int
	init   bool
	errs   []error
}

// Param declares the next parameter and returns the register holding it.
func (f *FunctionBuilder) Param(name string, t ir.Type) *ir.VirtualRegister {
	f.params = append(f.params, ir.NewField(name, t))
	return ir.NewVirtualRegister(name)
}

// Local declares a frame slot.
func (f *FunctionBuilder) Local(name string, t ir.Type) *ir.VirtualRegister {
	f.locals = append(f.locals, ir.NewField(name, t))
	return ir.NewVirtualRegister(name)
}

// Block appends a new block and makes it current. The first block is the
// entry block.
func (f *FunctionBuilder) Block(name string) *FunctionBuilder {
	if _, ok := f.cfg.Lookup(name); ok {
		f.fail(fmt.Errorf("%s: block %s declared twice", f.name, name))
	}
	f.cur = ir.NewBasicBlock(name)
	f.cfg.AddBasicBlock(f.cur)
	return f
}

// Temp returns a fresh register named t0, t1, ...
func (f *FunctionBuilder) Temp() *ir.VirtualRegister {
	r := ir.NewVirtualRegister(fmt.Sprintf("t%d", f.temps))
	f.temps++
	return r
}

// Emit appends ins to the current block.
func (f *FunctionBuilder) Emit(ins ir.Instr) {
	if f.cur == nil {
		f.fail(fmt.Errorf("%s: %s emitted before the first block", f.name, ins))
		return
	}
	if f.cur.Terminator() != nil {
		f.fail(fmt.Errorf("%s: block %s: %s emitted after the terminator", f.name, f.cur.Name, ins))
		return
	}
	f.cur.Append(ins)
}

func (f *FunctionBuilder) fail(err error) {
	if err != nil {
		f.errs = append(f.errs, err)
	}
}

// Calc emits a = x op y into a fresh register.
func (f *FunctionBuilder) Calc(op ir.CalcOp, t ir.Type, x, y ir.Operand) *ir.VirtualRegister {
	r := f.Temp()
	f.Emit(ir.NewCalculate(false, op, t, x, y, r))
	return r
}

// CalcInto emits target = x op y.
func (f *FunctionBuilder) CalcInto(target *ir.VirtualRegister, op ir.CalcOp, t ir.Type, x, y ir.Operand) {
	f.Emit(ir.NewCalculate(false, op, t, x, y, target))
}

// Copy emits target = src.
func (f *FunctionBuilder) Copy(target *ir.VirtualRegister, src ir.Operand) {
	f.Emit(ir.NewSetVirtualRegister(src, target))
}

// Load emits a typed load into a fresh register.
func (f *FunctionBuilder) Load(t ir.Type, addr ir.Operand) *ir.VirtualRegister {
	r := f.Temp()
	f.Emit(ir.NewGet(t, addr, r))
	return r
}

// Store emits a typed store.
func (f *FunctionBuilder) Store(t ir.Type, addr, value ir.Operand) {
	f.Emit(ir.NewSet(t, addr, value))
}

// Phi emits a copy of a phi operand into a fresh register.
func (f *FunctionBuilder) Phi(t ir.Type, labels []string, ops []ir.Operand) *ir.VirtualRegister {
	p, err := ir.NewPhi(t, labels, ops)
	if err != nil {
		f.fail(fmt.Errorf("%s: %w", f.name, err))
		return f.Temp()
	}
	r := f.Temp()
	f.Emit(ir.NewSetVirtualRegister(p, r))
	return r
}

// PhiInto emits target = phi over labels and ops.
func (f *FunctionBuilder) PhiInto(target *ir.VirtualRegister, t ir.Type, labels []string, ops []ir.Operand) {
	p, err := ir.NewPhi(t, labels, ops)
	if err != nil {
		f.fail(fmt.Errorf("%s: %w", f.name, err))
		return
	}
	f.Emit(ir.NewSetVirtualRegister(p, target))
}

// Cast emits a conversion into a fresh register.
func (f *FunctionBuilder) Cast(kind ir.CastKind, from ir.Type, src ir.Operand, to ir.Type) *ir.VirtualRegister {
	r := f.Temp()
	c, err := ir.NewTypeCast(kind, from, src, to, r)
	if err != nil {
		f.fail(fmt.Errorf("%s: %w", f.name, err))
		return r
	}
	f.Emit(c)
	return r
}

// Call emits an invoke. The result register is nil for void calls.
func (f *FunctionBuilder) Call(ret ir.Type, addr ir.Operand, argTypes []ir.Type, args []ir.Operand) *ir.VirtualRegister {
	var r *ir.VirtualRegister
	if !ir.TypesEqual(ret, ir.Void) {
		r = f.Temp()
	}
	call, err := ir.NewInvoke(ret, addr, argTypes, args, r)
	if err != nil {
		f.fail(fmt.Errorf("%s: %w", f.name, err))
		return r
	}
	f.Emit(call)
	return r
}

// Goto terminates the current block with an unconditional jump.
func (f *FunctionBuilder) Goto(target string) {
	f.Emit(ir.NewGoto(target))
}

// Jump terminates the current block with a conditional jump to target;
// control otherwise falls through to the next block.
func (f *FunctionBuilder) Jump(cond ir.Condition, t ir.Type, x, y ir.Operand, target string) {
	j, err := ir.NewConditionalJump(false, t, cond, x, y, target)
	if err != nil {
		f.fail(fmt.Errorf("%s: %w", f.name, err))
		return
	}
	f.Emit(j)
}

// Return terminates the current block. value is nil for void functions.
func (f *FunctionBuilder) Return(value ir.Operand) {
	f.Emit(ir.NewReturn(value))
}

// Finish links the CFG edges and, for functions, registers the function with
// the module. Errors are also recorded on the module builder.
func (f *FunctionBuilder) Finish() (*ir.Function, error) {
	LinkEdges(f.cfg)
	if f.init {
		err := errors.Join(f.errs...)
		f.mb.fail(err)
		return nil, err
	}
	fields := make([]*ir.Field, 0, len(f.params)+len(f.locals))
	fields = append(fields, f.params...)
	fields = append(fields, f.locals...)
	fn, err := ir.NewFunction(f.ret, f.name, len(f.params), fields, f.cfg)
	f.fail(err)
	if err := errors.Join(f.errs...); err != nil {
		f.mb.fail(err)
		return fn, err
	}
	f.mb.m.PushFunction(fn)
	return fn, nil
}
