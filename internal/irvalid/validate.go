// Package irvalid checks the referential and structural invariants of a
// module. It is an ordinary visitor over ir.Walk; nothing in package ir
// validates on its own.
package irvalid

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"

	"irkit/internal/diag"
	"irkit/internal/ir"
	"irkit/internal/irbuild"
)

// DefaultMaxDiagnostics bounds the bag returned by Validate.
const DefaultMaxDiagnostics = 1000

// globalInitName is the function position used for the global-init graph.
const globalInitName = "<global_init>"

// Options tunes a validation run.
type Options struct {
	// MaxDiagnostics caps the number of diagnostics kept; 0 means DefaultMaxDiagnostics.
	MaxDiagnostics int
}

// Validate checks m and returns the findings sorted by position.
func Validate(m *ir.Module) *diag.Bag {
	return ValidateWith(m, Options{})
}

// ValidateWith is Validate with explicit options.
func ValidateWith(m *ir.Module, opts Options) *diag.Bag {
	limit := opts.MaxDiagnostics
	if limit <= 0 {
		limit = DefaultMaxDiagnostics
	}
	bag := diag.NewBag(limit)
	if m == nil {
		return bag
	}
	v := &validator{
		m:     m,
		rep:   diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
		instr: diag.NoInstr,
	}
	ir.Walk(v, m)
	bag.Sort()
	return bag
}

// Err joins the error-severity diagnostics of bag into one error, or nil.
func Err(bag *diag.Bag) error {
	if bag == nil {
		return nil
	}
	var errs []error
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			errs = append(errs, d)
		}
	}
	return errors.Join(errs...)
}

type validator struct {
	ir.BaseVisitor

	m   *ir.Module
	rep diag.Reporter

	// position of the node being visited
	obj    string
	fn     *ir.Function
	fnName string
	cfg    *ir.ControlFlowGraph
	block  *ir.BasicBlock
	instr  int

	// regTypes holds the known type of each register of the current function.
	regTypes map[string]ir.Type
}

func (v *validator) pos() diag.Position {
	switch {
	case v.obj != "":
		return diag.AtObject(v.obj)
	case v.block != nil:
		return diag.AtInstr(v.fnName, v.block.Name, v.instr)
	case v.fnName != "":
		return diag.AtFunction(v.fnName)
	}
	return diag.AtModule()
}

func (v *validator) errorf(code diag.Code, pos diag.Position, format string, args ...any) {
	diag.ReportError(v.rep, code, pos, fmt.Sprintf(format, args...)).Emit()
}

func (v *validator) warnf(code diag.Code, pos diag.Position, format string, args ...any) {
	diag.ReportWarning(v.rep, code, pos, fmt.Sprintf(format, args...)).Emit()
}

func (v *validator) checkName(kind, name string) {
	if !norm.NFC.IsNormalString(name) {
		v.warnf(diag.WarnNonNFCName, v.pos(), "%s name %q is not in NFC form", kind, name)
	}
}

func (v *validator) checkFields(owner string, fields []*ir.Field) {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f == nil {
			v.errorf(diag.StrMissingOperand, v.pos(), "%s: field %d is nil", owner, i)
			continue
		}
		if seen[f.Name] {
			v.errorf(diag.StrDuplicateName, v.pos(), "%s: field %s declared twice", owner, f.Name)
		}
		seen[f.Name] = true
		if f.Type == nil {
			v.errorf(diag.StrInvalidType, v.pos(), "%s: field %s has no type", owner, f.Name)
		}
		v.checkName("field", f.Name)
	}
}

// Module-level containers ----------------------------------------------------

func (v *validator) VisitModule(m *ir.Module) bool {
	if m.EntryPoint != "" {
		if _, ok := m.Function(m.EntryPoint); !ok {
			v.errorf(diag.RefUnknownEntryPoint, diag.AtModule(), "entry point %s names no function", m.EntryPoint)
		}
	}
	for _, owner := range m.VTableOwners() {
		if _, ok := m.Structure(owner); !ok {
			v.errorf(diag.RefUnknownTableOwner, diag.AtObject("vtable "+owner), "vtable keys recorded for unknown structure %s", owner)
		}
	}
	for _, owner := range m.ITableOwners() {
		if _, ok := m.Structure(owner); !ok {
			v.errorf(diag.RefUnknownTableOwner, diag.AtObject("itable "+owner), "itable keys recorded for unknown structure %s", owner)
		}
	}
	return true
}

func (v *validator) VisitStructure(s *ir.Structure) bool {
	v.obj = "structure " + s.Name
	v.checkName("structure", s.Name)
	v.checkFields("structure "+s.Name, s.Fields)
	return true
}

func (v *validator) VisitConstantPool(*ir.ConstantPool) bool {
	v.obj = "constants"
	return true
}

func (v *validator) VisitConstantPoolEntry(e *ir.ConstantPoolEntry) bool {
	if e.Type == nil {
		v.errorf(diag.StrInvalidType, v.pos(), "constant %s has no type", e)
	}
	return true
}

func (v *validator) VisitGlobalDataSection(s *ir.GlobalDataSection) bool {
	v.obj = "globals"
	seen := make(map[string]bool, len(s.Data))
	for _, d := range s.Data {
		if seen[d.Name] {
			v.errorf(diag.StrDuplicateName, diag.AtObject("global "+d.Name), "global %s declared twice", d.Name)
		}
		seen[d.Name] = true
	}
	return true
}

func (v *validator) VisitGlobalData(d *ir.GlobalData) bool {
	v.obj = "global " + d.Name
	v.checkName("global", d.Name)
	if d.Type == nil {
		v.errorf(diag.StrInvalidType, v.pos(), "global %s has no type", d.Name)
		return true
	}
	if d.Size == nil || d.Values == nil {
		return true
	}
	c, ok := d.Size.(*ir.Constant)
	if !ok {
		return true
	}
	entry := v.m.ConstantPool.Entry(c.Index)
	if entry == nil {
		return true // reported by VisitConstant
	}
	size, ok := entry.IntValue()
	if !ok {
		v.errorf(diag.StrGlobalSize, v.pos(), "global %s: size %s is not an integer", d.Name, entry)
		return true
	}
	want := len(d.Values) * ir.SizeOf(d.Type)
	if size != int64(want) {
		v.errorf(diag.StrGlobalSize, v.pos(), "global %s: size %d but %d values of %s take %d bytes",
			d.Name, size, len(d.Values), d.Type, want)
	}
	return true
}

// Functions and graphs ---------------------------------------------------------

func (v *validator) VisitFunction(f *ir.Function) bool {
	v.obj = ""
	v.fn = f
	v.fnName = f.Name
	v.cfg = nil
	v.block = nil
	v.checkName("function", f.Name)
	if f.ArgumentsCount < 0 || f.ArgumentsCount > len(f.Fields) {
		v.errorf(diag.StrArgumentsCount, v.pos(), "arguments count %d outside 0..%d", f.ArgumentsCount, len(f.Fields))
	}
	v.checkFields("function "+f.Name, f.Fields)
	v.regTypes = registerTypes(f)

	if g := f.ControlFlowGraph; g != nil && g.Len() > 0 {
		last := g.Blocks()[g.Len()-1]
		if last.FallsThrough() {
			v.warnf(diag.WarnFallsOffEnd, diag.AtBlock(f.Name, last.Name), "control falls off the end of %s after block %s", f.Name, last.Name)
		}
	}
	return true
}

func (v *validator) VisitControlFlowGraph(g *ir.ControlFlowGraph) bool {
	v.obj = ""
	if v.fn == nil {
		v.fnName = globalInitName
		v.regTypes = nil
	}
	v.cfg = g
	v.block = nil
	v.checkGraph(g)
	return true
}

// checkGraph compares the edge relation with the terminators, checks that it
// is symmetric and warns about blocks the entry cannot reach.
func (v *validator) checkGraph(g *ir.ControlFlowGraph) {
	blocks := g.Blocks()
	for i, b := range blocks {
		id := ir.BlockID(i)
		next := ""
		if i+1 < len(blocks) {
			next = blocks[i+1].Name
		}
		var want []string
		for _, name := range irbuild.SuccessorNames(b, next) {
			if _, ok := g.Lookup(name); ok && !slices.Contains(want, name) {
				want = append(want, name)
			}
		}
		var got []string
		for _, s := range g.Successors(id) {
			got = append(got, g.Block(s).Name)
			if !slices.Contains(g.Predecessors(s), id) {
				v.errorf(diag.StrEdgeMismatch, diag.AtBlock(v.fnName, b.Name), "edge %s -> %s missing from predecessors", b.Name, g.Block(s).Name)
			}
		}
		for _, p := range g.Predecessors(id) {
			if !slices.Contains(g.Successors(p), id) {
				v.errorf(diag.StrEdgeMismatch, diag.AtBlock(v.fnName, b.Name), "edge %s -> %s missing from successors", g.Block(p).Name, b.Name)
			}
		}
		slices.Sort(want)
		slices.Sort(got)
		if !slices.Equal(want, got) {
			v.errorf(diag.StrEdgeMismatch, diag.AtBlock(v.fnName, b.Name), "successors %v do not match terminator targets %v", got, want)
		}
	}

	reachable := g.Reachable()
	for i, ok := range reachable {
		if !ok {
			name := blocks[i].Name
			v.warnf(diag.WarnUnreachableBlock, diag.AtBlock(v.fnName, name), "block %s is unreachable from %s", name, g.Entry().Name)
		}
	}
}

func (v *validator) VisitBasicBlock(b *ir.BasicBlock) bool {
	v.obj = ""
	v.block = b
	v.instr = diag.NoInstr
	v.checkName("block", b.Name)
	for i, ins := range b.Instructions {
		pos := diag.AtInstr(v.fnName, b.Name, i)
		if ins == nil {
			v.errorf(diag.StrMissingOperand, pos, "instruction %d is nil", i)
			continue
		}
		if i < len(b.Instructions)-1 && ir.IsTerminator(ins) {
			v.errorf(diag.StrTerminatorNotLast, pos, "%s is followed by %d more instructions", ins, len(b.Instructions)-1-i)
		}
	}
	return true
}

// enter advances the instruction index; Walk visits the instructions of a
// block in order and skips nil ones.
func (v *validator) enter() {
	if v.block == nil {
		return
	}
	v.instr++
	for v.instr < len(v.block.Instructions) && v.block.Instructions[v.instr] == nil {
		v.instr++
	}
}

func (v *validator) require(ins ir.Instr, op ir.Operand, what string) {
	if op == nil {
		v.errorf(diag.StrMissingOperand, v.pos(), "%s: missing %s", ir.KindOf(ins), what)
	}
}

func (v *validator) requireType(ins ir.Instr, t ir.Type, what string) {
	if t == nil {
		v.errorf(diag.StrInvalidType, v.pos(), "%s: missing %s", ir.KindOf(ins), what)
	}
}

func (v *validator) requireTarget(ins ir.Instr, r *ir.VirtualRegister) {
	if r == nil {
		v.errorf(diag.StrMissingTarget, v.pos(), "%s: result has no target register", ir.KindOf(ins))
	}
}

func (v *validator) checkTarget(ins ir.Instr, target string) {
	if v.cfg == nil {
		return
	}
	if _, ok := v.cfg.Lookup(target); !ok {
		v.errorf(diag.RefUnknownBlock, v.pos(), "%s target %s is not a block of %s", ir.KindOf(ins), target, v.fnName)
	}
}

// checkPointee compares an access type with the pointee type of a register
// address whose type is known. Byte and void pointers accept any access.
func (v *validator) checkPointee(ins ir.Instr, t ir.Type, addr ir.Operand) {
	r, ok := addr.(*ir.VirtualRegister)
	if !ok || t == nil {
		return
	}
	p, ok := v.regTypes[r.Name].(ir.PointerType)
	if !ok || p.Base == nil {
		return
	}
	if ir.TypesEqual(p.Base, ir.Void) || ir.TypesEqual(p.Base, ir.I8) || ir.TypesEqual(p.Base, ir.U8) {
		return
	}
	if !ir.TypesEqual(p.Base, t) {
		v.errorf(diag.StrPointeeMismatch, v.pos(), "%s %s through %s of type %s", ir.KindOf(ins), t, r, p)
	}
}

// operandType is the statically known type of op, or nil.
func (v *validator) operandType(op ir.Operand) ir.Type {
	switch op := op.(type) {
	case *ir.VirtualRegister:
		return v.regTypes[op.Name]
	case *ir.Constant:
		if e := v.m.ConstantPool.Entry(op.Index); e != nil {
			return e.Type
		}
	case *ir.Phi:
		return op.Type
	}
	return nil
}

// checkType reports op when its known type differs from want. Operands of
// unknown type pass.
func (v *validator) checkType(ins ir.Instr, what string, op ir.Operand, want ir.Type) {
	if op == nil || want == nil {
		return
	}
	got := v.operandType(op)
	if got == nil || ir.TypesEqual(got, want) {
		return
	}
	v.errorf(diag.StrOperandType, v.pos(), "%s: %s %s has type %s, want %s", ir.KindOf(ins), what, op, got, want)
}

// Instructions -------------------------------------------------------------------

func (v *validator) VisitGoto(i *ir.Goto) bool {
	v.enter()
	v.checkTarget(i, i.Target)
	return true
}

func (v *validator) VisitConditionalJump(i *ir.ConditionalJump) bool {
	v.enter()
	v.checkTarget(i, i.Target)
	v.requireType(i, i.Type, "type")
	v.require(i, i.Operand1, "first operand")
	v.checkType(i, "first operand", i.Operand1, i.Type)
	v.checkType(i, "second operand", i.Operand2, i.Type)
	switch {
	case i.Cond.Unary() && i.Operand2 != nil:
		v.errorf(diag.StrConditionOperands, v.pos(), "condition %s takes one operand but has two", i.Cond)
	case !i.Cond.Unary() && i.Operand2 == nil:
		v.errorf(diag.StrConditionOperands, v.pos(), "condition %s takes two operands but has one", i.Cond)
	}
	return true
}

func (v *validator) VisitReturn(i *ir.Return) bool {
	v.enter()
	if v.fn == nil || v.block == nil {
		return true
	}
	void := v.fn.ReturnType == nil || ir.TypesEqual(v.fn.ReturnType, ir.Void)
	switch {
	case void && i.Value != nil:
		v.errorf(diag.StrInvalidType, v.pos(), "return %s from void function %s", i.Value, v.fn.Name)
	case !void && i.Value == nil:
		v.errorf(diag.StrMissingOperand, v.pos(), "return without value from %s returning %s", v.fn.Name, v.fn.ReturnType)
	case !void:
		v.checkType(i, "value", i.Value, v.fn.ReturnType)
	}
	return true
}

func (v *validator) VisitCalculate(i *ir.Calculate) bool {
	v.enter()
	v.requireType(i, i.Type, "type")
	v.require(i, i.Operand1, "first operand")
	v.require(i, i.Operand2, "second operand")
	v.checkType(i, "first operand", i.Operand1, i.Type)
	v.checkType(i, "second operand", i.Operand2, i.Type)
	v.requireTarget(i, i.Target)
	return true
}

func (v *validator) VisitNot(i *ir.Not) bool {
	v.enter()
	v.requireType(i, i.Type, "type")
	v.require(i, i.Operand, "operand")
	v.checkType(i, "operand", i.Operand, i.Type)
	v.requireTarget(i, i.Target)
	return true
}

func (v *validator) VisitNegate(i *ir.Negate) bool {
	v.enter()
	v.requireType(i, i.Type, "type")
	v.require(i, i.Operand, "operand")
	v.checkType(i, "operand", i.Operand, i.Type)
	v.requireTarget(i, i.Target)
	return true
}

func (v *validator) VisitIncrease(i *ir.Increase) bool {
	v.enter()
	v.requireType(i, i.Type, "type")
	v.require(i, i.Operand, "operand")
	v.checkType(i, "operand", i.Operand, i.Type)
	return true
}

func (v *validator) VisitDecrease(i *ir.Decrease) bool {
	v.enter()
	v.requireType(i, i.Type, "type")
	v.require(i, i.Operand, "operand")
	v.checkType(i, "operand", i.Operand, i.Type)
	return true
}

func (v *validator) VisitMalloc(i *ir.Malloc) bool {
	v.enter()
	v.require(i, i.Size, "size")
	v.requireTarget(i, i.Target)
	return true
}

func (v *validator) VisitFree(i *ir.Free) bool {
	v.enter()
	v.require(i, i.Pointer, "pointer")
	return true
}

func (v *validator) VisitRealloc(i *ir.Realloc) bool {
	v.enter()
	v.require(i, i.Pointer, "pointer")
	v.require(i, i.Size, "size")
	v.requireTarget(i, i.Target)
	return true
}

func (v *validator) VisitStackAllocate(i *ir.StackAllocate) bool {
	v.enter()
	v.require(i, i.Size, "size")
	v.requireTarget(i, i.Target)
	return true
}

func (v *validator) VisitGet(i *ir.Get) bool {
	v.enter()
	v.requireType(i, i.Type, "type")
	v.require(i, i.Address, "address")
	v.requireTarget(i, i.Target)
	v.checkPointee(i, i.Type, i.Address)
	return true
}

func (v *validator) VisitSet(i *ir.Set) bool {
	v.enter()
	v.requireType(i, i.Type, "type")
	v.require(i, i.Address, "address")
	v.require(i, i.Value, "value")
	v.checkType(i, "value", i.Value, i.Type)
	v.checkPointee(i, i.Type, i.Address)
	return true
}

func (v *validator) VisitSetVirtualRegister(i *ir.SetVirtualRegister) bool {
	v.enter()
	v.require(i, i.Source, "source")
	v.requireTarget(i, i.Target)
	return true
}

func (v *validator) VisitTypeCast(i *ir.TypeCast) bool {
	v.enter()
	v.require(i, i.Source, "source")
	v.requireTarget(i, i.Target)
	if i.From == nil || i.To == nil {
		v.errorf(diag.StrInvalidType, v.pos(), "%s: missing source or target type", i.Kind)
		return true
	}
	if err := ir.CheckCast(i.Kind, i.From, i.To); err != nil {
		v.errorf(diag.StrInvalidCast, v.pos(), "%v", err)
	}
	v.checkType(i, "source", i.Source, i.From)
	return true
}

func (v *validator) VisitInvoke(i *ir.Invoke) bool {
	v.enter()
	v.require(i, i.Address, "address")
	v.requireType(i, i.ReturnType, "return type")
	if len(i.ArgumentTypes) != len(i.Arguments) {
		v.errorf(diag.StrOperandArity, v.pos(), "invoke: %d argument types but %d arguments", len(i.ArgumentTypes), len(i.Arguments))
	}
	for k := range min(len(i.ArgumentTypes), len(i.Arguments)) {
		v.checkType(i, fmt.Sprintf("argument %d", k), i.Arguments[k], i.ArgumentTypes[k])
	}
	return true
}

func (v *validator) VisitAsm(i *ir.Asm) bool {
	v.enter()
	if len(i.Types) != len(i.Resources) || len(i.Resources) != len(i.Names) {
		v.errorf(diag.StrOperandArity, v.pos(), "asm: %d types, %d resources, %d names", len(i.Types), len(i.Resources), len(i.Names))
	}
	return true
}

func (v *validator) VisitNoOperate(*ir.NoOperate) bool {
	v.enter()
	return true
}

// Operands and types ---------------------------------------------------------------

func (v *validator) VisitConstant(c *ir.Constant) bool {
	if n := v.m.ConstantPool.Len(); int64(c.Index) >= int64(n) {
		v.errorf(diag.RefConstantOutOfRange, v.pos(), "constant %s out of range: pool has %d entries", c, n)
	}
	return true
}

// VisitMacro resolves the global named by an address macro. Other macros
// are opaque to validation.
func (v *validator) VisitMacro(m *ir.Macro) bool {
	if m.Name != "address" || len(m.Args) != 1 {
		return true
	}
	if v.m.GlobalDataSection.Lookup(m.Args[0]) == nil {
		v.errorf(diag.RefUnknownGlobal, v.pos(), "address of unknown global %s", m.Args[0])
	}
	return true
}

func (v *validator) VisitVirtualTable(t *ir.VirtualTable) bool {
	for _, name := range t.Functions {
		if _, ok := v.m.Function(name); !ok {
			v.errorf(diag.RefUnknownFunction, v.pos(), "vtable slot names unknown function %s", name)
		}
	}
	return true
}

func (v *validator) VisitPhi(p *ir.Phi) bool {
	if len(p.Labels) != len(p.Operands) {
		v.errorf(diag.StrPhiArity, v.pos(), "phi has %d labels but %d operands", len(p.Labels), len(p.Operands))
	}
	if v.cfg == nil || v.block == nil {
		return true
	}
	id, _ := v.cfg.Lookup(v.block.Name)
	preds := v.cfg.Predecessors(id)
	covered := make(map[ir.BlockID]bool, len(p.Labels))
	for _, label := range p.Labels {
		lid, ok := v.cfg.Lookup(label)
		if !ok {
			v.errorf(diag.RefUnknownPhiLabel, v.pos(), "phi label %s is not a block of %s", label, v.fnName)
			continue
		}
		if covered[lid] {
			v.errorf(diag.StrPhiDuplicateLabel, v.pos(), "phi names predecessor %s more than once", label)
			continue
		}
		covered[lid] = true
		if !slices.Contains(preds, lid) {
			v.errorf(diag.StrPhiInDegree, v.pos(), "phi label %s is not a predecessor of %s", label, v.block.Name)
		}
	}
	if len(p.Labels) != len(preds) {
		v.errorf(diag.StrPhiInDegree, v.pos(), "phi has %d labels but block %s has %d predecessors", len(p.Labels), v.block.Name, len(preds))
	}
	for _, pred := range preds {
		if !covered[pred] {
			v.errorf(diag.StrPhiInDegree, v.pos(), "phi has no value for predecessor %s", v.cfg.Block(pred).Name)
		}
	}
	for k, op := range p.Operands {
		if k < len(p.Labels) {
			v.checkPhiOperand(p, p.Labels[k], op)
		}
	}
	return true
}

func (v *validator) checkPhiOperand(p *ir.Phi, label string, op ir.Operand) {
	got := v.operandType(op)
	if op == nil || p.Type == nil || got == nil || ir.TypesEqual(got, p.Type) {
		return
	}
	v.errorf(diag.StrOperandType, v.pos(), "phi: value %s from %s has type %s, want %s", op, label, got, p.Type)
}

func (v *validator) VisitIntType(t ir.IntType) bool {
	if !t.Width.Valid() {
		v.errorf(diag.StrInvalidType, v.pos(), "integer width %d is not one of 1, 8, 16, 32, 64", t.Width)
	}
	return true
}

func (v *validator) VisitPointerType(t ir.PointerType) bool {
	if t.Base == nil {
		v.errorf(diag.StrInvalidType, v.pos(), "pointer has no base type")
	}
	return true
}

// registerTypes collects the statically known type of each register of f:
// parameters and locals by field type, then results by instruction type.
func registerTypes(f *ir.Function) map[string]ir.Type {
	types := make(map[string]ir.Type, len(f.Fields))
	for _, fld := range f.Fields {
		if fld != nil && fld.Type != nil {
			types[fld.Name] = fld.Type
		}
	}
	if f.ControlFlowGraph == nil {
		return types
	}
	for _, b := range f.ControlFlowGraph.Blocks() {
		for _, ins := range b.Instructions {
			r := ir.Defines(ins)
			if r == nil {
				continue
			}
			if _, ok := types[r.Name]; ok {
				continue
			}
			if t := resultType(ins); t != nil {
				types[r.Name] = t
			}
		}
	}
	return types
}

func resultType(ins ir.Instr) ir.Type {
	switch in := ins.(type) {
	case *ir.Calculate:
		return in.Type
	case *ir.Not:
		return in.Type
	case *ir.Negate:
		return in.Type
	case *ir.Increase:
		return in.Type
	case *ir.Decrease:
		return in.Type
	case *ir.Get:
		return in.Type
	case *ir.TypeCast:
		return in.To
	case *ir.Invoke:
		return in.ReturnType
	case *ir.SetVirtualRegister:
		if p, ok := in.Source.(*ir.Phi); ok {
			return p.Type
		}
	}
	return nil
}
