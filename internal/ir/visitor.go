package ir

import "fmt"

// Node is implemented by every IR node kind. Accept calls the Visitor method
// matching the concrete kind and returns its result.
type Node interface {
	Accept(v Visitor) bool
	String() string
}

// Visitor has one method per node kind. A method returns true to let Walk
// descend into the node's children.
//
// Passes embed BaseVisitor and override only the kinds they care about.
type Visitor interface {
	VisitModule(m *Module) bool
	VisitStructure(s *Structure) bool
	VisitField(f *Field) bool
	VisitConstantPool(p *ConstantPool) bool
	VisitConstantPoolEntry(e *ConstantPoolEntry) bool
	VisitGlobalDataSection(s *GlobalDataSection) bool
	VisitGlobalData(d *GlobalData) bool
	VisitControlFlowGraph(g *ControlFlowGraph) bool
	VisitBasicBlock(b *BasicBlock) bool
	VisitFunction(f *Function) bool

	VisitIntType(t IntType) bool
	VisitFloatType(t FloatType) bool
	VisitDoubleType(t DoubleType) bool
	VisitVoidType(t VoidType) bool
	VisitPointerType(t PointerType) bool

	VisitVirtualRegister(r *VirtualRegister) bool
	VisitConstant(c *Constant) bool
	VisitMacro(m *Macro) bool
	VisitPhi(p *Phi) bool
	VisitVirtualTable(t *VirtualTable) bool
	VisitInterfaceTable(t *InterfaceTable) bool

	VisitGoto(i *Goto) bool
	VisitConditionalJump(i *ConditionalJump) bool
	VisitReturn(i *Return) bool
	VisitCalculate(i *Calculate) bool
	VisitNot(i *Not) bool
	VisitNegate(i *Negate) bool
	VisitIncrease(i *Increase) bool
	VisitDecrease(i *Decrease) bool
	VisitMalloc(i *Malloc) bool
	VisitFree(i *Free) bool
	VisitRealloc(i *Realloc) bool
	VisitStackAllocate(i *StackAllocate) bool
	VisitGet(i *Get) bool
	VisitSet(i *Set) bool
	VisitSetVirtualRegister(i *SetVirtualRegister) bool
	VisitTypeCast(i *TypeCast) bool
	VisitInvoke(i *Invoke) bool
	VisitAsm(i *Asm) bool
	VisitNoOperate(i *NoOperate) bool
}

// BaseVisitor descends into every node.
type BaseVisitor struct{}

func (BaseVisitor) VisitModule(*Module) bool                         { return true }
func (BaseVisitor) VisitStructure(*Structure) bool                   { return true }
func (BaseVisitor) VisitField(*Field) bool                           { return true }
func (BaseVisitor) VisitConstantPool(*ConstantPool) bool             { return true }
func (BaseVisitor) VisitConstantPoolEntry(*ConstantPoolEntry) bool   { return true }
func (BaseVisitor) VisitGlobalDataSection(*GlobalDataSection) bool   { return true }
func (BaseVisitor) VisitGlobalData(*GlobalData) bool                 { return true }
func (BaseVisitor) VisitControlFlowGraph(*ControlFlowGraph) bool     { return true }
func (BaseVisitor) VisitBasicBlock(*BasicBlock) bool                 { return true }
func (BaseVisitor) VisitFunction(*Function) bool                     { return true }
func (BaseVisitor) VisitIntType(IntType) bool                        { return true }
func (BaseVisitor) VisitFloatType(FloatType) bool                    { return true }
func (BaseVisitor) VisitDoubleType(DoubleType) bool                  { return true }
func (BaseVisitor) VisitVoidType(VoidType) bool                      { return true }
func (BaseVisitor) VisitPointerType(PointerType) bool                { return true }
func (BaseVisitor) VisitVirtualRegister(*VirtualRegister) bool       { return true }
func (BaseVisitor) VisitConstant(*Constant) bool                     { return true }
func (BaseVisitor) VisitMacro(*Macro) bool                           { return true }
func (BaseVisitor) VisitPhi(*Phi) bool                               { return true }
func (BaseVisitor) VisitVirtualTable(*VirtualTable) bool             { return true }
func (BaseVisitor) VisitInterfaceTable(*InterfaceTable) bool         { return true }
func (BaseVisitor) VisitGoto(*Goto) bool                             { return true }
func (BaseVisitor) VisitConditionalJump(*ConditionalJump) bool       { return true }
func (BaseVisitor) VisitReturn(*Return) bool                         { return true }
func (BaseVisitor) VisitCalculate(*Calculate) bool                   { return true }
func (BaseVisitor) VisitNot(*Not) bool                               { return true }
func (BaseVisitor) VisitNegate(*Negate) bool                         { return true }
func (BaseVisitor) VisitIncrease(*Increase) bool                     { return true }
func (BaseVisitor) VisitDecrease(*Decrease) bool                     { return true }
func (BaseVisitor) VisitMalloc(*Malloc) bool                         { return true }
func (BaseVisitor) VisitFree(*Free) bool                             { return true }
func (BaseVisitor) VisitRealloc(*Realloc) bool                       { return true }
func (BaseVisitor) VisitStackAllocate(*StackAllocate) bool           { return true }
func (BaseVisitor) VisitGet(*Get) bool                               { return true }
func (BaseVisitor) VisitSet(*Set) bool                               { return true }
func (BaseVisitor) VisitSetVirtualRegister(*SetVirtualRegister) bool { return true }
func (BaseVisitor) VisitTypeCast(*TypeCast) bool                     { return true }
func (BaseVisitor) VisitInvoke(*Invoke) bool                         { return true }
func (BaseVisitor) VisitAsm(*Asm) bool                               { return true }
func (BaseVisitor) VisitNoOperate(*NoOperate) bool                   { return true }

// Accept ---------------------------------------------------------------------

func (m *Module) Accept(v Visitor) bool             { return v.VisitModule(m) }
func (s *Structure) Accept(v Visitor) bool          { return v.VisitStructure(s) }
func (f *Field) Accept(v Visitor) bool              { return v.VisitField(f) }
func (p *ConstantPool) Accept(v Visitor) bool       { return v.VisitConstantPool(p) }
func (e *ConstantPoolEntry) Accept(v Visitor) bool  { return v.VisitConstantPoolEntry(e) }
func (s *GlobalDataSection) Accept(v Visitor) bool  { return v.VisitGlobalDataSection(s) }
func (d *GlobalData) Accept(v Visitor) bool         { return v.VisitGlobalData(d) }
func (g *ControlFlowGraph) Accept(v Visitor) bool   { return v.VisitControlFlowGraph(g) }
func (b *BasicBlock) Accept(v Visitor) bool         { return v.VisitBasicBlock(b) }
func (f *Function) Accept(v Visitor) bool           { return v.VisitFunction(f) }
func (t IntType) Accept(v Visitor) bool             { return v.VisitIntType(t) }
func (t FloatType) Accept(v Visitor) bool           { return v.VisitFloatType(t) }
func (t DoubleType) Accept(v Visitor) bool          { return v.VisitDoubleType(t) }
func (t VoidType) Accept(v Visitor) bool            { return v.VisitVoidType(t) }
func (t PointerType) Accept(v Visitor) bool         { return v.VisitPointerType(t) }
func (r *VirtualRegister) Accept(v Visitor) bool    { return v.VisitVirtualRegister(r) }
func (c *Constant) Accept(v Visitor) bool           { return v.VisitConstant(c) }
func (m *Macro) Accept(v Visitor) bool              { return v.VisitMacro(m) }
func (p *Phi) Accept(v Visitor) bool                { return v.VisitPhi(p) }
func (t *VirtualTable) Accept(v Visitor) bool       { return v.VisitVirtualTable(t) }
func (t *InterfaceTable) Accept(v Visitor) bool     { return v.VisitInterfaceTable(t) }
func (i *Goto) Accept(v Visitor) bool               { return v.VisitGoto(i) }
func (i *ConditionalJump) Accept(v Visitor) bool    { return v.VisitConditionalJump(i) }
func (i *Return) Accept(v Visitor) bool             { return v.VisitReturn(i) }
func (i *Calculate) Accept(v Visitor) bool          { return v.VisitCalculate(i) }
func (i *Not) Accept(v Visitor) bool                { return v.VisitNot(i) }
func (i *Negate) Accept(v Visitor) bool             { return v.VisitNegate(i) }
func (i *Increase) Accept(v Visitor) bool           { return v.VisitIncrease(i) }
func (i *Decrease) Accept(v Visitor) bool           { return v.VisitDecrease(i) }
func (i *Malloc) Accept(v Visitor) bool             { return v.VisitMalloc(i) }
func (i *Free) Accept(v Visitor) bool               { return v.VisitFree(i) }
func (i *Realloc) Accept(v Visitor) bool            { return v.VisitRealloc(i) }
func (i *StackAllocate) Accept(v Visitor) bool      { return v.VisitStackAllocate(i) }
func (i *Get) Accept(v Visitor) bool                { return v.VisitGet(i) }
func (i *Set) Accept(v Visitor) bool                { return v.VisitSet(i) }
func (i *SetVirtualRegister) Accept(v Visitor) bool { return v.VisitSetVirtualRegister(i) }
func (i *TypeCast) Accept(v Visitor) bool           { return v.VisitTypeCast(i) }
func (i *Invoke) Accept(v Visitor) bool             { return v.VisitInvoke(i) }
func (i *Asm) Accept(v Visitor) bool                { return v.VisitAsm(i) }
func (i *NoOperate) Accept(v Visitor) bool          { return v.VisitNoOperate(i) }

// Traversal ------------------------------------------------------------------

// Walk dispatches n to v and, when the visitor asks for it, descends into the
// children of n in emission order:
//
//	module:   structures, constant pool, global data section, global init, functions
//	function: return type, fields, control flow graph
//	cfg:      blocks in insertion order, then each block's instructions
//
// Walk panics on a node kind it does not know.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if !n.Accept(v) {
		return
	}
	walkChildren(v, n)
}

func walkType(v Visitor, t Type) {
	if t != nil {
		Walk(v, t)
	}
}

func walkOperand(v Visitor, op Operand) {
	if op != nil {
		Walk(v, op)
	}
}

func walkOperands(v Visitor, ops []Operand) {
	for _, op := range ops {
		walkOperand(v, op)
	}
}

func walkTarget(v Visitor, r *VirtualRegister) {
	if r != nil {
		Walk(v, r)
	}
}

func walkChildren(v Visitor, n Node) {
	switch n := n.(type) {
	case *Module:
		for _, s := range n.Structures() {
			Walk(v, s)
		}
		if n.ConstantPool != nil {
			Walk(v, n.ConstantPool)
		}
		if n.GlobalDataSection != nil {
			Walk(v, n.GlobalDataSection)
		}
		if n.GlobalInit != nil {
			Walk(v, n.GlobalInit)
		}
		for _, f := range n.Functions() {
			Walk(v, f)
		}
	case *Structure:
		for _, f := range n.Fields {
			Walk(v, f)
		}
	case *Field:
		walkType(v, n.Type)
	case *ConstantPool:
		for _, e := range n.Entries {
			Walk(v, e)
		}
	case *ConstantPoolEntry:
		walkType(v, n.Type)
	case *GlobalDataSection:
		for _, d := range n.Data {
			Walk(v, d)
		}
	case *GlobalData:
		walkType(v, n.Type)
		walkOperand(v, n.Size)
		walkOperands(v, n.Values)
	case *ControlFlowGraph:
		for _, b := range n.Blocks() {
			Walk(v, b)
		}
	case *BasicBlock:
		for _, ins := range n.Instructions {
			if ins != nil {
				Walk(v, ins)
			}
		}
	case *Function:
		walkType(v, n.ReturnType)
		for _, f := range n.Fields {
			Walk(v, f)
		}
		if n.ControlFlowGraph != nil {
			Walk(v, n.ControlFlowGraph)
		}

	case IntType, FloatType, DoubleType, VoidType:
	case PointerType:
		walkType(v, n.Base)

	case *VirtualRegister, *Constant, *VirtualTable, *InterfaceTable:
	case *Macro:
		walkOperands(v, n.Operands)
	case *Phi:
		walkType(v, n.Type)
		walkOperands(v, n.Operands)

	case *Goto, *NoOperate:
	case *ConditionalJump:
		walkType(v, n.Type)
		walkOperand(v, n.Operand1)
		walkOperand(v, n.Operand2)
	case *Return:
		walkOperand(v, n.Value)
	case *Calculate:
		walkType(v, n.Type)
		walkOperand(v, n.Operand1)
		walkOperand(v, n.Operand2)
		walkTarget(v, n.Target)
	case *Not:
		walkType(v, n.Type)
		walkOperand(v, n.Operand)
		walkTarget(v, n.Target)
	case *Negate:
		walkType(v, n.Type)
		walkOperand(v, n.Operand)
		walkTarget(v, n.Target)
	case *Increase:
		walkType(v, n.Type)
		walkOperand(v, n.Operand)
		walkTarget(v, n.Target)
	case *Decrease:
		walkType(v, n.Type)
		walkOperand(v, n.Operand)
		walkTarget(v, n.Target)
	case *Malloc:
		walkOperand(v, n.Size)
		walkTarget(v, n.Target)
	case *Free:
		walkOperand(v, n.Pointer)
	case *Realloc:
		walkOperand(v, n.Pointer)
		walkOperand(v, n.Size)
		walkTarget(v, n.Target)
	case *StackAllocate:
		walkOperand(v, n.Size)
		walkTarget(v, n.Target)
	case *Get:
		walkType(v, n.Type)
		walkOperand(v, n.Address)
		walkTarget(v, n.Target)
	case *Set:
		walkType(v, n.Type)
		walkOperand(v, n.Address)
		walkOperand(v, n.Value)
	case *SetVirtualRegister:
		walkOperand(v, n.Source)
		walkTarget(v, n.Target)
	case *TypeCast:
		walkType(v, n.From)
		walkOperand(v, n.Source)
		walkType(v, n.To)
		walkTarget(v, n.Target)
	case *Invoke:
		walkType(v, n.ReturnType)
		walkOperand(v, n.Address)
		for _, t := range n.ArgumentTypes {
			walkType(v, t)
		}
		walkOperands(v, n.Arguments)
		walkTarget(v, n.Target)
	case *Asm:
		for _, t := range n.Types {
			walkType(v, t)
		}
		walkOperands(v, n.Resources)

	default:
		panic(fmt.Sprintf("ir: Walk: unexpected node %T", n))
	}
}

// Inspect traverses n, calling f for every node regardless of kind. f returns
// false to skip the children of the node it was given.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}

type inspector func(Node) bool

func (f inspector) VisitModule(n *Module) bool                         { return f(n) }
func (f inspector) VisitStructure(n *Structure) bool                   { return f(n) }
func (f inspector) VisitField(n *Field) bool                           { return f(n) }
func (f inspector) VisitConstantPool(n *ConstantPool) bool             { return f(n) }
func (f inspector) VisitConstantPoolEntry(n *ConstantPoolEntry) bool   { return f(n) }
func (f inspector) VisitGlobalDataSection(n *GlobalDataSection) bool   { return f(n) }
func (f inspector) VisitGlobalData(n *GlobalData) bool                 { return f(n) }
func (f inspector) VisitControlFlowGraph(n *ControlFlowGraph) bool     { return f(n) }
func (f inspector) VisitBasicBlock(n *BasicBlock) bool                 { return f(n) }
func (f inspector) VisitFunction(n *Function) bool                     { return f(n) }
func (f inspector) VisitIntType(n IntType) bool                        { return f(n) }
func (f inspector) VisitFloatType(n FloatType) bool                    { return f(n) }
func (f inspector) VisitDoubleType(n DoubleType) bool                  { return f(n) }
func (f inspector) VisitVoidType(n VoidType) bool                      { return f(n) }
func (f inspector) VisitPointerType(n PointerType) bool                { return f(n) }
func (f inspector) VisitVirtualRegister(n *VirtualRegister) bool       { return f(n) }
func (f inspector) VisitConstant(n *Constant) bool                     { return f(n) }
func (f inspector) VisitMacro(n *Macro) bool                           { return f(n) }
func (f inspector) VisitPhi(n *Phi) bool                               { return f(n) }
func (f inspector) VisitVirtualTable(n *VirtualTable) bool             { return f(n) }
func (f inspector) VisitInterfaceTable(n *InterfaceTable) bool         { return f(n) }
func (f inspector) VisitGoto(n *Goto) bool                             { return f(n) }
func (f inspector) VisitConditionalJump(n *ConditionalJump) bool       { return f(n) }
func (f inspector) VisitReturn(n *Return) bool                         { return f(n) }
func (f inspector) VisitCalculate(n *Calculate) bool                   { return f(n) }
func (f inspector) VisitNot(n *Not) bool                               { return f(n) }
func (f inspector) VisitNegate(n *Negate) bool                         { return f(n) }
func (f inspector) VisitIncrease(n *Increase) bool                     { return f(n) }
func (f inspector) VisitDecrease(n *Decrease) bool                     { return f(n) }
func (f inspector) VisitMalloc(n *Malloc) bool                         { return f(n) }
func (f inspector) VisitFree(n *Free) bool                             { return f(n) }
func (f inspector) VisitRealloc(n *Realloc) bool                       { return f(n) }
func (f inspector) VisitStackAllocate(n *StackAllocate) bool           { return f(n) }
func (f inspector) VisitGet(n *Get) bool                               { return f(n) }
func (f inspector) VisitSet(n *Set) bool                               { return f(n) }
func (f inspector) VisitSetVirtualRegister(n *SetVirtualRegister) bool { return f(n) }
func (f inspector) VisitTypeCast(n *TypeCast) bool                     { return f(n) }
func (f inspector) VisitInvoke(n *Invoke) bool                         { return f(n) }
func (f inspector) VisitAsm(n *Asm) bool                               { return f(n) }
func (f inspector) VisitNoOperate(n *NoOperate) bool                   { return f(n) }

// KindOf returns a short lower-case name for the kind of n.
func KindOf(n Node) string {
	switch n.(type) {
	case *Module:
		return "module"
	case *Structure:
		return "structure"
	case *Field:
		return "field"
	case *ConstantPool:
		return "constant_pool"
	case *ConstantPoolEntry:
		return "constant_pool_entry"
	case *GlobalDataSection:
		return "global_data_section"
	case *GlobalData:
		return "global_data"
	case *ControlFlowGraph:
		return "cfg"
	case *BasicBlock:
		return "basic_block"
	case *Function:
		return "function"
	case IntType:
		return "int_type"
	case FloatType:
		return "float_type"
	case DoubleType:
		return "double_type"
	case VoidType:
		return "void_type"
	case PointerType:
		return "pointer_type"
	case *VirtualRegister:
		return "virtual_register"
	case *Constant:
		return "constant"
	case *Macro:
		return "macro"
	case *Phi:
		return "phi"
	case *VirtualTable:
		return "virtual_table"
	case *InterfaceTable:
		return "interface_table"
	case *Goto:
		return "goto"
	case *ConditionalJump:
		return "conditional_jump"
	case *Return:
		return "return"
	case *Calculate:
		return "calculate"
	case *Not:
		return "not"
	case *Negate:
		return "negate"
	case *Increase:
		return "increase"
	case *Decrease:
		return "decrease"
	case *Malloc:
		return "malloc"
	case *Free:
		return "free"
	case *Realloc:
		return "realloc"
	case *StackAllocate:
		return "stack_allocate"
	case *Get:
		return "get"
	case *Set:
		return "set"
	case *SetVirtualRegister:
		return "set_virtual_register"
	case *TypeCast:
		return "type_cast"
	case *Invoke:
		return "invoke"
	case *Asm:
		return "asm"
	case *NoOperate:
		return "nop"
	}
	return fmt.Sprintf("%T", n)
}
