package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Instr is one IR operation. The set of implementations is closed.
type Instr interface {
	Node
	isInstr()
}

// Condition selects the comparison performed by a conditional jump.
type Condition uint8

const (
	CondEqual Condition = iota
	CondNotEqual
	CondLess
	CondLessEqual
	CondGreater
	CondGreaterEqual
	// CondIfTrue tests a single boolean operand.
	CondIfTrue
	// CondIfFalse tests a single boolean operand.
	CondIfFalse
)

func (c Condition) String() string {
	switch c {
	case CondEqual:
		return "e"
	case CondNotEqual:
		return "ne"
	case CondLess:
		return "l"
	case CondLessEqual:
		return "le"
	case CondGreater:
		return "g"
	case CondGreaterEqual:
		return "ge"
	case CondIfTrue:
		return "if_true"
	case CondIfFalse:
		return "if_false"
	default:
		return fmt.Sprintf("Condition(%d)", c)
	}
}

// Unary reports whether the condition reads only the first operand.
func (c Condition) Unary() bool {
	return c == CondIfTrue || c == CondIfFalse
}

// CalcOp is a binary arithmetic or bitwise operator.
type CalcOp uint8

const (
	OpAdd CalcOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	// OpUshr is the logical (zero-filling) right shift.
	OpUshr
)

var calcOpNames = [...]string{
	OpAdd:  "add",
	OpSub:  "sub",
	OpMul:  "mul",
	OpDiv:  "div",
	OpMod:  "mod",
	OpAnd:  "and",
	OpOr:   "or",
	OpXor:  "xor",
	OpShl:  "shl",
	OpShr:  "shr",
	OpUshr: "ushr",
}

func (op CalcOp) String() string {
	if int(op) < len(calcOpNames) {
		return calcOpNames[op]
	}
	return fmt.Sprintf("CalcOp(%d)", op)
}

// CastKind enumerates type conversions.
type CastKind uint8

const (
	CastZext CastKind = iota
	CastSext
	CastTrunc
	CastItof
	CastFtoi
	CastFext
	CastFtrunc
)

var castKindNames = [...]string{
	CastZext:   "zext",
	CastSext:   "sext",
	CastTrunc:  "trunc",
	CastItof:   "itof",
	CastFtoi:   "ftoi",
	CastFext:   "fext",
	CastFtrunc: "ftrunc",
}

func (k CastKind) String() string {
	if int(k) < len(castKindNames) {
		return castKindNames[k]
	}
	return fmt.Sprintf("CastKind(%d)", k)
}

// Goto transfers control to Target unconditionally.
type Goto struct {
	Target string
}

// ConditionalJump transfers control to Target when Cond holds over
// (Operand1, Operand2) under Type, and falls through otherwise.
type ConditionalJump struct {
	Atomic   bool
	Type     Type
	Cond     Condition
	Operand1 Operand
	// Operand2 is nil for CondIfTrue and CondIfFalse.
	Operand2 Operand
	Target   string
}

// Return ends the function. Value is nil for void functions.
type Return struct {
	Value Operand
}

// Calculate computes Target = Operand1 Op Operand2.
type Calculate struct {
	Atomic   bool
	Op       CalcOp
	Type     Type
	Operand1 Operand
	Operand2 Operand
	Target   *VirtualRegister
}

// Not computes the bitwise complement of Operand.
type Not struct {
	Atomic  bool
	Type    Type
	Operand Operand
	Target  *VirtualRegister
}

// Negate computes the arithmetic negation of Operand.
type Negate struct {
	Atomic  bool
	Type    Type
	Operand Operand
	Target  *VirtualRegister
}

// Increase adds one to Operand in place. A nil Target captures nothing.
type Increase struct {
	Atomic  bool
	Type    Type
	Operand Operand
	Target  *VirtualRegister
}

// Decrease subtracts one from Operand in place. A nil Target captures nothing.
type Decrease struct {
	Atomic  bool
	Type    Type
	Operand Operand
	Target  *VirtualRegister
}

// Malloc allocates Size bytes on the heap.
type Malloc struct {
	Size   Operand
	Target *VirtualRegister
}

// Free releases a heap pointer.
type Free struct {
	Pointer Operand
}

// Realloc resizes a heap allocation.
type Realloc struct {
	Pointer Operand
	Size    Operand
	Target  *VirtualRegister
}

// StackAllocate reserves Size bytes in the current frame.
type StackAllocate struct {
	Size   Operand
	Target *VirtualRegister
}

// Get loads a value of Type from Address.
type Get struct {
	Type    Type
	Address Operand
	Target  *VirtualRegister
}

// Set stores Value of Type at Address.
type Set struct {
	Type    Type
	Address Operand
	Value   Operand
}

// SetVirtualRegister copies Source into Target.
type SetVirtualRegister struct {
	Source Operand
	Target *VirtualRegister
}

// TypeCast converts Source from From to To.
type TypeCast struct {
	Kind   CastKind
	From   Type
	Source Operand
	To     Type
	Target *VirtualRegister
}

// Invoke calls the function at Address. Target is nil when the result is discarded.
type Invoke struct {
	ReturnType    Type
	Address       Operand
	ArgumentTypes []Type
	Arguments     []Operand
	Target        *VirtualRegister
}

// Asm is an opaque inline assembly block. Resources[i] has type Types[i] and
// is bound to Names[i] inside Code.
type Asm struct {
	Code      string
	Types     []Type
	Resources []Operand
	Names     []string
}

// NoOperate does nothing.
type NoOperate struct{}

func (*Goto) isInstr()               {}
func (*ConditionalJump) isInstr()    {}
func (*Return) isInstr()             {}
func (*Calculate) isInstr()          {}
func (*Not) isInstr()                {}
func (*Negate) isInstr()             {}
func (*Increase) isInstr()           {}
func (*Decrease) isInstr()           {}
func (*Malloc) isInstr()             {}
func (*Free) isInstr()               {}
func (*Realloc) isInstr()            {}
func (*StackAllocate) isInstr()      {}
func (*Get) isInstr()                {}
func (*Set) isInstr()                {}
func (*SetVirtualRegister) isInstr() {}
func (*TypeCast) isInstr()           {}
func (*Invoke) isInstr()             {}
func (*Asm) isInstr()                {}
func (*NoOperate) isInstr()          {}

// Constructors ---------------------------------------------------------------

func NewGoto(target string) *Goto {
	return &Goto{Target: target}
}

// NewConditionalJump builds a conditional jump. op2 must be non-nil unless
// cond is CondIfTrue or CondIfFalse, in which case it is ignored.
func NewConditionalJump(atomic bool, t Type, cond Condition, op1, op2 Operand, target string) (*ConditionalJump, error) {
	if op1 == nil {
		return nil, fmt.Errorf("conditional_jump %s: first operand: %w", cond, ErrMissingOperand)
	}
	if cond.Unary() {
		op2 = nil
	} else if op2 == nil {
		return nil, fmt.Errorf("conditional_jump %s: second operand: %w", cond, ErrMissingOperand)
	}
	return &ConditionalJump{Atomic: atomic, Type: t, Cond: cond, Operand1: op1, Operand2: op2, Target: target}, nil
}

func NewReturn(value Operand) *Return {
	return &Return{Value: value}
}

func NewCalculate(atomic bool, op CalcOp, t Type, a, b Operand, target *VirtualRegister) *Calculate {
	return &Calculate{Atomic: atomic, Op: op, Type: t, Operand1: a, Operand2: b, Target: target}
}

func NewNot(atomic bool, t Type, operand Operand, target *VirtualRegister) *Not {
	return &Not{Atomic: atomic, Type: t, Operand: operand, Target: target}
}

func NewNegate(atomic bool, t Type, operand Operand, target *VirtualRegister) *Negate {
	return &Negate{Atomic: atomic, Type: t, Operand: operand, Target: target}
}

func NewIncrease(atomic bool, t Type, operand Operand, target *VirtualRegister) *Increase {
	return &Increase{Atomic: atomic, Type: t, Operand: operand, Target: target}
}

func NewDecrease(atomic bool, t Type, operand Operand, target *VirtualRegister) *Decrease {
	return &Decrease{Atomic: atomic, Type: t, Operand: operand, Target: target}
}

func NewMalloc(size Operand, target *VirtualRegister) *Malloc {
	return &Malloc{Size: size, Target: target}
}

func NewFree(ptr Operand) *Free {
	return &Free{Pointer: ptr}
}

func NewRealloc(ptr, size Operand, target *VirtualRegister) *Realloc {
	return &Realloc{Pointer: ptr, Size: size, Target: target}
}

func NewStackAllocate(size Operand, target *VirtualRegister) *StackAllocate {
	return &StackAllocate{Size: size, Target: target}
}

func NewGet(t Type, address Operand, target *VirtualRegister) *Get {
	return &Get{Type: t, Address: address, Target: target}
}

func NewSet(t Type, address, value Operand) *Set {
	return &Set{Type: t, Address: address, Value: value}
}

func NewSetVirtualRegister(source Operand, target *VirtualRegister) *SetVirtualRegister {
	return &SetVirtualRegister{Source: source, Target: target}
}

// NewTypeCast builds a cast after checking that kind fits the class and
// width of from and to.
func NewTypeCast(kind CastKind, from Type, source Operand, to Type, target *VirtualRegister) (*TypeCast, error) {
	if err := CheckCast(kind, from, to); err != nil {
		return nil, err
	}
	return &TypeCast{Kind: kind, From: from, Source: source, To: to, Target: target}, nil
}

// NewInvoke builds a call. argTypes and args are parallel and must have the
// same length.
func NewInvoke(returnType Type, address Operand, argTypes []Type, args []Operand, target *VirtualRegister) (*Invoke, error) {
	if len(argTypes) != len(args) {
		return nil, arity("invoke", "argument types", len(argTypes), "arguments", len(args))
	}
	return &Invoke{ReturnType: returnType, Address: address, ArgumentTypes: argTypes, Arguments: args, Target: target}, nil
}

// NewAsm builds an inline assembly escape. types, resources and names are
// parallel and must have the same length.
func NewAsm(code string, types []Type, resources []Operand, names []string) (*Asm, error) {
	if len(types) != len(resources) {
		return nil, arity("asm", "types", len(types), "resources", len(resources))
	}
	if len(resources) != len(names) {
		return nil, arity("asm", "resources", len(resources), "names", len(names))
	}
	return &Asm{Code: code, Types: types, Resources: resources, Names: names}, nil
}

func NewNoOperate() *NoOperate {
	return &NoOperate{}
}

// CheckCast reports a *CastError when kind does not fit from and to.
func CheckCast(kind CastKind, from, to Type) error {
	fail := func(reason string) error {
		return &CastError{Kind: kind, From: from, To: to, Reason: reason}
	}
	fi, fromInt := from.(IntType)
	ti, toInt := to.(IntType)
	switch kind {
	case CastZext, CastSext:
		if !fromInt || !toInt {
			return fail("integer operands required")
		}
		if fi.Width >= ti.Width {
			return fail("target must be wider than source")
		}
	case CastTrunc:
		if !fromInt || !toInt {
			return fail("integer operands required")
		}
		if fi.Width <= ti.Width {
			return fail("source must be wider than target")
		}
	case CastItof:
		if !fromInt || !IsFloating(to) {
			return fail("integer source and floating target required")
		}
	case CastFtoi:
		if !IsFloating(from) || !toInt {
			return fail("floating source and integer target required")
		}
	case CastFext:
		if !TypesEqual(from, Float) || !TypesEqual(to, Double) {
			return fail("float to double required")
		}
	case CastFtrunc:
		if !TypesEqual(from, Double) || !TypesEqual(to, Float) {
			return fail("double to float required")
		}
	default:
		return fail("unknown cast kind")
	}
	return nil
}

// IsTerminator reports whether ins transfers control.
func IsTerminator(ins Instr) bool {
	switch ins.(type) {
	case *Goto, *ConditionalJump, *Return:
		return true
	}
	return false
}

// Defines returns the virtual register written by ins, or nil.
func Defines(ins Instr) *VirtualRegister {
	switch in := ins.(type) {
	case *Calculate:
		return in.Target
	case *Not:
		return in.Target
	case *Negate:
		return in.Target
	case *Increase:
		return in.Target
	case *Decrease:
		return in.Target
	case *Malloc:
		return in.Target
	case *Realloc:
		return in.Target
	case *StackAllocate:
		return in.Target
	case *Get:
		return in.Target
	case *SetVirtualRegister:
		return in.Target
	case *TypeCast:
		return in.Target
	case *Invoke:
		return in.Target
	}
	return nil
}

// Rendering ------------------------------------------------------------------

func atomicPrefix(atomic bool) string {
	if atomic {
		return "atomic_"
	}
	return ""
}

func targetPrefix(target *VirtualRegister) string {
	if target == nil {
		return ""
	}
	return target.String() + " = "
}

func requiredTarget(target *VirtualRegister) string {
	if target == nil {
		return "%<reg?> = "
	}
	return target.String() + " = "
}

func (g *Goto) String() string {
	return "goto " + g.Target
}

func (j *ConditionalJump) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sconditional_jump %s %s, %s", atomicPrefix(j.Atomic), typeString(j.Type), j.Cond, operandString(j.Operand1))
	if !j.Cond.Unary() {
		fmt.Fprintf(&b, ", %s", operandString(j.Operand2))
	}
	fmt.Fprintf(&b, ", #%s", j.Target)
	return b.String()
}

func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

func (c *Calculate) String() string {
	return fmt.Sprintf("%s%s%s %s %s, %s", requiredTarget(c.Target), atomicPrefix(c.Atomic), c.Op, typeString(c.Type),
		operandString(c.Operand1), operandString(c.Operand2))
}

func (n *Not) String() string {
	return fmt.Sprintf("%s%snot %s %s", requiredTarget(n.Target), atomicPrefix(n.Atomic), typeString(n.Type), operandString(n.Operand))
}

func (n *Negate) String() string {
	return fmt.Sprintf("%s%sneg %s %s", requiredTarget(n.Target), atomicPrefix(n.Atomic), typeString(n.Type), operandString(n.Operand))
}

func (i *Increase) String() string {
	return fmt.Sprintf("%s%sinc %s %s", targetPrefix(i.Target), atomicPrefix(i.Atomic), typeString(i.Type), operandString(i.Operand))
}

func (d *Decrease) String() string {
	return fmt.Sprintf("%s%sdec %s %s", targetPrefix(d.Target), atomicPrefix(d.Atomic), typeString(d.Type), operandString(d.Operand))
}

func (m *Malloc) String() string {
	return fmt.Sprintf("%smalloc %s", requiredTarget(m.Target), operandString(m.Size))
}

func (f *Free) String() string {
	return "free " + operandString(f.Pointer)
}

func (r *Realloc) String() string {
	return fmt.Sprintf("%srealloc %s, %s", requiredTarget(r.Target), operandString(r.Pointer), operandString(r.Size))
}

func (s *StackAllocate) String() string {
	return fmt.Sprintf("%sstack_alloc %s", requiredTarget(s.Target), operandString(s.Size))
}

func (g *Get) String() string {
	return fmt.Sprintf("%sget %s %s", requiredTarget(g.Target), typeString(g.Type), operandString(g.Address))
}

func (s *Set) String() string {
	return fmt.Sprintf("set %s %s, %s", typeString(s.Type), operandString(s.Address), operandString(s.Value))
}

func (s *SetVirtualRegister) String() string {
	return requiredTarget(s.Target) + operandString(s.Source)
}

func (c *TypeCast) String() string {
	return fmt.Sprintf("%s%s %s %s to %s", requiredTarget(c.Target), c.Kind, typeString(c.From), operandString(c.Source), typeString(c.To))
}

func (c *Invoke) String() string {
	args := make([]string, len(c.Arguments))
	for i, arg := range c.Arguments {
		var t Type
		if i < len(c.ArgumentTypes) {
			t = c.ArgumentTypes[i]
		}
		args[i] = typeString(t) + " " + operandString(arg)
	}
	return fmt.Sprintf("%sinvoke %s %s(%s)", targetPrefix(c.Target), typeString(c.ReturnType), operandString(c.Address), strings.Join(args, ", "))
}

func (a *Asm) String() string {
	bindings := make([]string, len(a.Resources))
	for i, res := range a.Resources {
		var t Type
		if i < len(a.Types) {
			t = a.Types[i]
		}
		name := "?"
		if i < len(a.Names) {
			name = a.Names[i]
		}
		bindings[i] = fmt.Sprintf("%s %s -> %s", typeString(t), operandString(res), name)
	}
	return fmt.Sprintf("asm %s [%s]", strconv.Quote(a.Code), strings.Join(bindings, ", "))
}

func (*NoOperate) String() string {
	return "nop"
}
