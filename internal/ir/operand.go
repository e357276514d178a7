package ir

import (
	"fmt"
	"strings"
)

// Operand is a value producer or consumer. The set of implementations is closed.
type Operand interface {
	Node
	isOperand()
}

// VirtualRegister names an SSA value.
type VirtualRegister struct {
	Name string
}

// Constant refers to an entry of the module constant pool by index.
type Constant struct {
	Index uint32
}

// Macro is a placeholder expanded by the backend.
type Macro struct {
	Name     string
	Args     []string
	Operands []Operand
}

// Phi selects one of Operands depending on the predecessor block named by
// the label at the same position.
type Phi struct {
	Type     Type
	Labels   []string
	Operands []Operand
}

// VirtualTable lists function names in dispatch-offset order.
type VirtualTable struct {
	Functions []string
}

// InterfaceTableEntry is the function list of one implemented interface.
type InterfaceTableEntry struct {
	Name      string
	Functions []string
}

// InterfaceTable lists implemented interfaces in dispatch order.
type InterfaceTable struct {
	Entries []InterfaceTableEntry
}

// NewVirtualRegister returns %name.
func NewVirtualRegister(name string) *VirtualRegister {
	return &VirtualRegister{Name: name}
}

// NewConstant returns $index.
func NewConstant(index uint32) *Constant {
	return &Constant{Index: index}
}

// NewMacro builds a macro operand.
func NewMacro(name string, args []string, operands []Operand) *Macro {
	return &Macro{Name: name, Args: args, Operands: operands}
}

// NewPhi builds a phi operand. Labels and operands are parallel lists and
// must have the same length.
func NewPhi(t Type, labels []string, operands []Operand) (*Phi, error) {
	if len(labels) != len(operands) {
		return nil, arity("phi", "labels", len(labels), "operands", len(operands))
	}
	return &Phi{Type: t, Labels: labels, Operands: operands}, nil
}

// NewVirtualTable builds a virtual table operand.
func NewVirtualTable(functions []string) *VirtualTable {
	return &VirtualTable{Functions: functions}
}

// NewInterfaceTable builds an interface table operand.
func NewInterfaceTable(entries []InterfaceTableEntry) *InterfaceTable {
	return &InterfaceTable{Entries: entries}
}

func (*VirtualRegister) isOperand() {}
func (*Constant) isOperand()        {}
func (*Macro) isOperand()           {}
func (*Phi) isOperand()             {}
func (*VirtualTable) isOperand()    {}
func (*InterfaceTable) isOperand()  {}

func (r *VirtualRegister) String() string {
	return "%" + r.Name
}

func (c *Constant) String() string {
	return fmt.Sprintf("$%d", c.Index)
}

func (m *Macro) String() string {
	return fmt.Sprintf("`%s([%s], [%s])", m.Name, strings.Join(m.Args, ", "), joinOperands(m.Operands))
}

func (p *Phi) String() string {
	pairs := make([]string, 0, len(p.Labels))
	for i, label := range p.Labels {
		op := "<?>"
		if i < len(p.Operands) {
			op = operandString(p.Operands[i])
		}
		pairs = append(pairs, fmt.Sprintf("[%s, %s]", label, op))
	}
	return fmt.Sprintf("phi %s %s", typeString(p.Type), strings.Join(pairs, ", "))
}

func (t *VirtualTable) String() string {
	return "vtable {" + strings.Join(t.Functions, ", ") + "}"
}

func (e InterfaceTableEntry) String() string {
	return e.Name + ": {" + strings.Join(e.Functions, ", ") + "}"
}

func (t *InterfaceTable) String() string {
	parts := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		parts[i] = e.String()
	}
	return "itable {" + strings.Join(parts, ", ") + "}"
}

func operandString(op Operand) string {
	if op == nil {
		return "<operand?>"
	}
	return op.String()
}

func joinOperands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = operandString(op)
	}
	return strings.Join(parts, ", ")
}
