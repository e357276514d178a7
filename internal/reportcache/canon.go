package reportcache

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"irkit/internal/ir"
)

// canon writes a lossless msgpack encoding of a module: every field of every
// node, nil markers for absent children and explicit lengths for every list.
// Two modules encode the same only if validation cannot tell them apart.
type canon struct {
	enc *msgpack.Encoder
	err error
}

func encodeModule(w io.Writer, m *ir.Module) error {
	c := &canon{enc: msgpack.NewEncoder(w)}
	c.module(m)
	return c.err
}

func (c *canon) keep(err error) {
	if c.err == nil && err != nil {
		c.err = err
	}
}

func (c *canon) str(s string)    { c.keep(c.enc.EncodeString(s)) }
func (c *canon) tag(kind string) { c.keep(c.enc.EncodeString(kind)) }
func (c *canon) flag(b bool)     { c.keep(c.enc.EncodeBool(b)) }
func (c *canon) num(n int64)     { c.keep(c.enc.EncodeInt(n)) }
func (c *canon) null()           { c.keep(c.enc.EncodeNil()) }
func (c *canon) list(n int)      { c.keep(c.enc.EncodeArrayLen(n)) }

func (c *canon) strs(ss []string) {
	c.list(len(ss))
	for _, s := range ss {
		c.str(s)
	}
}

func (c *canon) module(m *ir.Module) {
	c.tag("module")
	c.str(m.Name)
	c.str(m.EntryPoint)

	structs := m.Structures()
	c.list(len(structs))
	for _, s := range structs {
		c.str(s.Name)
		c.fields(s.Fields)
	}

	if m.ConstantPool == nil {
		c.null()
	} else {
		c.list(len(m.ConstantPool.Entries))
		for _, e := range m.ConstantPool.Entries {
			c.constant(e)
		}
	}

	if m.GlobalDataSection == nil {
		c.null()
	} else {
		c.list(len(m.GlobalDataSection.Data))
		for _, d := range m.GlobalDataSection.Data {
			if d == nil {
				c.null()
				continue
			}
			c.str(d.Name)
			c.typ(d.Type)
			c.operand(d.Size)
			c.operands(d.Values)
		}
	}

	c.graph(m.GlobalInit)

	fns := m.Functions()
	c.list(len(fns))
	for _, f := range fns {
		c.str(f.Name)
		c.typ(f.ReturnType)
		c.num(int64(f.ArgumentsCount))
		c.fields(f.Fields)
		c.graph(f.ControlFlowGraph)
	}

	vowners := m.VTableOwners()
	c.list(len(vowners))
	for _, owner := range vowners {
		keys, _ := m.VTableKeys(owner)
		c.str(owner)
		c.strs(keys)
	}
	iowners := m.ITableOwners()
	c.list(len(iowners))
	for _, owner := range iowners {
		entries, _ := m.ITableKeys(owner)
		c.str(owner)
		c.entries(entries)
	}
}

func (c *canon) fields(fs []*ir.Field) {
	c.list(len(fs))
	for _, f := range fs {
		if f == nil {
			c.null()
			continue
		}
		c.str(f.Name)
		c.typ(f.Type)
	}
}

func (c *canon) constant(e *ir.ConstantPoolEntry) {
	if e == nil {
		c.null()
		return
	}
	c.typ(e.Type)
	// The Go type of the value is part of the key: 4 and 4.0 differ.
	c.str(fmt.Sprintf("%T", e.Value))
	if err := c.enc.Encode(e.Value); err != nil {
		c.str(fmt.Sprintf("%#v", e.Value))
	}
}

func (c *canon) graph(g *ir.ControlFlowGraph) {
	if g == nil {
		c.null()
		return
	}
	c.str(g.Name)
	blocks := g.Blocks()
	c.list(len(blocks))
	for _, b := range blocks {
		c.str(b.Name)
		c.list(len(b.Instructions))
		for _, ins := range b.Instructions {
			c.instr(ins)
		}
	}
	edges := g.Edges()
	c.list(len(edges))
	for _, e := range edges {
		c.num(int64(e.From))
		c.num(int64(e.To))
	}
}

func (c *canon) typ(t ir.Type) {
	switch t := t.(type) {
	case nil:
		c.null()
	case ir.IntType:
		c.tag("int")
		c.num(int64(t.Width))
		c.flag(t.Unsigned)
	case ir.FloatType:
		c.tag("float")
	case ir.DoubleType:
		c.tag("double")
	case ir.VoidType:
		c.tag("void")
	case ir.PointerType:
		c.tag("ptr")
		c.typ(t.Base)
	default:
		c.keep(fmt.Errorf("reportcache: unexpected type %T", t))
	}
}

func (c *canon) types(ts []ir.Type) {
	c.list(len(ts))
	for _, t := range ts {
		c.typ(t)
	}
}

func (c *canon) entries(es []ir.InterfaceTableEntry) {
	c.list(len(es))
	for _, e := range es {
		c.str(e.Name)
		c.strs(e.Functions)
	}
}

func (c *canon) operand(op ir.Operand) {
	switch op := op.(type) {
	case nil:
		c.null()
	case *ir.VirtualRegister:
		c.reg(op)
	case *ir.Constant:
		c.tag("const")
		c.num(int64(op.Index))
	case *ir.Macro:
		c.tag("macro")
		c.str(op.Name)
		c.strs(op.Args)
		c.operands(op.Operands)
	case *ir.Phi:
		c.tag("phi")
		c.typ(op.Type)
		c.strs(op.Labels)
		c.operands(op.Operands)
	case *ir.VirtualTable:
		c.tag("vtable")
		c.strs(op.Functions)
	case *ir.InterfaceTable:
		c.tag("itable")
		c.entries(op.Entries)
	default:
		c.keep(fmt.Errorf("reportcache: unexpected operand %T", op))
	}
}

func (c *canon) operands(ops []ir.Operand) {
	c.list(len(ops))
	for _, op := range ops {
		c.operand(op)
	}
}

func (c *canon) reg(r *ir.VirtualRegister) {
	if r == nil {
		c.null()
		return
	}
	c.tag("reg")
	c.str(r.Name)
}

func (c *canon) instr(ins ir.Instr) {
	switch i := ins.(type) {
	case nil:
		c.null()
	case *ir.Goto:
		c.tag("goto")
		c.str(i.Target)
	case *ir.ConditionalJump:
		c.tag("cj")
		c.flag(i.Atomic)
		c.typ(i.Type)
		c.num(int64(i.Cond))
		c.operand(i.Operand1)
		c.operand(i.Operand2)
		c.str(i.Target)
	case *ir.Return:
		c.tag("return")
		c.operand(i.Value)
	case *ir.Calculate:
		c.tag("calc")
		c.flag(i.Atomic)
		c.num(int64(i.Op))
		c.typ(i.Type)
		c.operand(i.Operand1)
		c.operand(i.Operand2)
		c.reg(i.Target)
	case *ir.Not:
		c.unary("not", i.Atomic, i.Type, i.Operand, i.Target)
	case *ir.Negate:
		c.unary("neg", i.Atomic, i.Type, i.Operand, i.Target)
	case *ir.Increase:
		c.unary("inc", i.Atomic, i.Type, i.Operand, i.Target)
	case *ir.Decrease:
		c.unary("dec", i.Atomic, i.Type, i.Operand, i.Target)
	case *ir.Malloc:
		c.tag("malloc")
		c.operand(i.Size)
		c.reg(i.Target)
	case *ir.Free:
		c.tag("free")
		c.operand(i.Pointer)
	case *ir.Realloc:
		c.tag("realloc")
		c.operand(i.Pointer)
		c.operand(i.Size)
		c.reg(i.Target)
	case *ir.StackAllocate:
		c.tag("stack_alloc")
		c.operand(i.Size)
		c.reg(i.Target)
	case *ir.Get:
		c.tag("get")
		c.typ(i.Type)
		c.operand(i.Address)
		c.reg(i.Target)
	case *ir.Set:
		c.tag("set")
		c.typ(i.Type)
		c.operand(i.Address)
		c.operand(i.Value)
	case *ir.SetVirtualRegister:
		c.tag("mov")
		c.operand(i.Source)
		c.reg(i.Target)
	case *ir.TypeCast:
		c.tag("cast")
		c.num(int64(i.Kind))
		c.typ(i.From)
		c.operand(i.Source)
		c.typ(i.To)
		c.reg(i.Target)
	case *ir.Invoke:
		c.tag("invoke")
		c.typ(i.ReturnType)
		c.operand(i.Address)
		c.types(i.ArgumentTypes)
		c.operands(i.Arguments)
		c.reg(i.Target)
	case *ir.Asm:
		c.tag("asm")
		c.str(i.Code)
		c.types(i.Types)
		c.operands(i.Resources)
		c.strs(i.Names)
	case *ir.NoOperate:
		c.tag("nop")
	default:
		c.keep(fmt.Errorf("reportcache: unexpected instruction %T", ins))
	}
}

func (c *canon) unary(kind string, atomic bool, t ir.Type, op ir.Operand, target *ir.VirtualRegister) {
	c.tag(kind)
	c.flag(atomic)
	c.typ(t)
	c.operand(op)
	c.reg(target)
}
