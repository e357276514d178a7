// Package irdump writes a human-readable listing of IR. It is a plain
// visitor: every line comes from a Visit method reached through ir.Walk.
package irdump

import (
	"fmt"
	"io"
	"strings"

	"irkit/internal/ir"
)

// DumpOptions configures dumping.
type DumpOptions struct {
	// Edges annotates every block with its predecessors and successors.
	Edges bool
	// Tables appends the vtable and itable keys of the module.
	Tables bool
}

// DumpModule writes m to w.
func DumpModule(w io.Writer, m *ir.Module, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	d := newDumper(w, opts)
	ir.Walk(d, m)
	if opts.Tables {
		d.tables(m)
	}
	return d.err
}

// DumpNode writes a function, graph or block the way DumpModule lists it.
// Other nodes are written as their String form.
func DumpNode(w io.Writer, n ir.Node, opts DumpOptions) error {
	if w == nil || n == nil {
		return nil
	}
	d := newDumper(w, opts)
	switch n.(type) {
	case *ir.Module, *ir.Function, *ir.ControlFlowGraph, *ir.BasicBlock:
		ir.Walk(d, n)
	default:
		d.printf("%s\n", n)
	}
	return d.err
}

// String is DumpModule into a string.
func String(m *ir.Module, opts DumpOptions) string {
	var sb strings.Builder
	_ = DumpModule(&sb, m, opts)
	return sb.String()
}

type dumper struct {
	ir.BaseVisitor

	w    io.Writer
	opts DumpOptions
	err  error

	inFunc bool
	cfg    *ir.ControlFlowGraph
}

func newDumper(w io.Writer, opts DumpOptions) *dumper {
	return &dumper{w: w, opts: opts}
}

func (d *dumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *dumper) VisitModule(m *ir.Module) bool {
	d.printf("module %s\n", m.Name)
	if m.EntryPoint != "" {
		d.printf("entry %s\n", m.EntryPoint)
	}
	if n := len(m.Structures()); n > 0 {
		d.printf("structures=%d\n", n)
	}
	return true
}

func (d *dumper) VisitStructure(s *ir.Structure) bool {
	d.printf("  %s\n", s)
	return false
}

func (d *dumper) VisitConstantPool(p *ir.ConstantPool) bool {
	if p.Len() == 0 {
		return false
	}
	d.printf("constants=%d\n", p.Len())
	for i, e := range p.Entries {
		d.printf("  $%d = %s\n", i, e)
	}
	return false
}

func (d *dumper) VisitGlobalDataSection(s *ir.GlobalDataSection) bool {
	if len(s.Data) == 0 {
		return false
	}
	d.printf("globals=%d\n", len(s.Data))
	for _, g := range s.Data {
		d.printf("  %s\n", g)
	}
	return false
}

func (d *dumper) VisitFunction(f *ir.Function) bool {
	d.inFunc = true
	d.printf("\nfunction %s\n", f.Signature())
	for _, l := range f.Locals() {
		d.printf("  local %s\n", l)
	}
	if f.ControlFlowGraph != nil {
		ir.Walk(d, f.ControlFlowGraph)
	}
	return false
}

func (d *dumper) VisitControlFlowGraph(g *ir.ControlFlowGraph) bool {
	if g.Len() == 0 {
		return false
	}
	if !d.inFunc {
		d.printf("\nglobal_init\n")
	}
	d.cfg = g
	return true
}

func (d *dumper) VisitBasicBlock(b *ir.BasicBlock) bool {
	if d.opts.Edges && d.cfg != nil {
		id, _ := d.cfg.Lookup(b.Name)
		d.printf("  %s:  ; preds=[%s] succs=[%s]\n", b.Name, d.names(d.cfg.Predecessors(id)), d.names(d.cfg.Successors(id)))
	} else {
		d.printf("  %s:\n", b.Name)
	}
	for _, ins := range b.Instructions {
		if ins == nil {
			d.printf("    <instr?>\n")
			continue
		}
		d.printf("    %s\n", ins)
	}
	return false
}

func (d *dumper) names(ids []ir.BlockID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = d.cfg.Block(id).Name
	}
	return strings.Join(parts, ", ")
}

func (d *dumper) tables(m *ir.Module) {
	if owners := m.VTableOwners(); len(owners) > 0 {
		d.printf("\nvtables=%d\n", len(owners))
		for _, owner := range owners {
			keys, _ := m.VTableKeys(owner)
			d.printf("  %s: %s\n", owner, ir.NewVirtualTable(keys))
		}
	}
	if owners := m.ITableOwners(); len(owners) > 0 {
		d.printf("\nitables=%d\n", len(owners))
		for _, owner := range owners {
			entries, _ := m.ITableKeys(owner)
			d.printf("  %s: %s\n", owner, ir.NewInterfaceTable(entries))
		}
	}
}
