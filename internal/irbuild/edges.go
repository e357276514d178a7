package irbuild

import "irkit/internal/ir"

// LinkEdges rebuilds the edge relation of g from the terminators of its
// blocks:
//
//	goto L                 edge to L
//	conditional_jump .. #L edge to L and to the next block
//	return                 no edge
//	(no terminator)        edge to the next block
//
// Existing edges are dropped first. Targets that do not name a block are
// skipped; the validator reports them.
func LinkEdges(g *ir.ControlFlowGraph) {
	if g == nil {
		return
	}
	g.ClearEdges()
	blocks := g.Blocks()
	for i, b := range blocks {
		var next string
		if i+1 < len(blocks) {
			next = blocks[i+1].Name
		}
		for _, to := range SuccessorNames(b, next) {
			if _, ok := g.Lookup(to); !ok {
				continue
			}
			// both ends resolve, so AddEdge cannot fail
			_ = g.AddEdge(b.Name, to) //nolint:errcheck
		}
	}
}

// SuccessorNames lists the names control may transfer to after b. next is
// the name of the following block, or "" for the last one.
func SuccessorNames(b *ir.BasicBlock, next string) []string {
	var out []string
	switch t := b.Terminator().(type) {
	case *ir.Goto:
		out = append(out, t.Target)
	case *ir.ConditionalJump:
		out = append(out, t.Target)
		if next != "" {
			out = append(out, next)
		}
	case *ir.Return:
	default:
		if next != "" {
			out = append(out, next)
		}
	}
	return out
}
