package ir

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"
)

// BlockID is the dense index of a block inside its graph, assigned at insertion.
type BlockID int32

// NoBlockID marks a missing block.
const NoBlockID BlockID = -1

// Edge is a directed control transfer between two blocks.
type Edge struct {
	From BlockID
	To   BlockID
}

// ControlFlowGraph owns its basic blocks and the transfer relation between
// them. Blocks live in an arena indexed by BlockID; edges are adjacency lists
// of ids kept in both directions by the same call, so the relation stays
// symmetric.
type ControlFlowGraph struct {
	Name string

	blocks []*BasicBlock
	index  map[string]BlockID
	succ   [][]BlockID
	pred   [][]BlockID
}

func NewControlFlowGraph(name string) *ControlFlowGraph {
	return &ControlFlowGraph{Name: name, index: make(map[string]BlockID)}
}

// AddBasicBlock appends b keyed by its name. A block with an existing name
// replaces the old one in place and keeps its id and edges.
func (g *ControlFlowGraph) AddBasicBlock(b *BasicBlock) BlockID {
	if g.index == nil {
		g.index = make(map[string]BlockID)
	}
	if id, ok := g.index[b.Name]; ok {
		g.blocks[id] = b
		return id
	}
	n, err := safecast.Conv[int32](len(g.blocks))
	if err != nil {
		panic(fmt.Errorf("len(blocks) overflow: %w", err))
	}
	id := BlockID(n)
	g.blocks = append(g.blocks, b)
	g.succ = append(g.succ, nil)
	g.pred = append(g.pred, nil)
	g.index[b.Name] = id
	return id
}

// Len returns the number of blocks.
func (g *ControlFlowGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.blocks)
}

// Blocks returns the blocks in insertion order. The slice must not be modified.
func (g *ControlFlowGraph) Blocks() []*BasicBlock {
	if g == nil {
		return nil
	}
	return g.blocks
}

// Block returns the block with the given id, or nil.
func (g *ControlFlowGraph) Block(id BlockID) *BasicBlock {
	if g == nil || id < 0 || int(id) >= len(g.blocks) {
		return nil
	}
	return g.blocks[id]
}

// Lookup resolves a block name.
func (g *ControlFlowGraph) Lookup(name string) (BlockID, bool) {
	if g == nil {
		return NoBlockID, false
	}
	id, ok := g.index[name]
	if !ok {
		return NoBlockID, false
	}
	return id, true
}

// Entry returns the designated entry block: the first one inserted.
func (g *ControlFlowGraph) Entry() *BasicBlock {
	return g.Block(0)
}

// AddEdge records a transfer from one named block to another. Adding an
// existing edge is a no-op.
func (g *ControlFlowGraph) AddEdge(from, to string) error {
	fid, ok := g.Lookup(from)
	if !ok {
		return fmt.Errorf("cfg %s: edge source %q is not a block", g.Name, from)
	}
	tid, ok := g.Lookup(to)
	if !ok {
		return fmt.Errorf("cfg %s: edge target %q is not a block", g.Name, to)
	}
	if slices.Contains(g.succ[fid], tid) {
		return nil
	}
	g.succ[fid] = append(g.succ[fid], tid)
	g.pred[tid] = append(g.pred[tid], fid)
	return nil
}

// ClearEdges drops the whole transfer relation.
func (g *ControlFlowGraph) ClearEdges() {
	for i := range g.succ {
		g.succ[i] = nil
		g.pred[i] = nil
	}
}

// Successors returns the out-edges of id in insertion order.
func (g *ControlFlowGraph) Successors(id BlockID) []BlockID {
	if g.Block(id) == nil {
		return nil
	}
	return g.succ[id]
}

// Predecessors returns the in-edges of id in insertion order.
func (g *ControlFlowGraph) Predecessors(id BlockID) []BlockID {
	if g.Block(id) == nil {
		return nil
	}
	return g.pred[id]
}

// InDegree returns the number of predecessors of the named block.
func (g *ControlFlowGraph) InDegree(name string) int {
	id, ok := g.Lookup(name)
	if !ok {
		return 0
	}
	return len(g.pred[id])
}

// Edges lists every edge ordered by source id, then insertion.
func (g *ControlFlowGraph) Edges() []Edge {
	var out []Edge
	for i := range g.Blocks() {
		from := BlockID(i)
		for _, to := range g.succ[i] {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

// Reachable marks every block reachable from the entry block.
func (g *ControlFlowGraph) Reachable() []bool {
	seen := make([]bool, g.Len())
	if g.Len() == 0 {
		return seen
	}
	stack := []BlockID{0}
	seen[0] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.succ[id] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return seen
}

func (g *ControlFlowGraph) String() string {
	if g == nil {
		return "<cfg?>"
	}
	var sb strings.Builder
	for i, b := range g.blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.String())
	}
	return sb.String()
}
