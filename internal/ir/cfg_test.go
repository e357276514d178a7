package ir_test

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"irkit/internal/ir"
)

func TestControlFlowGraphBasics(t *testing.T) {
	g := ir.NewControlFlowGraph("f")
	if g.Entry() != nil {
		t.Fatal("empty graph has an entry block")
	}
	entry := g.AddBasicBlock(ir.NewBasicBlock("entry"))
	body := g.AddBasicBlock(ir.NewBasicBlock("body"))
	if entry != 0 || body != 1 {
		t.Fatalf("ids = %d, %d", entry, body)
	}
	if g.Entry().Name != "entry" {
		t.Errorf("Entry() = %s", g.Entry().Name)
	}

	replacement := ir.NewBasicBlock("body", ir.NewNoOperate())
	if id := g.AddBasicBlock(replacement); id != body {
		t.Errorf("re-adding body returned id %d", id)
	}
	if g.Len() != 2 || g.Block(body) != replacement {
		t.Error("duplicate name did not replace in place")
	}

	if err := g.AddEdge("entry", "missing"); err == nil {
		t.Error("AddEdge accepted an unknown target")
	}
	if err := g.AddEdge("entry", "body"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge("entry", "body"); err != nil {
		t.Fatalf("AddEdge repeat: %v", err)
	}
	if got := g.Successors(entry); !slices.Equal(got, []ir.BlockID{body}) {
		t.Errorf("Successors(entry) = %v", got)
	}
	if got := g.InDegree("body"); got != 1 {
		t.Errorf("InDegree(body) = %d", got)
	}
	if got := g.Successors(ir.NoBlockID); got != nil {
		t.Errorf("Successors(NoBlockID) = %v", got)
	}

	g.ClearEdges()
	if len(g.Edges()) != 0 {
		t.Errorf("edges after clear: %v", g.Edges())
	}
}

func TestControlFlowGraphReachable(t *testing.T) {
	g := ir.NewControlFlowGraph("f")
	for _, name := range []string{"a", "b", "c", "d"} {
		g.AddBasicBlock(ir.NewBasicBlock(name))
	}
	for _, e := range [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	want := []bool{true, true, false, false}
	if got := g.Reachable(); !slices.Equal(got, want) {
		t.Errorf("Reachable() = %v, want %v", got, want)
	}
}

// TestControlFlowGraphEdgeSymmetry checks that b is a successor of a exactly
// when a is a predecessor of b, for arbitrary edge sets.
func TestControlFlowGraphEdgeSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "blocks")
		g := ir.NewControlFlowGraph("g")
		for i := range n {
			g.AddBasicBlock(ir.NewBasicBlock(fmt.Sprintf("b%d", i)))
		}
		edges := rapid.SliceOfN(rapid.IntRange(0, n*n-1), 0, 40).Draw(t, "edges")
		for _, e := range edges {
			if err := g.AddEdge(fmt.Sprintf("b%d", e/n), fmt.Sprintf("b%d", e%n)); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}

		total := 0
		for i := range n {
			from := ir.BlockID(i)
			succ := g.Successors(from)
			total += len(succ)
			for _, to := range succ {
				if !slices.Contains(g.Predecessors(to), from) {
					t.Fatalf("%d -> %d missing from predecessors of %d", from, to, to)
				}
			}
			for _, p := range g.Predecessors(from) {
				if !slices.Contains(g.Successors(p), from) {
					t.Fatalf("%d <- %d missing from successors of %d", from, p, p)
				}
			}
			if got := g.InDegree(fmt.Sprintf("b%d", i)); got != len(g.Predecessors(from)) {
				t.Fatalf("InDegree(b%d) = %d, want %d", i, got, len(g.Predecessors(from)))
			}
		}
		if total != len(g.Edges()) {
			t.Fatalf("Edges() has %d entries, successors total %d", len(g.Edges()), total)
		}
	})
}

// TestConstantPoolIndices checks that Push hands out consecutive indices and
// never changes an entry already pushed.
func TestConstantPoolIndices(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.Int64()).Draw(t, "values")
		pool := ir.NewConstantPool()
		var entries []*ir.ConstantPoolEntry
		for i, v := range values {
			e := ir.NewConstantPoolEntry(ir.I64, v)
			if got := pool.Push(e); got != uint32(i) {
				t.Fatalf("Push #%d returned %d", i, got)
			}
			entries = append(entries, e)
			for j, prev := range entries {
				if pool.Entry(uint32(j)) != prev {
					t.Fatalf("entry %d changed after push %d", j, i)
				}
			}
		}
		if pool.Len() != len(values) {
			t.Fatalf("Len() = %d, want %d", pool.Len(), len(values))
		}
		if pool.Entry(uint32(len(values))) != nil {
			t.Fatal("Entry past the end is not nil")
		}
	})
}

func TestConstantPoolIntern(t *testing.T) {
	pool := ir.NewConstantPool()
	a := pool.Intern(ir.NewConstantPoolEntry(ir.I32, 1))
	b := pool.Intern(ir.NewConstantPoolEntry(ir.I64, 1))
	c := pool.Intern(ir.NewConstantPoolEntry(ir.I32, 1))
	if a != 0 || b != 1 || c != 0 {
		t.Errorf("Intern indices = %d, %d, %d", a, b, c)
	}
	if v, ok := pool.Entry(b).IntValue(); !ok || v != 1 {
		t.Errorf("IntValue() = %d, %v", v, ok)
	}
	if _, ok := ir.NewConstantPoolEntry(ir.Double, 1.5).IntValue(); ok {
		t.Error("double entry reported an integer value")
	}
}
