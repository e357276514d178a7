package pass

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"

	"irkit/internal/ir"
	"irkit/internal/irdump"
	"irkit/internal/irvalid"
	"irkit/internal/trace"
)

// Validate runs irvalid over the module.
type Validate struct {
	Options irvalid.Options
}

func (Validate) Name() string { return "validate" }

func (p Validate) Run(_ context.Context, m *ir.Module) (Result, error) {
	return Result{Bag: irvalid.ValidateWith(m, p.Options)}, nil
}

// Dump renders the module; Value is the listing as a string.
type Dump struct {
	Options irdump.DumpOptions
}

func (Dump) Name() string { return "dump" }

func (p Dump) Run(_ context.Context, m *ir.Module) (Result, error) {
	var sb strings.Builder
	if err := irdump.DumpModule(&sb, m, p.Options); err != nil {
		return Result{}, err
	}
	return Result{Value: sb.String()}, nil
}

// TableStability rebuilds the module and compares its dispatch tables with
// the module under test.
type TableStability struct {
	Rebuild func() (*ir.Module, error)
}

func (TableStability) Name() string { return "table-stability" }

func (p TableStability) Run(_ context.Context, m *ir.Module) (Result, error) {
	again, err := p.Rebuild()
	if err != nil {
		return Result{}, err
	}
	return Result{Bag: irvalid.CompareTables(m, again)}, nil
}

// Count tallies nodes per kind; Value is a Counts.
type Count struct{}

func (Count) Name() string { return "count" }

func (Count) Run(ctx context.Context, m *ir.Module) (Result, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)
	for _, f := range m.Functions() {
		n := 0
		ir.Inspect(f, func(ir.Node) bool {
			n++
			return true
		})
		trace.Point(tracer, trace.ScopeFunction, "count:"+f.Name, strconv.Itoa(n)+" nodes", parent)
	}
	return Result{Value: CountNodes(m)}, nil
}

// Counts maps ir.KindOf names to occurrences.
type Counts map[string]int

// KindCount is one row of Counts.Sorted.
type KindCount struct {
	Kind  string
	Count int
}

// CountNodes walks n and counts every node reached.
func CountNodes(n ir.Node) Counts {
	c := make(Counts)
	ir.Inspect(n, func(node ir.Node) bool {
		c[ir.KindOf(node)]++
		return true
	})
	return c
}

// Total is the sum over all kinds.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Sorted lists the kinds by descending count, then by name.
func (c Counts) Sorted() []KindCount {
	rows := make([]KindCount, 0, len(c))
	for _, k := range slices.Sorted(maps.Keys(c)) {
		rows = append(rows, KindCount{Kind: k, Count: c[k]})
	}
	slices.SortStableFunc(rows, func(a, b KindCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return rows
}
