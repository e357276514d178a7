// Package pass runs read-only analyses over a module. Passes never mutate
// IR, so independent passes may share one module across goroutines; each
// pass owns its Result.
package pass

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"irkit/internal/diag"
	"irkit/internal/ir"
	"irkit/internal/observ"
	"irkit/internal/trace"
)

// Pass is one analysis over a module.
type Pass interface {
	Name() string
	Run(ctx context.Context, m *ir.Module) (Result, error)
}

// Result is what one pass produced.
type Result struct {
	Pass string
	// Bag holds diagnostics; nil for passes that report none.
	Bag *diag.Bag
	// Value is the pass-specific payload (Counts, a dump, ...).
	Value    any
	Duration time.Duration
}

// Options configures a run.
type Options struct {
	// Jobs bounds the number of passes run at once by RunConcurrent;
	// 0 means GOMAXPROCS.
	Jobs int
	// Timer, when set, records one phase per pass.
	Timer *observ.Timer
}

// Run executes passes in order and stops at the first error. The context is
// checked between passes; a pass itself runs to completion.
func Run(ctx context.Context, m *ir.Module, passes []Pass, opts Options) ([]Result, error) {
	results := make([]Result, 0, len(passes))
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := runOne(ctx, m, p, opts)
		results = append(results, r)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// RunConcurrent executes independent passes in parallel. Results keep the
// order of passes. The first error cancels the passes not yet started.
func RunConcurrent(ctx context.Context, m *ir.Module, passes []Pass, opts Options) ([]Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(passes))
	if len(passes) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(passes)))
	for i, p := range passes {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// each goroutine writes its own slot
			r, err := runOne(gctx, m, p, opts)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runOne(ctx context.Context, m *ir.Module, p Pass, opts Options) (Result, error) {
	name := p.Name()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, name, trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	idx := -1
	if opts.Timer != nil {
		idx = opts.Timer.Begin(name)
	}
	start := time.Now()
	r, err := p.Run(ctx, m)
	r.Pass = name
	r.Duration = time.Since(start)

	note := ""
	if r.Bag != nil {
		note = fmt.Sprintf("%d diagnostics", r.Bag.Len())
		span.WithExtra("diagnostics", strconv.Itoa(r.Bag.Len()))
	}
	if opts.Timer != nil {
		opts.Timer.End(idx, note)
	}
	if err != nil {
		span.End("error: " + err.Error())
		return r, fmt.Errorf("pass %s: %w", name, err)
	}
	span.End(note)
	return r, nil
}
