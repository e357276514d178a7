package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"irkit/internal/config"
	"irkit/internal/trace"
)

// setupTracing builds the tracer described by cfg, attaches it to the
// command context and opens a driver span named after the command. The
// returned cleanup ends the span and releases the tracer. When the command
// failed and the tracer kept events in memory, cleanup replays them to
// stderr first.
func setupTracing(cmd *cobra.Command, cfg config.Config) (func(failed bool), error) {
	tcfg, err := cfg.TraceConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid trace configuration: %w", err)
	}

	if tcfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	span := trace.Begin(tracer, trace.ScopeDriver, cmd.Name(), 0)
	ctx := trace.WithTracer(cmd.Context(), tracer)
	ctx = trace.WithSpan(ctx, span)
	cmd.SetContext(ctx)

	cleanup := func(failed bool) {
		detail := "ok"
		if failed {
			detail = "failed"
		}
		span.End(detail)
		if d, ok := tracer.(trace.Dumper); ok && failed {
			dumpRecent(cmd.ErrOrStderr(), d)
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

// dumpRecent replays the events a ring tracer held when a command failed.
func dumpRecent(w io.Writer, d trace.Dumper) {
	fmt.Fprintln(w, "trace: recent events:")
	if _, err := d.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
