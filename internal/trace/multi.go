package trace

import (
	"errors"
	"io"
)

// MultiTracer fans out trace events to several tracers, for example a
// stream for the live log and a ring kept for failure reports.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer creates a MultiTracer that emits to every tracer given.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{
		tracers: tracers,
		level:   level,
	}
}

// Emit sends a separate copy of ev to every underlying tracer, so one
// tracer stamping a sequence number does not affect the others.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

// Flush flushes every underlying tracer and joins their errors.
func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every underlying tracer and joins their errors.
func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// Dump replays every underlying tracer that holds events in memory.
func (t *MultiTracer) Dump(w io.Writer, format Format) (int, error) {
	total := 0
	for _, tr := range t.tracers {
		d, ok := tr.(Dumper)
		if !ok {
			continue
		}
		n, err := d.Dump(w, format)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Level returns the configured level.
func (t *MultiTracer) Level() Level {
	return t.level
}

// Enabled reports whether the level is above LevelOff.
func (t *MultiTracer) Enabled() bool {
	return t.level > LevelOff
}
