package trace

import (
	"io"
	"sync"
)

// Dumper is implemented by tracers that hold events in memory and can
// replay them after the fact.
type Dumper interface {
	// Dump writes the held events to w and reports how many it wrote.
	Dump(w io.Writer, format Format) (int, error)
}

// RingTracer keeps the most recent events in a fixed-size buffer. Nothing is
// written until Dump is called, so it costs no output on a clean run.
type RingTracer struct {
	mu     sync.RWMutex
	events []Event
	// written counts every event ever stored; the slot of the next one is
	// written % len(events).
	written uint64
	level   Level
}

// NewRingTracer creates a RingTracer holding up to capacity events. A
// non-positive capacity selects the default of 4096.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

// Emit stores a copy of ev, overwriting the oldest event once the buffer
// is full.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.events[t.written%uint64(len(t.events))] = stored
	t.written++
	t.mu.Unlock()
}

// Len reports how many events are held.
func (t *RingTracer) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int(min(t.written, uint64(len(t.events))))
}

// Snapshot returns a copy of the held events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	size := uint64(len(t.events))
	n := min(t.written, size)
	out := make([]Event, 0, n)
	for i := t.written - n; i < t.written; i++ {
		out = append(out, t.events[i%size])
	}
	return out
}

// Dump writes the held events to w, oldest first.
func (t *RingTracer) Dump(w io.Writer, format Format) (int, error) {
	events := t.Snapshot()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return i, err
		}
	}
	return len(events), nil
}

// Flush does nothing; events stay in memory until Dump.
func (t *RingTracer) Flush() error {
	return nil
}

// Close does nothing. The buffer stays readable after Close.
func (t *RingTracer) Close() error {
	return nil
}

// Level returns the level the tracer was created with.
func (t *RingTracer) Level() Level {
	return t.level
}

// Enabled reports whether the tracer records anything at all.
func (t *RingTracer) Enabled() bool {
	return t.level > LevelOff
}
