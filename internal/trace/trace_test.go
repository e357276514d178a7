package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		lvl, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if lvl.String() != strings.ToLower(s) {
			t.Errorf("round trip %q -> %q", s, lvl)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if got := Level(42).String(); got != "unknown" {
		t.Errorf("Level(42).String() = %q", got)
	}
}

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeFunction, false},
		{LevelDetail, ScopeFunction, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
		{Level(42), ScopeDriver, false},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	span := Begin(tr, ScopePass, "validate", 0)
	Begin(tr, ScopeFunction, "function:add", span.ID()).End("")
	span.WithExtra("functions", "1").WithExtra("diagnostics", "0").End("ok")

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "[pass] → validate") {
		t.Errorf("begin line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "← validate (ok) {diagnostics=0, functions=1}") {
		t.Errorf("end line = %q", lines[1])
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeNode, "phi", "arity 2", 7)
	if !strings.Contains(buf.String(), `"kind":"point"`) || !strings.Contains(buf.String(), `"parent_id":7`) {
		t.Errorf("ndjson = %s", buf.String())
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeNode, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d", len(snap))
	}
	var names []string
	for _, ev := range snap {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Errorf("snapshot = %s, want c,d,e", got)
	}

	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}

	var buf bytes.Buffer
	n, err := r.Dump(&buf, FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || strings.Count(buf.String(), "\n") != 3 {
		t.Errorf("dump wrote %d events: %q", n, buf.String())
	}
}

// TestMultiTracerDumpsRing checks that a stream plus ring tracer replays
// only the ring's events and that levels filter what the ring keeps.
func TestMultiTracerDumpsRing(t *testing.T) {
	var live bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &live, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	span := Begin(tr, ScopePass, "validate", 0)
	Point(tr, ScopeNode, "phi", "", span.ID())
	span.End("ok")

	d, ok := tr.(Dumper)
	if !ok {
		t.Fatalf("%T is not a Dumper", tr)
	}
	var replay bytes.Buffer
	n, err := d.Dump(&replay, FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("replayed %d events, want 2:\n%s", n, replay.String())
	}
	// Each tracer stamps its own sequence numbers.
	unseq := func(s string) []string {
		lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
		for i, l := range lines {
			_, rest, _ := strings.Cut(l, " [")
			lines[i] = rest
		}
		return lines
	}
	if got, want := unseq(replay.String()), unseq(live.String()); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("replay differs from live stream:\n%s\nvs\n%s", replay.String(), live.String())
	}
	if strings.Contains(replay.String(), "phi") {
		t.Errorf("node event kept at phase level:\n%s", replay.String())
	}

	stream, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &live})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := stream.(Dumper); ok {
		t.Error("stream tracer claims to hold events")
	}
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Error("empty context must yield Nop")
	}
	r := NewRingTracer(8, LevelPhase)
	ctx = WithTracer(ctx, r)
	span := Begin(FromContext(ctx), ScopeDriver, "validate", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() || span.ID() == 0 {
		t.Errorf("CurrentSpan = %d, span = %d", CurrentSpan(ctx), span.ID())
	}
	if Begin(Nop, ScopeDriver, "x", 0).ID() != 0 {
		t.Error("Nop span has an id")
	}
}

func TestNewSelectsTracer(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*MultiTracer); !ok {
		t.Errorf("ModeBoth built %T", tr)
	}
	if _, err := New(Config{Level: LevelPhase, Mode: StorageMode(9)}); err == nil {
		t.Error("unknown mode accepted")
	}
}
