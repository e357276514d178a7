package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("empty timer reported %d phases", len(r.Phases))
	}

	idx := tm.Begin("validate")
	tm.End(idx, "0 diagnostics")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Name != "validate" || r.Phases[0].Note != "0 diagnostics" {
		t.Fatalf("report = %+v", r)
	}
	s := tm.Summary()
	if !strings.Contains(s, "validate") || !strings.Contains(s, "// 0 diagnostics") || !strings.Contains(s, "total") {
		t.Errorf("summary = %q", s)
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("pass"), "")
		}()
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 16 {
		t.Errorf("phases = %d, want 16", got)
	}
}
