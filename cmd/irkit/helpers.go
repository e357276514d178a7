package main

import (
	"fmt"
	"strings"

	"irkit/internal/ir"
	"irkit/internal/pass"
	"irkit/internal/samples"
	"irkit/internal/ui"
)

func lookupSample(name string) (samples.Sample, error) {
	s, ok := samples.Lookup(name)
	if !ok {
		return samples.Sample{}, fmt.Errorf("unknown sample %q (available: %s)", name, strings.Join(samples.Names(), ", "))
	}
	return s, nil
}

// loadSample builds the named sample module.
func loadSample(name string) (samples.Sample, *ir.Module, error) {
	s, err := lookupSample(name)
	if err != nil {
		return s, nil, err
	}
	m, err := s.Build()
	if err != nil {
		return s, nil, fmt.Errorf("build %s: %w", name, err)
	}
	return s, m, nil
}

func (a *app) passOptions() pass.Options {
	return pass.Options{Jobs: a.cfg.Passes.Jobs, Timer: a.timer}
}

func (a *app) table(title string, headers ...string) *ui.Table {
	t := ui.NewTable(title, headers...)
	t.Styled = a.color
	return t
}
