package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"irkit/internal/diag"
	"irkit/internal/irvalid"
	"irkit/internal/pass"
	"irkit/internal/reportcache"
	"irkit/internal/samples"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

type validateOptions struct {
	format     string
	notes      bool
	clearCache bool
}

// validateOutcome is the per-sample summary row.
type validateOutcome struct {
	sample   string
	bag      *diag.Bag
	cacheHit bool
	cached   bool
}

func newValidateCmd(a *app) *cobra.Command {
	var opts validateOptions
	cmd := &cobra.Command{
		Use:   "validate <sample>...",
		Short: "Validate sample modules and report diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case "pretty", "golden":
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or golden)", opts.format)
			}

			if opts.clearCache {
				c, err := reportcache.Open(a.cfg.Cache.Dir)
				if err != nil {
					return fmt.Errorf("open report cache: %w", err)
				}
				if err := c.DropAll(); err != nil {
					return fmt.Errorf("clear report cache: %w", err)
				}
			}

			var cache *reportcache.Cache
			if a.cfg.Cache.Enabled && !a.noCache {
				c, err := reportcache.Open(a.cfg.Cache.Dir)
				if err != nil {
					return fmt.Errorf("open report cache: %w", err)
				}
				cache = c
			}

			out := cmd.OutOrStdout()
			outcomes := make([]validateOutcome, 0, len(args))
			for _, name := range args {
				s, err := lookupSample(name)
				if err != nil {
					return err
				}
				o, err := a.validateSample(cmd, s, cache)
				if err != nil {
					return err
				}
				printDiagnostics(out, o.bag, opts)
				outcomes = append(outcomes, o)
			}

			summary := a.table("summary", "sample", "status", "errors", "warnings", "cache")
			summary.StatusColumn = 1
			failed := false
			for _, o := range outcomes {
				status := "ok"
				switch {
				case o.bag.HasErrors():
					status, failed = "error", true
				case o.bag.HasWarnings():
					status = "warning"
				}
				cacheState := "off"
				if o.cached {
					cacheState = "miss"
					if o.cacheHit {
						cacheState = "hit"
					}
				}
				summary.Row(o.sample, status,
					strconv.Itoa(o.bag.Count(diag.SevError)),
					strconv.Itoa(o.bag.Count(diag.SevWarning)),
					cacheState)
			}
			if opts.format == "pretty" {
				fmt.Fprint(out, summary.Render())
			}
			if failed {
				return errValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "pretty", "output format (pretty|golden)")
	cmd.Flags().BoolVar(&opts.notes, "notes", false, "include notes in golden output")
	cmd.Flags().BoolVar(&opts.clearCache, "clear-cache", false, "drop every cached report before validating")
	return cmd
}

// validateSample runs validation and the table stability check on one
// sample. Validation goes through cache when it is not nil.
func (a *app) validateSample(cmd *cobra.Command, s samples.Sample, cache *reportcache.Cache) (validateOutcome, error) {
	m, err := s.Build()
	if err != nil {
		return validateOutcome{}, fmt.Errorf("build %s: %w", s.Name, err)
	}
	opts := irvalid.Options{MaxDiagnostics: a.cfg.Output.MaxDiagnostics}
	o := validateOutcome{sample: s.Name, bag: diag.NewBag(opts.MaxDiagnostics), cached: cache != nil}

	passes := []pass.Pass{pass.TableStability{Rebuild: s.Build}}
	if cache != nil {
		idx := a.timer.Begin("validate:cache")
		bag, hit, err := cache.Validate(m, opts)
		if err != nil {
			a.timer.End(idx, "failed")
			return o, fmt.Errorf("validate %s: %w", s.Name, err)
		}
		note := "miss"
		if hit {
			note = "hit"
		}
		a.timer.End(idx, note)
		o.bag.Merge(bag)
		o.cacheHit = hit
	} else {
		passes = append(passes, pass.Validate{Options: opts})
	}

	results, err := pass.RunConcurrent(cmd.Context(), m, passes, a.passOptions())
	if err != nil {
		return o, err
	}
	for _, r := range results {
		if r.Bag != nil {
			o.bag.Merge(r.Bag)
		}
	}
	o.bag.Sort()
	return o, nil
}

func printDiagnostics(out io.Writer, bag *diag.Bag, opts validateOptions) {
	if opts.format == "golden" {
		if bag.Len() > 0 {
			fmt.Fprintln(out, diag.FormatGoldenDiagnostics(bag.Items(), opts.notes))
		}
		return
	}
	for _, d := range bag.Items() {
		fmt.Fprintln(out, colorDiagnostic(d))
	}
}

// colorDiagnostic highlights the severity label of a formatted diagnostic.
func colorDiagnostic(d diag.Diagnostic) string {
	text := diag.FormatDiagnostic(d)
	label := d.Severity.Label()
	var c *color.Color
	switch d.Severity {
	case diag.SevError:
		c = errorColor
	case diag.SevWarning:
		c = warningColor
	default:
		c = infoColor
	}
	return c.Sprint(label) + strings.TrimPrefix(text, label)
}
