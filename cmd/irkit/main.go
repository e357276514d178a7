package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"irkit/internal/config"
	"irkit/internal/observ"
	"irkit/internal/version"
)

// errValidationFailed is returned when a validated sample has errors. The
// diagnostics have already been printed, so main only sets the exit code.
var errValidationFailed = errors.New("validation failed")

// app carries the settings resolved once per invocation. Subcommands read
// them after the root PersistentPreRunE has run.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg     config.Config
	color   bool
	noCache bool
	timings bool
	timer   *observ.Timer
	cleanup func(failed bool)
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, timer: observ.NewTimer()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.finish(err != nil)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errValidationFailed):
		return 1
	default:
		fmt.Fprintf(stderr, "irkit: %v\n", err)
		return 1
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "irkit",
		Short:         "Typed IR toolkit",
		Long:          `irkit builds, validates and dumps programs in a typed three-address IR`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per module")
	flags.Int("jobs", 0, "passes run in parallel (0 = one per CPU)")
	flags.Bool("timings", false, "show timing information")
	flags.Bool("no-cache", false, "bypass the validation report cache")
	flags.String("config", "", "path to irkit.toml (default: search upward from the working directory)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")

	root.AddCommand(
		newDumpCmd(a),
		newValidateCmd(a),
		newStatsCmd(a),
		newTablesCmd(a),
		newSamplesCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and starts tracing.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	flags := cmd.Root().PersistentFlags()
	if a.noCache, err = flags.GetBool("no-cache"); err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if a.timings, err = flags.GetBool("timings"); err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	a.color = useColor(cfg.Output.Color, a.stdout)
	color.NoColor = !a.color

	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	a.cleanup = cleanup
	return nil
}

func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	return config.Discover(wd)
}

// applyFlags overrides configuration values with the flags the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Root().PersistentFlags()
	var err error
	if flags.Changed("color") {
		if cfg.Output.Color, err = flags.GetString("color"); err != nil {
			return fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if flags.Changed("max-diagnostics") {
		if cfg.Output.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if cfg.Passes.Jobs, err = flags.GetInt("jobs"); err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("trace-level") {
		if cfg.Trace.Level, err = flags.GetString("trace-level"); err != nil {
			return fmt.Errorf("failed to get trace-level flag: %w", err)
		}
	}
	if flags.Changed("trace-mode") {
		if cfg.Trace.Mode, err = flags.GetString("trace-mode"); err != nil {
			return fmt.Errorf("failed to get trace-mode flag: %w", err)
		}
	}
	if flags.Changed("trace") {
		if cfg.Trace.Output, err = flags.GetString("trace"); err != nil {
			return fmt.Errorf("failed to get trace flag: %w", err)
		}
		// An output without a level still means the user wants a trace.
		if !flags.Changed("trace-level") && cfg.Trace.Level == "off" {
			cfg.Trace.Level = "phase"
		}
	}
	return nil
}

// finish releases the tracer and prints timings. It runs even when the
// command failed.
func (a *app) finish(failed bool) {
	if a.timings {
		fmt.Fprint(a.stderr, a.timer.Summary())
	}
	if a.cleanup != nil {
		a.cleanup(failed)
	}
}

func useColor(mode string, out io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
