package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/roach88/col/internal/config"
	"github.com/roach88/col/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    int
	Log        []string
	LogTime    bool
	Color      bool
	NoColor    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Filled in by PersistentPreRunE.
	Config   *config.File
	UseColor bool
	Logger   *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the col CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "col",
		Short: "col - merge timestamped files column-wise",
		Long: `Merge timestamped data files into a single synchronized stream.

Every input line starts with a timestamp token. col checks that all inputs
advance through the same timestamps, line by line, and prints one line per
position holding the timestamp followed by the data of every file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewExitError(ExitCommandError, "missing action")
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVar(&opts.Color, "color", false, "force color mode (defaults to check tty)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "force no-color mode (defaults to check tty)")
	pf.BoolVar(&opts.LogTime, "log-time", false, "prepend time to each log line")
	pf.CountVarP(&opts.Verbose, "verbose", "v", "increase log verbosity (repeatable)")
	pf.StringArrayVarP(&opts.Log, "log", "l", nil, "per-component logging as TARGET:LEVEL (repeatable, comma-separated)")
	pf.StringVar(&opts.Format, "format", "text", "diagnostics format (json|text)")
	pf.StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	})

	// Add subcommands
	cmd.AddCommand(NewConcatCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stderr in the selected format.
func Execute(args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	format := opts.Format
	if !isValidFormat(format) {
		format = "text"
	}
	formatter := &OutputFormatter{
		Format:  format,
		Writer:  stderr,
		Color:   opts.UseColor,
		Verbose: opts.Verbose > 0,
	}
	_ = formatter.ReportError(err)
	return GetExitCode(err)
}

// resolve loads the config file, lets explicit flags override it, and sets up
// logging and colour.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg

	flags := cmd.Flags()
	if !flags.Changed("verbose") {
		o.Verbose = cfg.Verbose
	}
	if !flags.Changed("log-time") {
		o.LogTime = cfg.LogTime
	}
	if !flags.Changed("format") && cfg.Format != "" {
		o.Format = cfg.Format
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	if o.Color && o.NoColor {
		return NewExitError(ExitCommandError, "cannot use both --color and --no-color")
	}
	mode := cfg.Color
	switch {
	case o.Color:
		mode = config.ColorAlways
	case o.NoColor:
		mode = config.ColorNever
	}
	o.UseColor = applyColorMode(mode)

	// Config directives first so flags win ties.
	raw := logging.SplitDirectives(append(append([]string{}, cfg.Log...), o.Log...))
	directives, err := logging.ParseDirectives(raw)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid logging configuration", err)
	}

	logging.Setup(logging.Options{
		Writer:     cmd.ErrOrStderr(),
		Verbosity:  o.Verbose,
		Directives: directives,
		Time:       o.LogTime,
		Color:      o.UseColor,
	})
	o.Logger = logging.For("col.cli")
	o.Logger.Debug("configuration resolved",
		"verbosity", o.Verbose,
		"directives", len(directives),
		"format", o.Format,
		"color", o.UseColor,
	)
	return nil
}

// applyColorMode configures gookit/color and reports whether diagnostics
// should be coloured.
func applyColorMode(mode string) bool {
	switch mode {
	case config.ColorAlways:
		color.Enable = true
		color.ForceColor()
		return true
	case config.ColorNever:
		color.Enable = false
		return false
	default:
		color.Enable = true
		return color.SupportColor()
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
