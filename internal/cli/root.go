package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/rally/internal/config"
	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	RulesPath string // CUE rules file, empty for the defaults

	// Logger is installed by the root command. Commands built on their
	// own (tests) fall back to a discard logger.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// NewRootCommand creates the root command for the rally CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rally",
		Short: "rally - volleyball rally notation",
		Long: `Score volleyball matches from rally notation.

Each rally is one line of compact notation, for example "!4S5 @7R @8E @9H",
applied to a match record that tracks points, sets and per-player statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.RulesPath, "rules", "", "CUE file with match rules")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewSessionCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup merges the environment into the flags and installs the logger.
// Flags set on the command line win.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("rules") {
		o.RulesPath = cfg.RulesPath
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	level := cfg.LogLevel
	if o.Verbose {
		level = log.DebugLevel
	}
	o.Logger = NewLogger(cmd.ErrOrStderr(), level, o.Format)
	slog.SetDefault(o.Logger)
	return nil
}

// NewLogger returns a slog logger backed by a charmbracelet handler.
func NewLogger(w io.Writer, level log.Level, format string) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	if format == config.FormatJSON {
		handler.SetFormatter(log.JSONFormatter)
	}
	return slog.New(handler)
}

// logger returns the installed logger or one that discards everything.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// rules loads the configured rules.
func (o *RootOptions) rules() (rules.Rules, error) {
	r, err := config.Config{RulesPath: o.RulesPath}.Rules()
	if err != nil {
		return rules.Rules{}, WrapExitError(ExitCommandError, "failed to load rules", err)
	}
	return r, nil
}

// engine builds an engine from the configured rules.
func (o *RootOptions) engine(opts ...engine.EngineOption) (*engine.Engine, error) {
	r, err := o.rules()
	if err != nil {
		return nil, err
	}
	opts = append([]engine.EngineOption{engine.WithLogger(o.logger())}, opts...)
	return engine.New(r, opts...), nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// readState loads a match record from path, or stdin when path is "-".
// An empty path means a new match.
func readState(path string, stdin io.Reader) (ir.MatchState, error) {
	if path == "" {
		return ir.NewMatchState(), nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return ir.MatchState{}, WrapExitError(ExitCommandError, "failed to read state", err)
	}

	state, err := decodeState(data)
	if err != nil {
		return ir.MatchState{}, WrapExitError(ExitCommandError, "failed to parse state", err)
	}
	return state, nil
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
