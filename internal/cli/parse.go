package cli

import (
	"github.com/spf13/cobra"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	State string // match record file, "-" for stdin
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <rally>",
		Short: "Apply one rally to a match record",
		Long: `Apply one rally to a match record and print the result.

With --format json the output is the ParseResult itself, {"Ok": state} or
{"Fail": reason}, so it can be piped back in with --state -.

Exit codes:
  0 - Rally accepted
  1 - Rally rejected (InvalidInput or WhoScored)
  2 - Command error (unreadable state, bad rules)

Examples:
  rally parse '!4S5'
  rally parse '!4S @7R @8E @9H' --state match.json
  rally parse '!4S.' --format json | rally parse '@7S0' --state - --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "match record JSON file (- for stdin)")

	return cmd
}

func runParse(opts *ParseOptions, rally string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	state, err := readState(opts.State, cmd.InOrStdin())
	if err != nil {
		return err
	}
	eng, err := opts.engine()
	if err != nil {
		return err
	}

	res := eng.ParseRally(state, rally)

	if formatter.IsJSON() {
		if err := formatter.JSON(res); err != nil {
			return err
		}
	} else if res.IsOk() {
		renderScoreboard(formatter.Writer, *res.Ok)
	} else {
		renderReason(formatter.Writer, rally, res.Fail, 0)
	}

	if !res.IsOk() {
		return WrapExitError(ExitFailure, "rally rejected", res.Fail)
	}
	return nil
}
