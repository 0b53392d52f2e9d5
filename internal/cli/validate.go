package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rally/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	State string
}

// ValidationResult is the action breakdown of a well-formed rally.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Actions []string `json:"actions"`
	Dead    bool     `json:"dead,omitempty"`
	Award   string   `json:"award,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <rally>",
		Short: "Check rally notation without scoring it",
		Long: `Lex and interpret a rally without deciding the point.

Prints the actions the notation describes, or the error with a caret under
the offending character. The match record is only used to attribute
unmarked player numbers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "match record JSON file (- for stdin)")

	return cmd
}

func runValidate(opts *ValidateOptions, rally string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	state, err := readState(opts.State, cmd.InOrStdin())
	if err != nil {
		return err
	}
	eng, err := opts.engine()
	if err != nil {
		return err
	}

	parsed, err := eng.Check(state, rally)
	if err != nil {
		reason, ok := ir.AsReason(err)
		if !ok {
			return WrapExitError(ExitCommandError, "validate failed", err)
		}
		return outputValidateError(formatter, rally, reason)
	}

	result := ValidationResult{Valid: true, Actions: make([]string, len(parsed.Actions)), Dead: parsed.Dead}
	for i, a := range parsed.Actions {
		result.Actions[i] = a.String()
	}
	if parsed.Award != nil {
		result.Award = string(*parsed.Award)
	}

	formatter.VerboseLog("%d action(s) in %q", len(result.Actions), rally)
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for i, a := range result.Actions {
		fmt.Fprintf(w, "%2d. %s\n", i+1, a)
	}
	if result.Dead {
		fmt.Fprintln(w, "    dead ball")
	}
	if result.Award != "" {
		fmt.Fprintf(w, "    point to %s\n", result.Award)
	}
	fmt.Fprintln(w, "✓ Notation valid")
	return nil
}

func outputValidateError(formatter *OutputFormatter, rally string, reason *ir.Reason) error {
	if formatter.IsJSON() {
		if err := formatter.Error(reasonError(reason)); err != nil {
			return err
		}
	} else {
		renderReason(formatter.Writer, rally, reason, 0)
	}
	return WrapExitError(ExitFailure, "invalid notation", reason)
}
