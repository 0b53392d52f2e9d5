package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/session"
	"github.com/roach88/rally/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	State  string // starting record, empty for a new match
	Verify bool   // replay twice and compare hashes
}

// ReplayResult holds the outcome of a replay.
type ReplayResult struct {
	Rallies       int            `json:"rallies"`
	StateHash     string         `json:"state_hash"`
	Deterministic *bool          `json:"deterministic,omitempty"`
	State         ir.MatchState  `json:"state"`
	Failure       *ReplayFailure `json:"failure,omitempty"`
}

// ReplayFailure locates the first rejected rally in the file.
type ReplayFailure struct {
	Line   int       `json:"line"`
	Column int       `json:"column"`
	Rally  string    `json:"rally"`
	Reason ir.Reason `json:"reason"`
}

// rallyLine is one non-blank, non-comment line of a rally file.
type rallyLine struct {
	number int
	indent int
	rally  string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Replay a file of rallies",
		Long: `Apply a file of rallies, one per line, and print the final record.

Blank lines and lines starting with # are skipped. Replay stops at the
first rejected rally and reports its line and column. With --verify the
file is replayed a second time from the same record and the two final
state hashes must agree, and the session journal is replayed against the
hashes it recorded.

Exit codes:
  0 - All rallies accepted (and deterministic with --verify)
  1 - A rally was rejected, or verification failed
  2 - Command error (file not found, bad rules)

Examples:
  rally replay match.txt
  rally replay match.txt --verify --format json
  rally replay set5.txt --state after-set4.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "starting match record JSON file (- for stdin)")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "replay twice and compare state hashes")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open rally file", err)
	}
	defer f.Close()

	lines, err := readRallyLines(f)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read rally file", err)
	}

	start, err := readState(opts.State, cmd.InOrStdin())
	if err != nil {
		return err
	}

	result, sess, err := replayOnce(ctx, opts.RootOptions, start, lines)
	if err != nil {
		return err
	}
	formatter.VerboseLog("replayed %d rallies", result.Rallies)

	var verifyErr error
	if opts.Verify && result.Failure == nil {
		verifyErr = sess.Verify(ctx)
		second, _, err := replayOnce(ctx, opts.RootOptions, start, lines)
		if err != nil {
			return err
		}
		same := verifyErr == nil && second.StateHash == result.StateHash
		if verifyErr == nil && !same {
			verifyErr = fmt.Errorf("second replay ended at %s, first at %s", second.StateHash, result.StateHash)
		}
		result.Deterministic = &same
	}

	if err := outputReplay(formatter, result, verifyErr); err != nil {
		return err
	}

	switch {
	case result.Failure != nil:
		return WrapExitError(ExitFailure,
			fmt.Sprintf("line %d, column %d", result.Failure.Line, result.Failure.Column),
			&result.Failure.Reason)
	case verifyErr != nil:
		return WrapExitError(ExitFailure, "replay is not deterministic", verifyErr)
	}
	return nil
}

// readRallyLines splits a rally file, skipping blanks and # comments.
func readRallyLines(r io.Reader) ([]rallyLine, error) {
	var lines []rallyLine
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		raw := scanner.Text()
		rally := strings.TrimSpace(raw)
		if rally == "" || strings.HasPrefix(rally, "#") {
			continue
		}
		lines = append(lines, rallyLine{
			number: n,
			indent: strings.Index(raw, rally),
			rally:  rally,
		})
	}
	return lines, scanner.Err()
}

// replayOnce feeds lines to a fresh session journaled in memory. It stops
// at the first rejected rally.
func replayOnce(ctx context.Context, opts *RootOptions, start ir.MatchState, lines []rallyLine) (ReplayResult, *session.Session, error) {
	eng, err := opts.engine()
	if err != nil {
		return ReplayResult{}, nil, err
	}
	st, err := store.OpenMemory()
	if err != nil {
		return ReplayResult{}, nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	// The session keeps the store; both live until the process exits.
	sess := session.New(eng, st, session.WithState(start), session.WithLogger(opts.logger()))

	var result ReplayResult
	for _, l := range lines {
		res, err := sess.Submit(ctx, l.rally)
		if err != nil {
			return ReplayResult{}, nil, WrapExitError(ExitCommandError, "journal failed", err)
		}
		if !res.IsOk() {
			result.Failure = &ReplayFailure{
				Line:   l.number,
				Column: l.indent + res.Fail.Location + 1,
				Rally:  l.rally,
				Reason: *res.Fail,
			}
			break
		}
		result.Rallies++
	}

	result.State = sess.State()
	result.StateHash, err = ir.StateHash(result.State)
	if err != nil {
		return ReplayResult{}, nil, err
	}
	return result, sess, nil
}

func outputReplay(formatter *OutputFormatter, result ReplayResult, verifyErr error) error {
	if formatter.IsJSON() {
		if result.Failure != nil {
			loc := result.Failure.Reason.Location
			return formatter.JSON(CLIResponse{
				Status: "error",
				Data:   result,
				Error: &CLIError{
					Code:     string(result.Failure.Reason.Key),
					Message:  fmt.Sprintf("line %d, column %d: %s", result.Failure.Line, result.Failure.Column, result.Failure.Reason.ErrorMsg),
					Location: &loc,
				},
			})
		}
		if verifyErr != nil {
			return formatter.JSON(CLIResponse{
				Status: "error",
				Data:   result,
				Error:  &CLIError{Code: "E_NONDETERMINISTIC", Message: verifyErr.Error()},
			})
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	if result.Failure != nil {
		fmt.Fprintf(w, "✗ line %d, column %d\n", result.Failure.Line, result.Failure.Column)
		renderReason(w, result.Failure.Rally, &result.Failure.Reason, 2)
		fmt.Fprintf(w, "\n%d rallies applied before the failure\n\n", result.Rallies)
	} else {
		fmt.Fprintf(w, "%d rallies applied\n\n", result.Rallies)
	}
	renderScoreboard(w, result.State)
	fmt.Fprintf(w, "\nstate hash: %s\n", result.StateHash)

	if result.Deterministic != nil {
		if *result.Deterministic {
			fmt.Fprintln(w, "✓ Replay is deterministic")
		} else {
			fmt.Fprintf(w, "✗ Replay is not deterministic: %v\n", verifyErr)
		}
	}
	return nil
}
