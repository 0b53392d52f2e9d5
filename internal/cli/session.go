package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/metrics"
	"github.com/roach88/rally/internal/session"
	"github.com/roach88/rally/internal/store"
)

// SessionOptions holds flags for the session command.
type SessionOptions struct {
	*RootOptions
	State   string
	Metrics bool // print Prometheus text exposition on exit
}

// Session commands read from the input stream.
const (
	cmdUndo    = ":undo"
	cmdHistory = ":history"
	cmdState   = ":state"
	cmdQuit    = ":quit"
)

// NewSessionCommand creates the session command.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Score a match interactively",
		Long: `Read rallies from stdin, one per line, and print the score after each.

Lines starting with ":" are commands:
  :undo     revert the last accepted rally
  :history  list the accepted rallies (":history home" for one side,
            ":history 3..8" or ":history 3.." for a range)
  :state    print the full scoreboard
  :quit     stop reading

With --format json every response is one JSON document per line.

Examples:
  rally session
  rally session --state match.json --metrics < set3.txt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "starting match record JSON file")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print metrics in Prometheus text format on exit")

	return cmd
}

// sessionLoop couples a session to its output.
type sessionLoop struct {
	sess      *session.Session
	formatter *OutputFormatter
	enc       *json.Encoder
}

func runSession(opts *SessionOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.State == "-" {
		return NewExitError(ExitCommandError, "--state - is not supported, stdin carries the rallies")
	}

	start, err := readState(opts.State, nil)
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	eng, err := opts.engine(engine.WithObserver(rec))
	if err != nil {
		return err
	}

	st, err := store.OpenMemory()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	formatter := opts.formatter(cmd)
	loop := &sessionLoop{
		sess: session.New(eng, st,
			session.WithState(start),
			session.WithLogger(opts.logger())),
		formatter: formatter,
		enc:       json.NewEncoder(formatter.Writer),
	}
	opts.logger().Info("session started", "session", loop.sess.ID())

	if err := loop.run(ctx, cmd.InOrStdin()); err != nil {
		return err
	}

	if opts.Metrics {
		if err := rec.WriteText(formatter.Writer); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
	}
	return nil
}

func (l *sessionLoop) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var err error
		switch line {
		case cmdQuit:
			return nil
		case cmdUndo:
			err = l.undo(ctx)
		case cmdState:
			err = l.state()
		default:
			if line == cmdHistory || strings.HasPrefix(line, cmdHistory+" ") {
				err = l.history(ctx, strings.TrimSpace(strings.TrimPrefix(line, cmdHistory)))
			} else if strings.HasPrefix(line, ":") {
				err = l.unknown(line)
			} else {
				err = l.submit(ctx, line)
			}
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "session failed", err)
		}
	}
	return scanner.Err()
}

func (l *sessionLoop) submit(ctx context.Context, rally string) error {
	res, err := l.sess.Submit(ctx, rally)
	if err != nil {
		return err
	}

	if l.formatter.IsJSON() {
		return l.enc.Encode(res)
	}
	if res.IsOk() {
		fmt.Fprintln(l.formatter.Writer, scoreLine(*res.Ok))
		return nil
	}
	renderReason(l.formatter.Writer, rally, res.Fail, 0)
	return nil
}

func (l *sessionLoop) undo(ctx context.Context) error {
	state, ok, err := l.sess.Undo(ctx)
	if err != nil {
		return err
	}

	if l.formatter.IsJSON() {
		return l.enc.Encode(map[string]any{"undone": ok, "state": state})
	}
	if !ok {
		fmt.Fprintln(l.formatter.Writer, "nothing to undo")
		return nil
	}
	fmt.Fprintf(l.formatter.Writer, "undone: %s\n", scoreLine(state))
	return nil
}

// historyEntry is the JSON shape of one accepted rally.
type historyEntry struct {
	Seq    int64   `json:"seq"`
	Rally  string  `json:"rally"`
	Winner ir.Side `json:"winner"`
	Hash   string  `json:"state_hash"`
}

// history lists accepted rallies. filter is empty for all of them, a
// side for the points it won, or a range "N..M" ("N.." for open).
func (l *sessionLoop) history(ctx context.Context, filter string) error {
	var entries []store.Entry
	var err error
	switch side := ir.Side(filter); {
	case filter == "":
		entries, err = l.sess.History(ctx)
	case side.Valid():
		entries, err = l.sess.PointsWon(ctx, side)
	default:
		from, to, ok := parseSeqRange(filter)
		if !ok {
			return l.unknown(cmdHistory + " " + filter)
		}
		entries, err = l.sess.Range(ctx, from, to)
	}
	if err != nil {
		return err
	}

	out := make([]historyEntry, len(entries))
	for i, e := range entries {
		out[i] = historyEntry{Seq: e.Seq, Rally: e.Rally, Winner: e.Winner, Hash: e.AfterHash}
	}

	if l.formatter.IsJSON() {
		return l.enc.Encode(map[string]any{"history": out})
	}
	if len(out) == 0 {
		fmt.Fprintln(l.formatter.Writer, "no rallies yet")
		return nil
	}
	for _, e := range out {
		fmt.Fprintf(l.formatter.Writer, "%4d  %-30s %s\n", e.Seq, e.Rally, e.Winner)
	}
	return nil
}

// parseSeqRange reads "N..M" or "N.." with 1 <= N <= M.
func parseSeqRange(s string) (from, to int64, ok bool) {
	lo, hi, found := strings.Cut(s, "..")
	if !found {
		return 0, 0, false
	}
	from, err := strconv.ParseInt(lo, 10, 64)
	if err != nil || from < 1 {
		return 0, 0, false
	}
	if hi == "" {
		return from, 0, true
	}
	to, err = strconv.ParseInt(hi, 10, 64)
	if err != nil || to < from {
		return 0, 0, false
	}
	return from, to, true
}

func (l *sessionLoop) state() error {
	state := l.sess.State()
	if l.formatter.IsJSON() {
		return l.enc.Encode(map[string]any{"state": state})
	}
	renderScoreboard(l.formatter.Writer, state)
	return nil
}

func (l *sessionLoop) unknown(line string) error {
	msg := fmt.Sprintf("unknown command %q (try %s, %s, %s or %s)", line, cmdUndo, cmdHistory, cmdState, cmdQuit)
	if l.formatter.IsJSON() {
		return l.enc.Encode(CLIResponse{Status: "error", Error: &CLIError{Code: "E_COMMAND", Message: msg}})
	}
	fmt.Fprintln(l.formatter.Writer, msg)
	return nil
}
