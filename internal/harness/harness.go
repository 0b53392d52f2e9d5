package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alitto/pond/v2"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
	"github.com/roach88/rally/internal/session"
	"github.com/roach88/rally/internal/store"
	"github.com/roach88/rally/internal/testutil"
)

// Harness is the test execution engine.
// It runs one scenario against a session with a deterministic clock and a
// fixed session id.
type Harness struct {
	session *session.Session
	clock   *testutil.DeterministicClock
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal for isolation.
//
// Execution flow:
// 1. Load rules (defaults plus the scenario's CUE overrides)
// 2. Build the start record and open a session on it
// 3. Execute flow steps with expect validation
// 4. Replay the journal to check the hashes it recorded
// 5. Evaluate assertions against the final record
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	r := rules.Default()
	if scenario.Rules != "" {
		loaded, err := rules.Load(scenario.Name+".cue", []byte(scenario.Rules))
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		r = loaded
	}

	st, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := testutil.NewDeterministicClock()
	eng := engine.New(r, engine.WithLogger(logger))
	sess := session.New(eng, st,
		session.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.SessionID)),
		session.WithClock(clock),
		session.WithLogger(logger),
		session.WithState(buildStart(scenario.Start)),
	)

	h := &Harness{
		session: sess,
		clock:   clock,
		logger:  logger,
	}

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	if err := sess.Verify(ctx); err != nil {
		result.AddError(fmt.Sprintf("journal replay: %v", err))
	}

	final := sess.State()
	result.Final, err = h.summarize(ctx, final)
	if err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Session: sess,
		Ctx:     ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, final, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// buildStart turns the scenario's start block into a match record.
func buildStart(start *StartState) ir.MatchState {
	if start == nil {
		return ir.NewMatchState()
	}

	b := testutil.NewMatch().
		Sets(start.Home.Sets, start.Away.Sets).
		Score(start.Home.Points, start.Away.Points).
		Players(ir.Home, start.Home.Players...).
		Players(ir.Away, start.Away.Players...).
		Serving(ir.Side(start.Serving))
	if start.Status != "" {
		b.Status(ir.Status(start.Status))
	}
	return b.State()
}

// executeFlow runs all flow steps and validates expect clauses.
//
// A refused rally is an expected outcome, not an execution error; only
// journal failures abort the flow.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		ev := TraceEvent{Step: i + 1}

		if step.Undo {
			_, undone, err := h.session.Undo(ctx)
			if err != nil {
				return fmt.Errorf("flow step %d: undo: %w", i, err)
			}
			ev.Undo = true
			ev.Case = CaseNothing
			if undone {
				ev.Case = CaseUndone
			}
		} else {
			res, err := h.session.Submit(ctx, step.Rally)
			if err != nil {
				return fmt.Errorf("flow step %d: submit %q: %w", i, step.Rally, err)
			}
			ev.Rally = step.Rally
			ev.Case = CaseOk
			if !res.IsOk() {
				ev.Case = string(res.Fail.Key)
				ev.Location = res.Fail.Location
			}
			if step.Expect != nil && ev.Case != CaseOk && ev.Case == step.Expect.Case {
				h.checkLocation(i, step, ev, res.Fail, result)
			}
		}

		state := h.session.State()
		ev.Home = scoreOf(state.HomeTeam)
		ev.Away = scoreOf(state.AwayTeam)
		result.AddTrace(ev)

		if step.Expect != nil && ev.Case != step.Expect.Case {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected %s, got %s", i, stepLabel(step), step.Expect.Case, ev.Case))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"rally", step.Rally,
			"undo", step.Undo,
			"case", ev.Case,
			"seq", h.clock.Current(),
		)
	}

	return nil
}

func (h *Harness) checkLocation(i int, step FlowStep, ev TraceEvent, reason *ir.Reason, result *Result) {
	if step.Expect.Location == nil || *step.Expect.Location == ev.Location {
		return
	}
	result.AddError(fmt.Sprintf("flow[%d] %s: expected %s at %d, got %d (%s)",
		i, stepLabel(step), step.Expect.Case, *step.Expect.Location, ev.Location, reason.ErrorMsg))
}

func (h *Harness) summarize(ctx context.Context, state ir.MatchState) (FinalState, error) {
	entries, err := h.session.History(ctx)
	if err != nil {
		return FinalState{}, fmt.Errorf("read journal: %w", err)
	}
	rejections, err := h.session.Rejections(ctx)
	if err != nil {
		return FinalState{}, fmt.Errorf("read rejections: %w", err)
	}

	return FinalState{
		Home:     scoreOf(state.HomeTeam),
		Away:     scoreOf(state.AwayTeam),
		Status:   string(state.Status),
		Serving:  string(state.Serving),
		Journal:  len(entries),
		Rejected: len(rejections),
	}, nil
}

func scoreOf(t ir.TeamState) Score {
	return Score{Sets: t.Sets, Points: t.Points}
}

func stepLabel(step FlowStep) string {
	if step.Undo {
		return "undo"
	}
	return fmt.Sprintf("%q", step.Rally)
}

// Outcome pairs a scenario with its result or execution error.
type Outcome struct {
	Scenario *Scenario
	Result   *Result
	Err      error
}

// RunAll executes scenarios on a pool of workers and returns the outcomes
// in input order. Scenarios share nothing, so any worker count is safe;
// workers < 1 runs them one at a time.
func RunAll(ctx context.Context, scenarios []*Scenario, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(scenarios))
	pool := pond.NewPool(workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	tasks := make([]pond.Task, len(scenarios))
	for i, sc := range scenarios {
		tasks[i] = pool.Submit(func() {
			res, err := RunContext(ctx, sc)
			outcomes[i] = Outcome{Scenario: sc, Result: res, Err: err}
		})
	}

	for i, task := range tasks {
		if err := task.Wait(); err != nil && outcomes[i].Err == nil {
			outcomes[i] = Outcome{Scenario: scenarios[i], Err: err}
		}
	}
	return outcomes
}
