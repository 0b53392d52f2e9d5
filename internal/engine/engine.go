package engine

import (
	"log/slog"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/notation"
	"github.com/roach88/rally/internal/rules"
)

// Observer is told about every rally the engine decides.
// Implemented by metrics.Recorder.
type Observer interface {
	RallyAccepted(res Result)
	RallyRejected(reason *ir.Reason)
}

// Result is an accepted rally.
type Result struct {
	State  ir.MatchState
	Rally  notation.Rally
	Point  Point
	Change Change
}

// Engine applies rallies to match records under one set of rules.
//
// Engine holds no match state: every call receives the current record and
// returns a new one, so one Engine may serve any number of matches from
// any number of goroutines. Serializing calls against one match is the
// caller's job (see session.Session).
type Engine struct {
	rules    rules.Rules
	logger   *slog.Logger
	observer Observer
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithObserver registers o to be told about every decided rally.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		e.observer = o
	}
}

// New creates an Engine that plays by r. r is expected to have passed
// rules.Validate.
func New(r rules.Rules, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:  r,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the rules the engine plays by.
func (e *Engine) Rules() rules.Rules {
	return e.rules
}

// ParseRally applies rally to current. On success the result holds the
// next state; on failure it holds the reason and current is unchanged.
func (e *Engine) ParseRally(current ir.MatchState, rally string) ir.ParseResult {
	res, err := e.Apply(current, rally)
	if err != nil {
		return ir.Fail(toReason(err))
	}
	return ir.Ok(res.State)
}

// Apply runs the whole pipeline: validate the record, lex, interpret,
// resolve the point, count statistics and apply set and match rules. The
// first failing stage ends the call and its error is an *ir.Reason.
func (e *Engine) Apply(current ir.MatchState, rally string) (Result, error) {
	res, err := e.apply(current, rally)
	if err != nil {
		reason := toReason(err)
		e.logger.Debug("rally rejected",
			"rally", rally,
			"key", reason.Key,
			"location", reason.Location,
			"error", reason.ErrorMsg,
		)
		if e.observer != nil {
			e.observer.RallyRejected(reason)
		}
		return Result{}, reason
	}

	e.logger.Debug("rally accepted",
		"rally", rally,
		"winner", res.Point.Winner,
		"home", res.State.HomeTeam.Points,
		"away", res.State.AwayTeam.Points,
	)
	if res.Change.SetWon {
		e.logger.Info("set won",
			"set", res.Change.SetIndex,
			"winner", res.Change.Winner,
			"home_sets", res.State.HomeTeam.Sets,
			"away_sets", res.State.AwayTeam.Sets,
		)
	}
	if res.Change.MatchWon {
		e.logger.Info("match won", "winner", res.Change.Winner)
	}
	if e.observer != nil {
		e.observer.RallyAccepted(res)
	}
	return res, nil
}

func (e *Engine) apply(current ir.MatchState, rally string) (Result, error) {
	parsed, err := e.Check(current, rally)
	if err != nil {
		return Result{}, err
	}

	point, err := Resolve(parsed)
	if err != nil {
		return Result{}, err
	}

	counted := Accumulate(current, point.Actions)
	next, change := Transition(counted, point.Winner, e.rules)

	return Result{
		State:  next,
		Rally:  parsed,
		Point:  point,
		Change: change,
	}, nil
}

// Check validates current and interprets rally without deciding the
// point. It is the front half of Apply.
func (e *Engine) Check(current ir.MatchState, rally string) (notation.Rally, error) {
	if err := ValidateState(current, e.rules); err != nil {
		return notation.Rally{}, err
	}

	tokens, err := notation.Lex(rally, e.rules.Prefixes())
	if err != nil {
		return notation.Rally{}, err
	}

	return notation.Interpret(tokens, current, e.rules)
}

var defaultEngine = New(rules.Default())

// ParseRally applies rally to current under the default rules.
func ParseRally(current ir.MatchState, rally string) ir.ParseResult {
	return defaultEngine.ParseRally(current, rally)
}
