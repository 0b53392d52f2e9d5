// Package session hosts one match: it feeds rallies to the engine one at
// a time, journals every decision and supports undo.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/store"
)

// Sequencer numbers journal entries. Implemented by Clock and
// testutil.DeterministicClock.
type Sequencer interface {
	Next() int64
}

// Session serializes rallies against one match record.
//
// The engine is pure, so the session is the only place the current record
// lives. Submit, Undo and State are safe from any goroutine; at most one
// of them runs at a time.
type Session struct {
	mu sync.Mutex

	id      string
	engine  *engine.Engine
	journal *store.Store
	clock   Sequencer
	logger  *slog.Logger

	initial ir.MatchState
	current ir.MatchState
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	ids     IDGenerator
	clock   Sequencer
	logger  *slog.Logger
	initial *ir.MatchState
}

// WithIDGenerator sets how the session is named. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *sessionConfig) { c.ids = g }
}

// WithClock sets the sequence source. Default: NewClock().
func WithClock(s Sequencer) Option {
	return func(c *sessionConfig) { c.clock = s }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// WithState starts the session from state instead of a new match.
func WithState(state ir.MatchState) Option {
	return func(c *sessionConfig) { c.initial = &state }
}

// New creates a session that journals into j.
func New(e *engine.Engine, j *store.Store, opts ...Option) *Session {
	cfg := sessionConfig{
		ids:    UUIDv7Generator{},
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	initial := ir.NewMatchState()
	if cfg.initial != nil {
		initial = cfg.initial.Clone()
	}

	id := cfg.ids.Generate()
	return &Session{
		id:      id,
		engine:  e,
		journal: j,
		clock:   cfg.clock,
		logger:  cfg.logger.With("session", id),
		initial: initial,
		current: initial.Clone(),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns a copy of the current match record.
func (s *Session) State() ir.MatchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Submit applies rally to the current record and journals the outcome.
// The returned error reports journal failures only; a refused rally is a
// Fail result with a nil error, and leaves the record unchanged.
func (s *Session) Submit(ctx context.Context, rally string) (ir.ParseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.clock.Next()
	res, err := s.engine.Apply(s.current, rally)
	if err != nil {
		reason, _ := ir.AsReason(err)
		if jerr := s.journal.Reject(ctx, store.Rejection{
			SessionID: s.id,
			Seq:       seq,
			Rally:     rally,
			Reason:    *reason,
		}); jerr != nil {
			return ir.ParseResult{}, jerr
		}
		return ir.Fail(reason), nil
	}

	entry, err := store.NewEntry(s.id, seq, rally, s.current, res.State, res.Point.Winner)
	if err != nil {
		return ir.ParseResult{}, fmt.Errorf("journal entry: %w", err)
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		return ir.ParseResult{}, err
	}

	s.current = res.State
	s.logger.Debug("rally journaled", "seq", seq, "entry", entry.ID)
	return ir.Ok(res.State.Clone()), nil
}

// Undo removes the newest accepted rally and restores the record it was
// applied to. ok is false when there is nothing to undo.
func (s *Session) Undo(ctx context.Context) (state ir.MatchState, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	popped, ok, err := s.journal.PopLast(ctx, s.id)
	if err != nil || !ok {
		return s.current.Clone(), false, err
	}

	last, found, err := s.journal.Last(ctx, s.id)
	if err != nil {
		return s.current.Clone(), false, err
	}
	if found {
		s.current = last.State
	} else {
		s.current = s.initial.Clone()
	}

	s.logger.Info("rally undone", "seq", popped.Seq, "rally", popped.Rally)
	return s.current.Clone(), true, nil
}

// History returns the accepted rallies in order.
func (s *Session) History(ctx context.Context) ([]store.Entry, error) {
	return s.journal.Entries(ctx, s.id)
}

// PointsWon returns the accepted rallies side won, in order.
func (s *Session) PointsWon(ctx context.Context, side ir.Side) ([]store.Entry, error) {
	return s.journal.Find(ctx, store.Query{
		Filter: store.And{Predicates: []store.Predicate{
			store.SessionIs(s.id),
			store.WinnerIs(side),
		}},
	})
}

// Range returns the accepted rallies numbered from..to inclusive. A zero
// to leaves the range open.
func (s *Session) Range(ctx context.Context, from, to int64) ([]store.Entry, error) {
	return s.journal.Find(ctx, store.Query{
		Filter: store.And{Predicates: []store.Predicate{
			store.SessionIs(s.id),
			store.SeqBetween(from, to),
		}},
	})
}

// Rejections returns the refused rallies in order.
func (s *Session) Rejections(ctx context.Context) ([]store.Rejection, error) {
	return s.journal.Rejections(ctx, s.id)
}

// Verify replays the journal from the initial record and checks that
// every rally produces the state hash recorded for it.
func (s *Session) Verify(ctx context.Context) error {
	entries, err := s.History(ctx)
	if err != nil {
		return err
	}

	state := s.initial.Clone()
	for _, e := range entries {
		if got := ir.MustStateHash(state); got != e.BeforeHash {
			return fmt.Errorf("entry %d (%q): state before is %s, journal has %s", e.Seq, e.Rally, got, e.BeforeHash)
		}
		res := s.engine.ParseRally(state, e.Rally)
		if !res.IsOk() {
			return fmt.Errorf("entry %d (%q): replay refused: %v", e.Seq, e.Rally, res.Fail)
		}
		if got := ir.MustStateHash(*res.Ok); got != e.AfterHash {
			return fmt.Errorf("entry %d (%q): state after is %s, journal has %s", e.Seq, e.Rally, got, e.AfterHash)
		}
		state = *res.Ok
	}
	return nil
}
