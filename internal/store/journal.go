package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rally/internal/ir"
)

// Entry is one accepted rally.
type Entry struct {
	ID         string
	SessionID  string
	Seq        int64
	Rally      string
	Winner     ir.Side
	BeforeHash string
	AfterHash  string

	// State is the record after the rally.
	State ir.MatchState
}

// Rejection is one refused rally.
type Rejection struct {
	SessionID string
	Seq       int64
	Rally     string
	Reason    ir.Reason
}

// NewEntry builds the journal entry for rally applied at seq, computing
// its content-addressed id and both state hashes.
func NewEntry(sessionID string, seq int64, rally string, before, after ir.MatchState, winner ir.Side) (Entry, error) {
	beforeHash, err := ir.StateHash(before)
	if err != nil {
		return Entry{}, err
	}
	afterHash, err := ir.StateHash(after)
	if err != nil {
		return Entry{}, err
	}
	id, err := ir.EntryID(sessionID, seq, rally, beforeHash)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:         id,
		SessionID:  sessionID,
		Seq:        seq,
		Rally:      rally,
		Winner:     winner,
		BeforeHash: beforeHash,
		AfterHash:  afterHash,
		State:      after,
	}, nil
}

// Append writes an accepted rally. Writing the same entry id twice is a
// no-op.
func (s *Store) Append(ctx context.Context, e Entry) error {
	blob, err := encodeState(e.State)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries
		(id, session_id, seq, rally, winner, before_hash, after_hash, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.SessionID,
		e.Seq,
		e.Rally,
		string(e.Winner),
		e.BeforeHash,
		e.AfterHash,
		blob,
	)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// Reject records a refused rally.
func (s *Store) Reject(ctx context.Context, r Rejection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rejections
		(session_id, seq, rally, reason_key, location, message)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		r.SessionID,
		r.Seq,
		r.Rally,
		string(r.Reason.Key),
		r.Reason.Location,
		r.Reason.ErrorMsg,
	)
	if err != nil {
		return fmt.Errorf("record rejection: %w", err)
	}
	return nil
}

// Entries returns the accepted rallies of a session in seq order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	return s.Find(ctx, Query{Filter: SessionIs(sessionID)})
}

// Last returns the newest accepted rally of a session.
// ok is false if the session has none.
func (s *Store) Last(ctx context.Context, sessionID string) (e Entry, ok bool, err error) {
	found, err := s.Find(ctx, Query{Filter: SessionIs(sessionID), Newest: true, Limit: 1})
	if err != nil || len(found) == 0 {
		return Entry{}, false, err
	}
	return found[0], true, nil
}

// PopLast removes and returns the newest accepted rally of a session.
// ok is false if the session has none.
func (s *Store) PopLast(ctx context.Context, sessionID string) (e Entry, ok bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, false, fmt.Errorf("begin undo: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, session_id, seq, rally, winner, before_hash, after_hash, state
		FROM entries
		WHERE session_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, sessionID)
	e, err = scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, e.ID); err != nil {
		return Entry{}, false, fmt.Errorf("delete entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, false, fmt.Errorf("commit undo: %w", err)
	}
	return e, true, nil
}

// Rejections returns the refused rallies of a session in seq order.
func (s *Store) Rejections(ctx context.Context, sessionID string) ([]Rejection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, rally, reason_key, location, message
		FROM rejections
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query rejections: %w", err)
	}
	defer rows.Close()

	out := []Rejection{}
	for rows.Next() {
		var r Rejection
		var key string
		if err := rows.Scan(&r.SessionID, &r.Seq, &r.Rally, &key, &r.Reason.Location, &r.Reason.ErrorMsg); err != nil {
			return nil, fmt.Errorf("scan rejection: %w", err)
		}
		r.Reason.Key = ir.ReasonKey(key)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rejections: %w", err)
	}
	return out, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var winner string
	var blob []byte
	err := row.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Rally, &winner, &e.BeforeHash, &e.AfterHash, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, err
	}
	if err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	e.Winner = ir.Side(winner)

	e.State, err = decodeState(blob)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}
