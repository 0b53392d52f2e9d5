package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/rally/internal/ir"
)

// Predicate filters journal entries.
//
// This is a sealed interface: only Equals, Between and And implement it,
// so the compiler can switch over every case.
type Predicate interface {
	predicateNode()
}

// Equals matches rows whose column equals Value.
type Equals struct {
	Column string
	Value  any
}

func (Equals) predicateNode() {}

// Between matches rows whose integer column lies in [From, To].
// A zero To leaves the range open above.
type Between struct {
	Column   string
	From, To int64
}

func (Between) predicateNode() {}

// And matches rows every predicate matches. An empty And matches all rows.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// SessionIs matches the entries of one session.
func SessionIs(id string) Predicate { return Equals{Column: "session_id", Value: id} }

// WinnerIs matches rallies won by side.
func WinnerIs(side ir.Side) Predicate { return Equals{Column: "winner", Value: string(side)} }

// SeqBetween matches sequence numbers from..to inclusive.
func SeqBetween(from, to int64) Predicate { return Between{Column: "seq", From: from, To: to} }

// Query selects journal entries.
type Query struct {
	Filter Predicate // nil selects every entry
	Newest bool      // newest first
	Limit  int       // 0 for no limit
}

// filterColumns are the entry columns a predicate may name.
var filterColumns = map[string]bool{
	"session_id": true,
	"seq":        true,
	"rally":      true,
	"winner":     true,
}

// entryColumns is the column list scanEntry expects.
const entryColumns = "id, session_id, seq, rally, winner, before_hash, after_hash, state"

// compileQuery turns q into parameterized SQL. Values are never
// interpolated and every query carries a total ORDER BY.
func compileQuery(q Query) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT " + entryColumns + " FROM entries")

	var params []any
	if q.Filter != nil {
		where, p, err := compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE " + where)
		params = p
	}

	// session_id breaks ties between sessions sharing a store
	if q.Newest {
		b.WriteString(" ORDER BY seq DESC, session_id COLLATE BINARY ASC")
	} else {
		b.WriteString(" ORDER BY seq ASC, session_id COLLATE BINARY ASC")
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return b.String(), params, nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		if err := checkColumn(pred.Column); err != nil {
			return "", nil, err
		}
		if pred.Value == nil {
			return "", nil, fmt.Errorf("column %s compared to nil", pred.Column)
		}
		return pred.Column + " = ?", []any{pred.Value}, nil
	case Between:
		if err := checkColumn(pred.Column); err != nil {
			return "", nil, err
		}
		if pred.To == 0 {
			return pred.Column + " >= ?", []any{pred.From}, nil
		}
		if pred.To < pred.From {
			return "", nil, fmt.Errorf("empty range %d..%d on %s", pred.From, pred.To, pred.Column)
		}
		return pred.Column + " BETWEEN ? AND ?", []any{pred.From, pred.To}, nil
	case And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil
		}
		parts := make([]string, 0, len(pred.Predicates))
		var params []any
		for i, sub := range pred.Predicates {
			sql, p, err := compilePredicate(sub)
			if err != nil {
				return "", nil, fmt.Errorf("and[%d]: %w", i, err)
			}
			parts = append(parts, "("+sql+")")
			params = append(params, p...)
		}
		return strings.Join(parts, " AND "), params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func checkColumn(col string) error {
	if !filterColumns[col] {
		return fmt.Errorf("unknown column %q", col)
	}
	return nil
}

// Find returns the entries q selects.
// Returns an empty slice (not nil) if there are none.
func (s *Store) Find(ctx context.Context, q Query) ([]Entry, error) {
	query, params, err := compileQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
