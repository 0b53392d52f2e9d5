package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/session"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			label := event.Rally
			if event.Undo {
				label = ":undo"
			}
			fmt.Fprintf(&buf, "  [%d] %-20s %-12s %d-%d (sets %d-%d)\n",
				i+1, label, event.Case,
				event.Home.Points, event.Away.Points, event.Home.Sets, event.Away.Sets)
		}
	}

	return buf.String()
}

// AssertionContext gives assertions access to the session that ran the
// scenario.
type AssertionContext struct {
	Session *session.Session
	Ctx     context.Context
}

// EvaluateAssertions evaluates all assertions against the final record.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, state ir.MatchState, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertScore:
			err = assertScore(state, assertion)
		case AssertStatus:
			err = assertStatus(state, assertion)
		case AssertServing:
			err = assertServing(state, assertion)
		case AssertPlayerStat:
			err = assertPlayerStat(state, assertion)
		case AssertJournalCount, AssertRejectionCount:
			if actx == nil || actx.Session == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a session", i, assertion.Type)
			} else {
				err = assertJournalCount(actx, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			if ae, ok := err.(*AssertionError); ok {
				ae.Trace = result.Trace
			}
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertScore(state ir.MatchState, a Assertion) error {
	team := state.Team(ir.Side(a.Side))
	if a.Points != nil && team.Points != *a.Points {
		return &AssertionError{
			Type:     AssertScore,
			Expected: fmt.Sprintf("%s points = %d", a.Side, *a.Points),
			Actual:   fmt.Sprintf("%s points = %d", a.Side, team.Points),
		}
	}
	if a.Sets != nil && team.Sets != *a.Sets {
		return &AssertionError{
			Type:     AssertScore,
			Expected: fmt.Sprintf("%s sets = %d", a.Side, *a.Sets),
			Actual:   fmt.Sprintf("%s sets = %d", a.Side, team.Sets),
		}
	}
	return nil
}

func assertStatus(state ir.MatchState, a Assertion) error {
	if string(state.Status) != a.Status {
		return &AssertionError{
			Type:     AssertStatus,
			Expected: fmt.Sprintf("status %s", a.Status),
			Actual:   fmt.Sprintf("status %s", state.Status),
		}
	}
	return nil
}

func assertServing(state ir.MatchState, a Assertion) error {
	if string(state.Serving) != a.Side {
		return &AssertionError{
			Type:     AssertServing,
			Expected: fmt.Sprintf("%s serving", a.Side),
			Actual:   fmt.Sprintf("%q serving", state.Serving),
		}
	}
	return nil
}

func assertPlayerStat(state ir.MatchState, a Assertion) error {
	team := state.Team(ir.Side(a.Side))
	if !team.HasPlayer(a.Player) {
		return &AssertionError{
			Type:     AssertPlayerStat,
			Expected: fmt.Sprintf("%s player %d to have statistics", a.Side, a.Player),
			Actual:   "player not found",
		}
	}

	ps := team.PlayerStats[a.Player]
	bucket := ps.Bucket(ir.Category(a.Category))
	actual := map[string]int{
		"scored": bucket.Scored,
		"faults": bucket.Faults,
		"all":    bucket.All,
	}

	// Sorted for stable messages.
	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if actual[k] != a.Expect[k] {
			return &AssertionError{
				Type:     AssertPlayerStat,
				Expected: fmt.Sprintf("%s #%d %s.%s = %d", a.Side, a.Player, a.Category, k, a.Expect[k]),
				Actual:   fmt.Sprintf("%s #%d %s.%s = %d", a.Side, a.Player, a.Category, k, actual[k]),
			}
		}
	}
	return nil
}

func assertJournalCount(actx *AssertionContext, a Assertion) error {
	var count int
	if a.Type == AssertJournalCount {
		entries, err := actx.Session.History(actx.Ctx)
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
		count = len(entries)
	} else {
		rejections, err := actx.Session.Rejections(actx.Ctx)
		if err != nil {
			return fmt.Errorf("read rejections: %w", err)
		}
		count = len(rejections)
	}

	if count != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d rows", a.Count),
			Actual:   fmt.Sprintf("%d rows", count),
		}
	}
	return nil
}
