package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/testutil"
)

func intPtr(n int) *int { return &n }

func finalState() ir.MatchState {
	return testutil.NewMatch().
		Sets(1, 0).
		Score(5, 3).
		Serving(ir.Away).
		Stats(ir.Home, ir.PlayerStats{Player: 4, Serves: ir.PlayerScores{Scored: 2, Faults: 1, All: 6}}).
		State()
}

func TestAssertScore(t *testing.T) {
	state := finalState()

	assert.NoError(t, assertScore(state, Assertion{Type: AssertScore, Side: "home", Points: intPtr(5), Sets: intPtr(1)}))
	assert.NoError(t, assertScore(state, Assertion{Type: AssertScore, Side: "away", Points: intPtr(3)}))

	err := assertScore(state, Assertion{Type: AssertScore, Side: "away", Sets: intPtr(1)})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "away sets = 1", ae.Expected)
	assert.Equal(t, "away sets = 0", ae.Actual)
}

func TestAssertStatusAndServing(t *testing.T) {
	state := finalState()

	assert.NoError(t, assertStatus(state, Assertion{Status: "InProgress"}))
	assert.Error(t, assertStatus(state, Assertion{Status: "Finished"}))

	assert.NoError(t, assertServing(state, Assertion{Side: "away"}))
	assert.Error(t, assertServing(state, Assertion{Side: "home"}))
}

func TestAssertPlayerStat(t *testing.T) {
	state := finalState()

	assert.NoError(t, assertPlayerStat(state, Assertion{
		Side: "home", Player: 4, Category: "serve",
		Expect: map[string]int{"scored": 2, "all": 6},
	}))

	err := assertPlayerStat(state, Assertion{
		Side: "home", Player: 4, Category: "serve",
		Expect: map[string]int{"faults": 0},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "home #4 serve.faults = 1")

	err = assertPlayerStat(state, Assertion{
		Side: "away", Player: 4, Category: "serve",
		Expect: map[string]int{"all": 0},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player not found")
}

func TestEvaluateAssertionsAttachesTrace(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Step: 1, Rally: "4s.", Case: CaseOk, Home: Score{Points: 1}})

	errs := EvaluateAssertions(result, finalState(), []Assertion{
		{Type: AssertStatus, Status: "Finished"},
		{Type: AssertStatus, Status: "InProgress"},
	}, nil)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Assertion failed: status")
	assert.Contains(t, errs[0], "Full trace:")
	assert.Contains(t, errs[0], "4s.")
}

func TestEvaluateAssertionsNeedSessionForJournal(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), finalState(), []Assertion{
		{Type: AssertJournalCount, Count: 0},
	}, &AssertionContext{Ctx: context.Background()})

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires a session")
}

func TestAssertionErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertScore,
		Expected: "home points = 2",
		Actual:   "home points = 1",
		Trace: []TraceEvent{
			{Step: 1, Rally: "4s.", Case: CaseOk, Home: Score{Points: 1}},
			{Step: 2, Undo: true, Case: CaseUndone},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: score")
	assert.Contains(t, msg, "Expected: home points = 2")
	assert.Contains(t, msg, "Actual: home points = 1")
	assert.Contains(t, msg, "[1] 4s.")
	assert.Contains(t, msg, "[2] :undo")
}
