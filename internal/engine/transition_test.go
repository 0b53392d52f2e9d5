package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
	"github.com/roach88/rally/internal/testutil"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		state    ir.MatchState
		winner   ir.Side
		homeSets int
		awaySets int
		homePts  int
		awayPts  int
		setWon   bool
		status   ir.Status
		setIndex int
	}{
		{
			name:     "first point",
			state:    testutil.NewMatch().State(),
			winner:   ir.Home,
			homePts:  1,
			status:   ir.InProgress,
			setIndex: 1,
		},
		{
			name:     "24-23 wins set 1",
			state:    testutil.NewMatch().Score(24, 23).State(),
			winner:   ir.Home,
			homeSets: 1,
			setWon:   true,
			status:   ir.InProgress,
			setIndex: 1,
		},
		{
			name:     "24-24 needs two",
			state:    testutil.NewMatch().Score(24, 24).State(),
			winner:   ir.Away,
			homePts:  24,
			awayPts:  25,
			status:   ir.InProgress,
			setIndex: 1,
		},
		{
			name:     "deuce won at 27-25",
			state:    testutil.NewMatch().Sets(1, 0).Score(25, 26).State(),
			winner:   ir.Away,
			homeSets: 1,
			awaySets: 1,
			setWon:   true,
			status:   ir.InProgress,
			setIndex: 2,
		},
		{
			name:     "15 is not enough before the deciding set",
			state:    testutil.NewMatch().Sets(2, 1).Score(14, 10).State(),
			winner:   ir.Home,
			homeSets: 2,
			awaySets: 1,
			homePts:  15,
			awayPts:  10,
			status:   ir.InProgress,
			setIndex: 4,
		},
		{
			name:     "deciding set 14-13 finishes the match",
			state:    testutil.NewMatch().Sets(2, 2).Score(14, 13).State(),
			winner:   ir.Home,
			homeSets: 3,
			awaySets: 2,
			setWon:   true,
			status:   ir.Finished,
			setIndex: 5,
		},
		{
			name:     "deciding set 14-14 goes on",
			state:    testutil.NewMatch().Sets(2, 2).Score(14, 14).State(),
			winner:   ir.Away,
			homeSets: 2,
			awaySets: 2,
			homePts:  14,
			awayPts:  15,
			status:   ir.InProgress,
			setIndex: 5,
		},
		{
			name:     "straight sets",
			state:    testutil.NewMatch().Sets(0, 2).Score(3, 24).State(),
			winner:   ir.Away,
			awaySets: 3,
			setWon:   true,
			status:   ir.Finished,
			setIndex: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, change := Transition(tt.state, tt.winner, rules.Default())

			assert.Equal(t, tt.homeSets, next.HomeTeam.Sets, "home sets")
			assert.Equal(t, tt.awaySets, next.AwayTeam.Sets, "away sets")
			assert.Equal(t, tt.homePts, next.HomeTeam.Points, "home points")
			assert.Equal(t, tt.awayPts, next.AwayTeam.Points, "away points")
			assert.Equal(t, tt.status, next.Status)
			assert.Equal(t, tt.winner, next.Serving, "winner serves next")
			assert.Equal(t, ir.StateVersion, next.Version)

			assert.Equal(t, tt.winner, change.Winner)
			assert.Equal(t, tt.setWon, change.SetWon)
			assert.Equal(t, tt.status == ir.Finished, change.MatchWon)
			assert.Equal(t, tt.setIndex, change.SetIndex)
		})
	}
}

func TestTransitionCustomRules(t *testing.T) {
	beach := rules.Default()
	beach.PointsPerSet = 21
	beach.SetsToWin = 2

	next, change := Transition(testutil.NewMatch().Score(20, 5).State(), ir.Home, beach)
	assert.True(t, change.SetWon)
	assert.Equal(t, 1, next.HomeTeam.Sets)

	// the third set is the deciding one
	next, change = Transition(testutil.NewMatch().Sets(1, 1).Score(13, 14).State(), ir.Away, beach)
	assert.True(t, change.MatchWon)
	assert.Equal(t, ir.Finished, next.Status)
}

func TestTransitionDoesNotAlias(t *testing.T) {
	state := testutil.NewMatch().Players(ir.Home, 4).State()
	next, _ := Transition(state, ir.Home, rules.Default())

	next.HomeTeam.PlayerStats[9] = ir.PlayerStats{Player: 9}
	assert.False(t, state.HomeTeam.HasPlayer(9))
	assert.Equal(t, 0, state.HomeTeam.Points)
}
