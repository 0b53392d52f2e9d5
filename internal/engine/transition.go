package engine

import (
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
)

// Change describes what a point did to the match beyond the score.
type Change struct {
	Winner ir.Side

	// SetIndex is the set the point was played in.
	SetIndex int

	SetWon   bool
	MatchWon bool
}

// Transition awards one point to winner and applies set and match rules.
// The returned state never aliases state's player tables.
func Transition(state ir.MatchState, winner ir.Side, r rules.Rules) (ir.MatchState, Change) {
	next := state.Clone()
	next.Version = ir.StateVersion
	if next.Status == "" {
		next.Status = ir.InProgress
	}

	change := Change{Winner: winner, SetIndex: next.SetIndex()}

	w := next.TeamRef(winner)
	l := next.TeamRef(winner.Opponent())
	w.Points++

	if w.Points >= r.Target(change.SetIndex) && w.Points-l.Points >= r.MinLead {
		w.Sets++
		w.Points = 0
		l.Points = 0
		change.SetWon = true

		if w.Sets >= r.SetsToWin {
			next.Status = ir.Finished
			change.MatchWon = true
		}
	}

	next.Serving = winner
	return next, change
}
