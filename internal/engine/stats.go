package engine

import (
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/notation"
)

// Accumulate returns a copy of state with every action counted in its
// player's bucket. Players seen for the first time are added. The
// caller's player tables are never modified.
func Accumulate(state ir.MatchState, actions []notation.Action) ir.MatchState {
	next := state.Clone()
	for _, a := range actions {
		team := next.TeamRef(a.Side)
		ps := team.PlayerStats[a.Player]
		ps.Player = a.Player

		b := ps.Bucket(a.Category)
		if b == nil {
			continue
		}
		b.All++
		switch a.Outcome {
		case notation.Scored:
			b.Scored++
		case notation.Fault:
			b.Faults++
		}
		team.PlayerStats[a.Player] = ps
	}
	return next
}
