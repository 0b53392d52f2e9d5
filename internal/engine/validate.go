package engine

import (
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
)

// ValidateState refuses a match record the engine cannot continue from.
// Every refusal is an InvalidInput reason at offset 0.
func ValidateState(state ir.MatchState, r rules.Rules) error {
	if state.Version != "" && state.Version != ir.StateVersion {
		return ir.NewInvalidInput(0, "unsupported state version %q", state.Version)
	}

	switch state.Status {
	case "", ir.InProgress:
	case ir.Finished:
		return ir.NewInvalidInput(0, "match is already finished")
	default:
		return ir.NewInvalidInput(0, "unknown match status %q", state.Status)
	}

	if state.Serving != "" && !state.Serving.Valid() {
		return ir.NewInvalidInput(0, "unknown serving side %q", state.Serving)
	}

	for _, side := range []ir.Side{ir.Home, ir.Away} {
		if err := validateTeam(side, state.Team(side), r); err != nil {
			return err
		}
	}
	return nil
}

func validateTeam(side ir.Side, t ir.TeamState, r rules.Rules) error {
	if t.Sets < 0 || t.Points < 0 {
		return ir.NewInvalidInput(0, "%s team has a negative score", side)
	}
	if t.Sets > ir.MaxCount || t.Points > ir.MaxCount {
		return ir.NewInvalidInput(0, "%s team score is out of range", side)
	}
	if t.Sets >= r.SetsToWin {
		return ir.NewInvalidInput(0, "%s team has already won %d sets but the match is in progress", side, t.Sets)
	}

	for n, ps := range t.PlayerStats {
		if n < 0 || n > 99 {
			return ir.NewInvalidInput(0, "%s player number %d is out of range", side, n)
		}
		for _, c := range ir.Categories {
			if !ps.Bucket(c).Valid() {
				return ir.NewInvalidInput(0, "%s player %d has inconsistent %s counters", side, n, c)
			}
		}
	}
	return nil
}
