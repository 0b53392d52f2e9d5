package engine

import (
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/notation"
)

// Point is a decided rally: the team that won it and the actions with the
// terminal outcome filled in.
type Point struct {
	Winner  ir.Side
	Actions []notation.Action
}

// Resolve decides which team won the rally.
//
// Only the last action (or the "~" marker) may end the rally. When the
// last action carries no explicit outcome it is classified from its
// category and zone. A trailing award marker settles a rally that is
// otherwise ambiguous and must agree with one that is not.
func Resolve(r notation.Rally) (Point, error) {
	if len(r.Actions) == 0 {
		return Point{}, ir.NewInvalidInput(0, "at least one action is required")
	}

	actions := make([]notation.Action, len(r.Actions))
	copy(actions, r.Actions)

	last := len(actions) - 1
	for _, a := range actions[:last] {
		if a.EndsRally() {
			return Point{}, ir.NewInvalidInput(a.Offset, "only the last action can end the rally")
		}
	}

	terminal := &actions[last]
	if !r.Dead && terminal.Outcome == notation.Neutral {
		terminal.Outcome = classify(*terminal)
	}

	if r.Dead || terminal.Outcome == notation.Neutral {
		if r.Award == nil {
			return Point{}, ir.NewWhoScored(r.Terminal())
		}
		if !r.Dead {
			terminal.Outcome = notation.Fault
			if *r.Award == terminal.Side {
				terminal.Outcome = notation.Scored
			}
		}
		return Point{Winner: *r.Award, Actions: actions}, nil
	}

	winner := terminal.Side
	if terminal.Outcome == notation.Fault {
		winner = winner.Opponent()
	}
	if r.Award != nil && *r.Award != winner {
		return Point{}, ir.NewInvalidInput(r.AwardOffset,
			"conflicting outcome: %s %s gives the point to %s", terminal.Category, terminal.Outcome, winner)
	}
	return Point{Winner: winner, Actions: actions}, nil
}

// classify returns the outcome of a last action written without one.
// Neutral means the notation does not say.
func classify(a notation.Action) notation.Outcome {
	if a.Zone.EndsRally() {
		return notation.Fault
	}
	switch a.Category {
	case ir.Serve:
		// an ace needs a landing zone
		if a.Zone.IsCourt() || a.Zone == notation.ZoneOverpass {
			return notation.Scored
		}
		return notation.Neutral
	case ir.Receive, ir.Pass:
		if a.Zone == notation.ZoneOverpass {
			return notation.Scored
		}
		return notation.Fault
	case ir.Set:
		return notation.Fault
	default:
		return notation.Scored
	}
}
