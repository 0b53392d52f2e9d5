// Package rules holds the match and notation rules the engine applies:
// side prefixes, set targets, the winning margin and the match length.
//
// Rules are loaded from CUE. The embedded schema supplies every default,
// so an empty file yields Default().
package rules

import "github.com/roach88/rally/internal/ir"

// Rules configures one match.
type Rules struct {
	// HomePrefix and AwayPrefix are the single-character side markers.
	HomePrefix string `json:"home_prefix"`
	AwayPrefix string `json:"away_prefix"`

	PointsPerSet      int `json:"points_per_set"`
	DecidingSetPoints int `json:"deciding_set_points"`
	MinLead           int `json:"min_lead"`
	SetsToWin         int `json:"sets_to_win"`

	// FirstServe is the side serving the first rally of the match.
	FirstServe ir.Side `json:"first_serve"`
}

// Default returns indoor volleyball rules: best of five, sets to 25,
// deciding set to 15, win by two, home serves first.
func Default() Rules {
	return Rules{
		HomePrefix:        "!",
		AwayPrefix:        "@",
		PointsPerSet:      25,
		DecidingSetPoints: 15,
		MinLead:           2,
		SetsToWin:         3,
		FirstServe:        ir.Home,
	}
}

// DecidingSet is the 1-based index of the set played to DecidingSetPoints.
func (r Rules) DecidingSet() int {
	return 2*r.SetsToWin - 1
}

// Target returns the points needed to take set number setIndex.
func (r Rules) Target(setIndex int) int {
	if setIndex >= r.DecidingSet() {
		return r.DecidingSetPoints
	}
	return r.PointsPerSet
}

// Prefixes are the side markers used by the notation.
type Prefixes struct {
	Home string
	Away string
}

// Prefixes returns the side markers of r.
func (r Rules) Prefixes() Prefixes {
	return Prefixes{Home: r.HomePrefix, Away: r.AwayPrefix}
}

// SideOf returns the side marked by c.
func (p Prefixes) SideOf(c byte) (ir.Side, bool) {
	switch {
	case len(p.Home) == 1 && c == p.Home[0]:
		return ir.Home, true
	case len(p.Away) == 1 && c == p.Away[0]:
		return ir.Away, true
	default:
		return "", false
	}
}

// Marker returns the prefix written for side s.
func (p Prefixes) Marker(s ir.Side) string {
	if s == ir.Away {
		return p.Away
	}
	return p.Home
}
