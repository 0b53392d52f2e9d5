package testutil

import "github.com/roach88/rally/internal/ir"

// MatchBuilder assembles match records for tests.
//
//	state := testutil.NewMatch().Sets(2, 2).Score(14, 13).State()
type MatchBuilder struct {
	state ir.MatchState
}

// NewMatch starts from ir.NewMatchState().
func NewMatch() *MatchBuilder {
	return &MatchBuilder{state: ir.NewMatchState()}
}

// Score sets the points of the current set.
func (b *MatchBuilder) Score(home, away int) *MatchBuilder {
	b.state.HomeTeam.Points = home
	b.state.AwayTeam.Points = away
	return b
}

// Sets sets the number of sets each team has won.
func (b *MatchBuilder) Sets(home, away int) *MatchBuilder {
	b.state.HomeTeam.Sets = home
	b.state.AwayTeam.Sets = away
	return b
}

// Serving sets the side serving the next rally.
func (b *MatchBuilder) Serving(s ir.Side) *MatchBuilder {
	b.state.Serving = s
	return b
}

// Status sets the match status.
func (b *MatchBuilder) Status(s ir.Status) *MatchBuilder {
	b.state.Status = s
	return b
}

// Players registers numbers on side with zero statistics.
func (b *MatchBuilder) Players(side ir.Side, numbers ...int) *MatchBuilder {
	team := b.state.TeamRef(side)
	for _, n := range numbers {
		team.PlayerStats[n] = ir.PlayerStats{Player: n}
	}
	return b
}

// Stats replaces the statistics of one player.
func (b *MatchBuilder) Stats(side ir.Side, ps ir.PlayerStats) *MatchBuilder {
	b.state.TeamRef(side).PlayerStats[ps.Player] = ps
	return b
}

// State returns a copy of the built record. The builder may be reused.
func (b *MatchBuilder) State() ir.MatchState {
	return b.state.Clone()
}
