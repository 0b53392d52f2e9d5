package ir

// Side identifies one of the two teams on court.
type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

// Valid reports whether s names a team.
func (s Side) Valid() bool {
	return s == Home || s == Away
}

// Opponent returns the other team.
func (s Side) Opponent() Side {
	if s == Home {
		return Away
	}
	return Home
}

// Status is the lifecycle state of a match.
type Status string

const (
	InProgress Status = "InProgress"
	Finished   Status = "Finished"
)

// Category is the statistic bucket an action is counted in.
type Category string

const (
	Serve    Category = "serve"
	Receive  Category = "receive"
	Pass     Category = "pass"
	Set      Category = "set"
	Hit      Category = "hit"
	Block    Category = "block"
	Freeball Category = "freeball"
)

// Categories lists every category in bucket order.
var Categories = []Category{Serve, Receive, Pass, Set, Hit, Block, Freeball}

// PlayerScores counts attempts of one kind of action.
// Invariant: Scored + Faults <= All.
type PlayerScores struct {
	Scored int `json:"scored"`
	Faults int `json:"faults"`
	All    int `json:"all"`
}

// MaxCount bounds every counter in a match record so that counting one
// more rally can never overflow.
const MaxCount = 1<<31 - 1

// Valid reports whether the counters are non-negative, at most MaxCount
// and consistent.
func (p PlayerScores) Valid() bool {
	if p.Scored < 0 || p.Faults < 0 || p.All > MaxCount {
		return false
	}
	return p.Faults <= p.All-p.Scored
}

// PlayerStats holds one player's buckets for the match.
type PlayerStats struct {
	Player    int          `json:"player"`
	Serves    PlayerScores `json:"serves"`
	Receives  PlayerScores `json:"receives"`
	Passes    PlayerScores `json:"passes"`
	Sets      PlayerScores `json:"sets"`
	Hits      PlayerScores `json:"hits"`
	Blocks    PlayerScores `json:"blocks"`
	Freeballs PlayerScores `json:"freeballs"`
}

// Bucket returns the counters for category c.
// Returns nil for an unknown category.
func (p *PlayerStats) Bucket(c Category) *PlayerScores {
	switch c {
	case Serve:
		return &p.Serves
	case Receive:
		return &p.Receives
	case Pass:
		return &p.Passes
	case Set:
		return &p.Sets
	case Hit:
		return &p.Hits
	case Block:
		return &p.Blocks
	case Freeball:
		return &p.Freeballs
	default:
		return nil
	}
}

// TeamState is one team's running record.
type TeamState struct {
	Sets        int                 `json:"sets"`
	Points      int                 `json:"points"`
	PlayerStats map[int]PlayerStats `json:"playerStats"`
}

// HasPlayer reports whether player n has appeared for this team.
func (t TeamState) HasPlayer(n int) bool {
	_, ok := t.PlayerStats[n]
	return ok
}

// Clone returns a copy that shares no map with t.
func (t TeamState) Clone() TeamState {
	c := TeamState{
		Sets:        t.Sets,
		Points:      t.Points,
		PlayerStats: make(map[int]PlayerStats, len(t.PlayerStats)),
	}
	for n, ps := range t.PlayerStats {
		c.PlayerStats[n] = ps
	}
	return c
}

// MatchState is the whole match record exchanged with the caller.
// It evolves by replacement: every accepted rally yields a new value.
type MatchState struct {
	Version  string    `json:"version,omitempty"`
	HomeTeam TeamState `json:"homeTeam"`
	AwayTeam TeamState `json:"awayTeam"`
	Status   Status    `json:"status"`

	// Serving is the side serving the next rally. Empty until the first
	// rally is decided.
	Serving Side `json:"serving,omitempty"`
}

// NewMatchState returns the all-zero state of a match about to start.
func NewMatchState() MatchState {
	return MatchState{
		Version:  StateVersion,
		HomeTeam: TeamState{PlayerStats: map[int]PlayerStats{}},
		AwayTeam: TeamState{PlayerStats: map[int]PlayerStats{}},
		Status:   InProgress,
	}
}

// Team returns the record of side s.
func (m MatchState) Team(s Side) TeamState {
	if s == Away {
		return m.AwayTeam
	}
	return m.HomeTeam
}

// TeamRef returns a pointer to the record of side s inside m.
func (m *MatchState) TeamRef(s Side) *TeamState {
	if s == Away {
		return &m.AwayTeam
	}
	return &m.HomeTeam
}

// Clone returns a deep copy of m.
func (m MatchState) Clone() MatchState {
	c := m
	c.HomeTeam = m.HomeTeam.Clone()
	c.AwayTeam = m.AwayTeam.Clone()
	return c
}

// SetIndex is the 1-based number of the set currently being played.
func (m MatchState) SetIndex() int {
	return m.HomeTeam.Sets + m.AwayTeam.Sets + 1
}

// IsFinished reports whether the match has been decided.
func (m MatchState) IsFinished() bool {
	return m.Status == Finished
}
