package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideOpponent(t *testing.T) {
	assert.Equal(t, Away, Home.Opponent())
	assert.Equal(t, Home, Away.Opponent())
	assert.True(t, Home.Valid())
	assert.True(t, Away.Valid())
	assert.False(t, Side("").Valid())
	assert.False(t, Side("visitors").Valid())
}

func TestPlayerScoresValid(t *testing.T) {
	assert.True(t, PlayerScores{}.Valid())
	assert.True(t, PlayerScores{Scored: 1, Faults: 1, All: 3}.Valid())
	assert.False(t, PlayerScores{Scored: 2, Faults: 1, All: 2}.Valid())
	assert.False(t, PlayerScores{Scored: -1, All: 0}.Valid())
	assert.False(t, PlayerScores{Scored: math.MaxInt, Faults: 1, All: 0}.Valid())
	assert.False(t, PlayerScores{Scored: 1, Faults: math.MaxInt, All: 1}.Valid())
	assert.False(t, PlayerScores{All: MaxCount + 1}.Valid())
	assert.True(t, PlayerScores{Scored: MaxCount, All: MaxCount}.Valid())
}

func TestPlayerStatsBucket(t *testing.T) {
	var ps PlayerStats
	for _, c := range Categories {
		b := ps.Bucket(c)
		require.NotNil(t, b, "category %s", c)
		b.All++
	}
	assert.Equal(t, 1, ps.Serves.All)
	assert.Equal(t, 1, ps.Receives.All)
	assert.Equal(t, 1, ps.Passes.All)
	assert.Equal(t, 1, ps.Sets.All)
	assert.Equal(t, 1, ps.Hits.All)
	assert.Equal(t, 1, ps.Blocks.All)
	assert.Equal(t, 1, ps.Freeballs.All)
	assert.Nil(t, ps.Bucket(Category("spike")))
}

func TestMatchStateCloneSharesNoMaps(t *testing.T) {
	state := NewMatchState()
	state.HomeTeam.PlayerStats[4] = PlayerStats{Player: 4}

	c := state.Clone()
	ps := c.HomeTeam.PlayerStats[4]
	ps.Hits.All = 9
	c.HomeTeam.PlayerStats[4] = ps
	c.AwayTeam.PlayerStats[1] = PlayerStats{Player: 1}

	assert.Equal(t, 0, state.HomeTeam.PlayerStats[4].Hits.All)
	assert.False(t, state.AwayTeam.HasPlayer(1))
}

func TestCloneOfNilMaps(t *testing.T) {
	var state MatchState
	c := state.Clone()
	require.NotNil(t, c.HomeTeam.PlayerStats)
	require.NotNil(t, c.AwayTeam.PlayerStats)
}

func TestTeamAccessors(t *testing.T) {
	state := NewMatchState()
	state.TeamRef(Away).Points = 5
	assert.Equal(t, 5, state.Team(Away).Points)
	assert.Equal(t, 0, state.Team(Home).Points)
	assert.Equal(t, 1, state.SetIndex())

	state.HomeTeam.Sets = 2
	state.AwayTeam.Sets = 2
	assert.Equal(t, 5, state.SetIndex())
}

func TestMatchStateJSONShape(t *testing.T) {
	state := NewMatchState()
	state.HomeTeam.PlayerStats[10] = PlayerStats{Player: 10}

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "homeTeam")
	assert.Contains(t, raw, "awayTeam")
	assert.Equal(t, "InProgress", raw["status"])
	assert.NotContains(t, raw, "serving", "empty serving is omitted")

	home := raw["homeTeam"].(map[string]any)
	players := home["playerStats"].(map[string]any)
	assert.Contains(t, players, "10", "player numbers are decimal string keys")
}

func TestMatchStateFromDisplayJSON(t *testing.T) {
	// The shape the display collaborator keeps in memory.
	input := `{
		"awayTeam": {"sets": 0, "points": 2, "playerStats": {}},
		"homeTeam": {"sets": 1, "points": 0, "playerStats": {
			"4": {"player": 4,
				"hits": {"scored": 0, "faults": 0, "all": 1},
				"blocks": {"scored": 0, "faults": 0, "all": 0},
				"serves": {"scored": 1, "faults": 0, "all": 1}}
		}},
		"status": "InProgress"
	}`

	var state MatchState
	require.NoError(t, json.Unmarshal([]byte(input), &state))
	assert.Equal(t, 2, state.AwayTeam.Points)
	assert.Equal(t, 1, state.HomeTeam.Sets)
	require.True(t, state.HomeTeam.HasPlayer(4))
	assert.Equal(t, 1, state.HomeTeam.PlayerStats[4].Serves.Scored)
	assert.Equal(t, InProgress, state.Status)
}

func TestParseResultJSON(t *testing.T) {
	ok, err := json.Marshal(Ok(NewMatchState()))
	require.NoError(t, err)
	assert.Contains(t, string(ok), `"Ok":`)
	assert.NotContains(t, string(ok), `"Fail"`)

	fail, err := json.Marshal(Fail(NewInvalidInput(3, "bad %s", "token")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fail":{"key":"InvalidInput","errorMsg":"bad token","location":3}}`, string(fail))
}

func TestReasonHelpers(t *testing.T) {
	who := NewWhoScored(5)
	assert.True(t, IsWhoScored(who))
	assert.False(t, IsInvalidInput(who))
	assert.Equal(t, 5, who.Location)
	assert.Contains(t, who.Error(), "WhoScored at 5")

	bad := NewInvalidInput(0, "nope")
	assert.True(t, IsInvalidInput(bad))
	assert.False(t, IsWhoScored(bad))

	r, ok := AsReason(bad)
	require.True(t, ok)
	assert.Same(t, bad, r)

	_, ok = AsReason(assert.AnError)
	assert.False(t, ok)
}
