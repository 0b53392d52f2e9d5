package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/testutil"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func TestRenderScoreboardOrdersPlayersNaturally(t *testing.T) {
	state := testutil.NewMatch().
		Players(ir.Home, 10, 2, 4).
		Stats(ir.Home, ir.PlayerStats{Player: 11, Hits: ir.PlayerScores{Scored: 2, Faults: 1, All: 5}}).
		State()

	buf := &bytes.Buffer{}
	renderScoreboard(buf, state)
	out := buf.String()

	i2 := strings.Index(out, "#2 ")
	i4 := strings.Index(out, "#4 ")
	i10 := strings.Index(out, "#10")
	i11 := strings.Index(out, "#11")
	require.True(t, i2 > 0 && i4 > 0 && i10 > 0 && i11 > 0, out)
	assert.True(t, i2 < i4 && i4 < i10 && i10 < i11, "players in number order:\n%s", out)

	assert.Contains(t, out, "#11  hit 2/1/5")
	assert.Contains(t, out, "#2   -")
	assert.NotContains(t, out, "away players")
}

func TestRenderReasonCaret(t *testing.T) {
	buf := &bytes.Buffer{}
	renderReason(buf, "!4S5 @7R ~", ir.NewWhoScored(9), 2)
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "  !4S5 @7R ~", lines[0])
	assert.Equal(t, "           ^", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "WhoScored: It's ambiguous"))
}

func TestCaretColumnClamps(t *testing.T) {
	assert.Equal(t, 0, caretColumn("4s.", -1))
	assert.Equal(t, 3, caretColumn("4s.", 3))
	assert.Equal(t, 3, caretColumn("4s.", 10))
}

func TestScoreLine(t *testing.T) {
	state := testutil.NewMatch().Sets(1, 2).Score(7, 9).Serving(ir.Away).State()
	assert.Equal(t, "home 7-9 away (sets 1-2), away serving", scoreLine(state))

	done := testutil.NewMatch().Sets(3, 1).Status(ir.Finished).State()
	assert.Equal(t, "home 0-0 away (sets 3-1) final", scoreLine(done))
}

func TestDecodeState(t *testing.T) {
	state, err := decodeState([]byte(`{"homeTeam":{"sets":0,"points":3,"playerStats":{}},"awayTeam":{"sets":0,"points":1},"status":"InProgress"}`))
	require.NoError(t, err)
	assert.Equal(t, 3, state.HomeTeam.Points)
	assert.NotNil(t, state.AwayTeam.PlayerStats)

	state, err = decodeState([]byte(`{"Ok":{"homeTeam":{"sets":1,"points":0},"awayTeam":{"sets":0,"points":0},"status":"InProgress"}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, state.HomeTeam.Sets)

	_, err = decodeState([]byte(`{"Fail":{"key":"WhoScored","errorMsg":"x","location":0}}`))
	assert.Error(t, err)

	_, err = decodeState([]byte(`[]`))
	assert.Error(t, err)
}
