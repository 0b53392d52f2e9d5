package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-100), "-100"},
		{"zero", IRInt(0), "0"},
		{"bool true", IRBool(true), "true"},
		{"bool false", IRBool(false), "false"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"array of ints", IRArray{IRInt(1), IRInt(2), IRInt(3)}, "[1,2,3]"},
		{"simple object", IRObject{"a": IRInt(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra": IRInt(1),
		"alpha": IRInt(2),
		"beta":  IRInt(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalUppercaseSortsFirst(t *testing.T) {
	obj := IRObject{
		"homeTeam": IRInt(1),
		"home":     IRInt(2),
		"Home":     IRInt(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"Home":3,"home":2,"homeTeam":1}`, string(result))
}

func TestMarshalCanonicalNumericStringKeys(t *testing.T) {
	// Player numbers are string keys, so "10" sorts before "4".
	obj := IRObject{
		"4":  IRInt(4),
		"10": IRInt(10),
		"2":  IRInt(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"10":10,"2":2,"4":4}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(IRString("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = MarshalCanonical(map[string]any{"x": 1.5})
	require.Error(t, err)
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)

	_, err = MarshalCanonical([]any{"a", nil})
	require.Error(t, err)
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// e-acute as e + combining acute accent normalizes to the single code point.
	decomposed := "e\u0301"
	composed := "\u00e9"

	r1, err := MarshalCanonical(IRString(decomposed))
	require.NoError(t, err)
	r2, err := MarshalCanonical(IRString(composed))
	require.NoError(t, err)

	assert.Equal(t, string(r2), string(r1))
}

func TestMarshalCanonicalWithGoTypes(t *testing.T) {
	result, err := MarshalCanonical(map[string]any{
		"name":  "rally",
		"seq":   int64(7),
		"count": 3,
		"ok":    true,
		"list":  []any{"a", 1},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"count":3,"list":["a",1],"name":"rally","ok":true,"seq":7}`, string(result))
}

func TestMarshalCanonicalU2028U2029NotEscaped(t *testing.T) {
	result, err := MarshalCanonical(IRString("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	// Six literal characters, not the line separator.
	result, err := MarshalCanonical(IRString(`sequence \u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"sequence \\u2028"`, string(result))

	result, err = MarshalCanonical(IRString("literal \\u2028 and actual \u2028"))
	require.NoError(t, err)
	assert.Equal(t, "\"literal \\\\u2028 and actual \u2028\"", string(result))
}

func TestMarshalCanonicalMatchState(t *testing.T) {
	state := NewMatchState()
	state.HomeTeam.Points = 1
	state.Serving = Home
	state.HomeTeam.PlayerStats[4] = PlayerStats{
		Player: 4,
		Serves: PlayerScores{Scored: 1, All: 1},
	}

	result, err := MarshalCanonical(state.IR())
	require.NoError(t, err)

	zero := `{"all":0,"faults":0,"scored":0}`
	player := `{"blocks":` + zero +
		`,"freeballs":` + zero +
		`,"hits":` + zero +
		`,"passes":` + zero +
		`,"player":4` +
		`,"receives":` + zero +
		`,"serves":{"all":1,"faults":0,"scored":1}` +
		`,"sets":` + zero + `}`
	expected := `{"awayTeam":{"playerStats":{},"points":0,"sets":0},` +
		`"homeTeam":{"playerStats":{"4":` + player + `},"points":1,"sets":0},` +
		`"serving":"home","status":"InProgress","version":"1"}`
	assert.Equal(t, expected, string(result))
}
