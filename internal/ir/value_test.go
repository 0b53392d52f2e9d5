package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "a", 0},
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "aa", -1},
		{"Z", "a", -1},
		{"10", "9", -1},
		// U+FFFF is one code unit, U+10000 is a surrogate pair starting 0xD800.
		{"\U00010000", "\uffff", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, compareKeysRFC8785(tt.a, tt.b))
		})
	}
}

func TestTeamStateIRUsesDecimalKeys(t *testing.T) {
	team := TeamState{
		Points: 3,
		PlayerStats: map[int]PlayerStats{
			7:  {Player: 7},
			12: {Player: 12},
		},
	}

	obj := team.IR()
	players, ok := obj["playerStats"].(IRObject)
	assert.True(t, ok)
	assert.Equal(t, []string{"12", "7"}, players.SortedKeys())
	assert.Equal(t, IRInt(3), obj["points"])
}

func TestMatchStateIRDefaults(t *testing.T) {
	obj := MatchState{}.IR()
	assert.Equal(t, IRString(StateVersion), obj["version"])
	assert.Equal(t, IRString(InProgress), obj["status"])
	assert.NotContains(t, obj, "serving")

	obj = MatchState{Serving: Away}.IR()
	assert.Equal(t, IRString("away"), obj["serving"])
}
