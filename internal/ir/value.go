package ir

import (
	"slices"
	"strconv"
	"unicode/utf16"
)

// IRValue is a sealed interface representing constrained value types.
// Only IRString, IRInt, IRBool, IRArray, and IRObject implement this.
// There is no float or null: match records are made of counters and names.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRString represents a string value in the IR.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value in the IR.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value in the IR.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 which can produce a different order.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}

	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// IR converts the counters to an IRObject.
func (p PlayerScores) IR() IRObject {
	return IRObject{
		"scored": IRInt(p.Scored),
		"faults": IRInt(p.Faults),
		"all":    IRInt(p.All),
	}
}

// IR converts the player's buckets to an IRObject keyed like the JSON form.
func (p PlayerStats) IR() IRObject {
	return IRObject{
		"player":    IRInt(p.Player),
		"serves":    p.Serves.IR(),
		"receives":  p.Receives.IR(),
		"passes":    p.Passes.IR(),
		"sets":      p.Sets.IR(),
		"hits":      p.Hits.IR(),
		"blocks":    p.Blocks.IR(),
		"freeballs": p.Freeballs.IR(),
	}
}

// IR converts the team record to an IRObject. Player numbers become
// decimal string keys, as in the JSON form.
func (t TeamState) IR() IRObject {
	players := make(IRObject, len(t.PlayerStats))
	for n, ps := range t.PlayerStats {
		players[strconv.Itoa(n)] = ps.IR()
	}
	return IRObject{
		"sets":        IRInt(t.Sets),
		"points":      IRInt(t.Points),
		"playerStats": players,
	}
}

// IR converts the match record to an IRObject.
// An empty version is written as StateVersion so that both spellings of
// the same state hash identically.
func (m MatchState) IR() IRObject {
	version := m.Version
	if version == "" {
		version = StateVersion
	}
	status := m.Status
	if status == "" {
		status = InProgress
	}
	obj := IRObject{
		"version":  IRString(version),
		"homeTeam": m.HomeTeam.IR(),
		"awayTeam": m.AwayTeam.IR(),
		"status":   IRString(status),
	}
	if m.Serving != "" {
		obj["serving"] = IRString(m.Serving)
	}
	return obj
}
