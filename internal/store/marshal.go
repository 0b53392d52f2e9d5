package store

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/rally/internal/ir"
)

// encodeState serializes a state snapshot. Field names follow the JSON
// tags so a snapshot reads like the caller-facing record.
func encodeState(state ir.MatchState) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	if err := enc.Encode(state); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeState restores a snapshot written by encodeState.
func decodeState(data []byte) (ir.MatchState, error) {
	var state ir.MatchState
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&state); err != nil {
		return ir.MatchState{}, fmt.Errorf("decode state: %w", err)
	}
	if state.HomeTeam.PlayerStats == nil {
		state.HomeTeam.PlayerStats = map[int]ir.PlayerStats{}
	}
	if state.AwayTeam.PlayerStats == nil {
		state.AwayTeam.PlayerStats = map[int]ir.PlayerStats{}
	}
	return state, nil
}
