package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainState = "rally/state/v1"
	DomainEntry = "rally/entry/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash computes the content-addressed fingerprint of a match state.
// Two states hash equal iff their canonical JSON forms are equal.
func StateHash(state MatchState) (string, error) {
	canonical, err := MarshalCanonical(state.IR())
	if err != nil {
		return "", fmt.Errorf("StateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// EntryID computes the identity of one journal entry: the rally text
// submitted at seq against the state with hash before.
func EntryID(sessionID string, seq int64, rally, before string) (string, error) {
	obj := IRObject{
		"session_id": IRString(sessionID),
		"seq":        IRInt(seq),
		"rally":      IRString(rally),
		"before":     IRString(before),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EntryID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEntry, canonical), nil
}

// MustStateHash is like StateHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustStateHash(state MatchState) string {
	h, err := StateHash(state)
	if err != nil {
		panic(err)
	}
	return h
}
