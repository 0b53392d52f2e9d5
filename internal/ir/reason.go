package ir

import (
	"errors"
	"fmt"
)

// ReasonKey classifies why a rally was refused.
type ReasonKey string

const (
	// InvalidInput means the notation or the submitted state is malformed.
	InvalidInput ReasonKey = "InvalidInput"

	// WhoScored means the notation is valid but does not say which team
	// won the point.
	WhoScored ReasonKey = "WhoScored"
)

const whoScoredMsg = "It's ambiguous which team scored, either fix your last action or place the team prefix after the last action."

// Reason describes a refused rally. Location is the 0-based byte offset
// into the rally string where the problem was found.
type Reason struct {
	Key      ReasonKey `json:"key"`
	ErrorMsg string    `json:"errorMsg"`
	Location int       `json:"location"`
}

// Error implements the error interface.
func (r *Reason) Error() string {
	return fmt.Sprintf("%s at %d: %s", r.Key, r.Location, r.ErrorMsg)
}

// NewInvalidInput creates an InvalidInput reason at location.
func NewInvalidInput(location int, format string, args ...any) *Reason {
	return &Reason{
		Key:      InvalidInput,
		ErrorMsg: fmt.Sprintf(format, args...),
		Location: location,
	}
}

// NewWhoScored creates a WhoScored reason at location.
func NewWhoScored(location int) *Reason {
	return &Reason{
		Key:      WhoScored,
		ErrorMsg: whoScoredMsg,
		Location: location,
	}
}

// AsReason extracts a *Reason from err.
// Uses errors.As to handle wrapped errors.
func AsReason(err error) (*Reason, bool) {
	var r *Reason
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// IsWhoScored returns true if err is a WhoScored reason.
func IsWhoScored(err error) bool {
	r, ok := AsReason(err)
	return ok && r.Key == WhoScored
}

// IsInvalidInput returns true if err is an InvalidInput reason.
func IsInvalidInput(err error) bool {
	r, ok := AsReason(err)
	return ok && r.Key == InvalidInput
}

// ParseResult is the outcome of one rally: exactly one of Ok and Fail is set.
type ParseResult struct {
	Ok   *MatchState `json:"Ok,omitempty"`
	Fail *Reason     `json:"Fail,omitempty"`
}

// Ok wraps an accepted state.
func Ok(state MatchState) ParseResult {
	return ParseResult{Ok: &state}
}

// Fail wraps a refusal.
func Fail(reason *Reason) ParseResult {
	return ParseResult{Fail: reason}
}

// IsOk reports whether the rally was accepted.
func (r ParseResult) IsOk() bool {
	return r.Ok != nil
}
