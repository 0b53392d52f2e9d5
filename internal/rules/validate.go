package rules

import (
	"fmt"
	"strings"
	"unicode"
)

// Validation error codes (E200-E299)
const (
	ErrInvalidPrefix    = "E201" // prefix must be one non-notation character
	ErrDuplicatePrefix  = "E202" // home and away share a prefix
	ErrInvalidTarget    = "E203" // set target out of range
	ErrInvalidLead      = "E204" // winning margin out of range
	ErrInvalidSetsToWin = "E205" // match length out of range
	ErrInvalidSide      = "E206" // first_serve is not home or away
)

// Characters the notation already uses.
const reservedChars = ".~/"

// ValidationError represents a rules validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every problem found in one Rules value.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks r for values the engine cannot play by.
// Returns all errors found (does not fail-fast).
func Validate(r Rules) ValidationErrors {
	var errs ValidationErrors

	// E201: prefixes
	for _, p := range []struct{ field, value string }{
		{"home_prefix", r.HomePrefix},
		{"away_prefix", r.AwayPrefix},
	} {
		if msg := checkPrefix(p.value); msg != "" {
			errs = append(errs, ValidationError{
				Field:   p.field,
				Message: msg,
				Code:    ErrInvalidPrefix,
			})
		}
	}

	// E202: the two sides must be distinguishable
	if r.HomePrefix != "" && r.HomePrefix == r.AwayPrefix {
		errs = append(errs, ValidationError{
			Field:   "away_prefix",
			Message: fmt.Sprintf("away_prefix %q is the same as home_prefix", r.AwayPrefix),
			Code:    ErrDuplicatePrefix,
		})
	}

	// E203: set targets
	if r.PointsPerSet < 1 {
		errs = append(errs, ValidationError{
			Field:   "points_per_set",
			Message: fmt.Sprintf("must be at least 1, got %d", r.PointsPerSet),
			Code:    ErrInvalidTarget,
		})
	}
	if r.DecidingSetPoints < 1 {
		errs = append(errs, ValidationError{
			Field:   "deciding_set_points",
			Message: fmt.Sprintf("must be at least 1, got %d", r.DecidingSetPoints),
			Code:    ErrInvalidTarget,
		})
	}

	// E204: margin
	if r.MinLead < 1 {
		errs = append(errs, ValidationError{
			Field:   "min_lead",
			Message: fmt.Sprintf("must be at least 1, got %d", r.MinLead),
			Code:    ErrInvalidLead,
		})
	}

	// E205: match length
	if r.SetsToWin < 1 {
		errs = append(errs, ValidationError{
			Field:   "sets_to_win",
			Message: fmt.Sprintf("must be at least 1, got %d", r.SetsToWin),
			Code:    ErrInvalidSetsToWin,
		})
	}

	// E206: first server
	if !r.FirstServe.Valid() {
		errs = append(errs, ValidationError{
			Field:   "first_serve",
			Message: fmt.Sprintf("invalid side %q, must be \"home\" or \"away\"", r.FirstServe),
			Code:    ErrInvalidSide,
		})
	}

	return errs
}

// checkPrefix returns why p cannot be a side marker, or "".
func checkPrefix(p string) string {
	if len(p) != 1 {
		return fmt.Sprintf("prefix %q must be exactly one ASCII character", p)
	}
	c := rune(p[0])
	switch {
	case c > unicode.MaxASCII || !unicode.IsPrint(c) || unicode.IsSpace(c):
		return fmt.Sprintf("prefix %q must be a printable ASCII character", p)
	case unicode.IsLetter(c) || unicode.IsDigit(c):
		return fmt.Sprintf("prefix %q is a letter or digit used by the notation", p)
	case strings.ContainsRune(reservedChars, c):
		return fmt.Sprintf("prefix %q is reserved by the notation", p)
	}
	return ""
}
