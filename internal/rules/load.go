package rules

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// CompileError represents a rules file error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads, compiles and validates a CUE rules file.
func LoadFile(path string) (Rules, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules file: %w", err)
	}
	return Load(path, src)
}

// Load compiles src against the rules schema and validates the result.
// filename is used in error positions only.
//
// The file holds top-level fields, for example:
//
//	points_per_set: 21
//	sets_to_win:    2
func Load(filename string, src []byte) (Rules, error) {
	r, err := Compile(filename, src)
	if err != nil {
		return Rules{}, err
	}
	if errs := Validate(r); len(errs) > 0 {
		return Rules{}, errs
	}
	return r, nil
}

// Compile unifies src with the schema and decodes it. It does not run
// Validate.
func Compile(filename string, src []byte) (Rules, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Rules{}, formatCUEError(err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Rules{}, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Rules")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Rules{}, formatCUEError(err)
	}

	var r Rules
	if err := unified.Decode(&r); err != nil {
		return Rules{}, formatCUEError(err)
	}
	return r, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// First error with a position wins
	firstErr := errs[0]
	field := "cue"
	if path := firstErr.Path(); len(path) > 0 {
		field = path[len(path)-1]
	}
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   field,
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
