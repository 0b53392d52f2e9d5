package engine

import "github.com/roach88/rally/internal/ir"

// toReason returns err as a located reason. An error that is not already
// an *ir.Reason is reported as InvalidInput at offset 0.
func toReason(err error) *ir.Reason {
	if r, ok := ir.AsReason(err); ok {
		return r
	}
	return ir.NewInvalidInput(0, "%v", err)
}
