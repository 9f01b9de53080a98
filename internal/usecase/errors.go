package usecase

import "errors"

// Error classes the serving layer maps onto HTTP statuses. Degraded
// sub-steps (a failed chunk, a failed cut) never surface through these; only
// pipeline-aborting conditions do.
var (
	ErrBadInput = errors.New("bad input")
	ErrNotFound = errors.New("not found")
	ErrTimeout  = errors.New("timed out")
)
