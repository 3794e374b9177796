package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Reference-data backends return
// these (optionally wrapped) so the mapping engine can decide between an
// identity fallback and a hard failure.
//
// - ErrNotFound: the backend holds no row for the requested code
// - ErrUnavailable: backend temporarily unavailable (circuit open, outage)
// - ErrInvalidState: backend returned data that violates its own contract
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
