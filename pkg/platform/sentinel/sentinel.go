package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and persistence backends
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: submission does not exist in the store
// - ErrConflict: concurrent mutation detected (version mismatch)
// - ErrInvalidState: status change violates the transition table (strict mode)
// - ErrUnavailable: persistence backend temporarily unreachable
//
// Form validation findings are validation.Issue values; they are data, never
// errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
