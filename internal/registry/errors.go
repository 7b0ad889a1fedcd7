package registry

import "errors"

var (
	ErrIO                = errors.New("registry i/o error")
	ErrMalformedRegistry = errors.New("malformed registry")
	ErrUnknownModule     = errors.New("unknown module")
	ErrDuplicateModule   = errors.New("duplicate module")
	ErrInvalidSemver     = errors.New("invalid semantic version")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidEntry      = errors.New("invalid entry")
	ErrUnknownID         = errors.New("unknown migration id")
	ErrDuplicateID       = errors.New("duplicate migration id")
	ErrNonMonotonicID    = errors.New("non-monotonic migration id")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrLockTimeout       = errors.New("registry lock timeout")
)
