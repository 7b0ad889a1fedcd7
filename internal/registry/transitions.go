package registry

import "fmt"

// CanTransition reports whether a migration may move from one status to
// another. Rollback is terminal; a corrective change needs a new entry.
func CanTransition(from, to MigrationStatus) bool {
	switch from {
	case MigrationPending:
		return to == MigrationApplied
	case MigrationApplied:
		return to == MigrationRolledBack
	case MigrationRolledBack:
		return false
	default:
		return false
	}
}

// ValidateTransition returns ErrInvalidTransition when from -> to is not allowed.
func ValidateTransition(from, to MigrationStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
