package provision

import "errors"

// Domain-specific errors for provisioning operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrEntityNotFound is returned when an announced entity does not exist.
	ErrEntityNotFound = errors.New("provision: entity not found")

	// ErrInvalidEntity is returned when an entity fails basic validation.
	ErrInvalidEntity = errors.New("provision: invalid entity")
)
