package discovery

import "errors"

// Domain-specific errors for discovery operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAnnounceFailed is returned when publishing a config payload fails.
	ErrAnnounceFailed = errors.New("discovery: announce failed")

	// ErrCleanupFailed is returned when un-announcing a removed entity fails.
	ErrCleanupFailed = errors.New("discovery: cleanup failed")

	// ErrRegistryFailed is returned when the provisioning registry cannot be
	// read or written.
	ErrRegistryFailed = errors.New("discovery: provisioning registry failed")
)
