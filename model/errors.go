package model

import "errors"

// Error kinds the core reports to callers. They are matched with errors.Is;
// wrapping adds context without losing the kind.
var (
	// ErrNotFound means a group, user or member record does not exist yet.
	// Callers treat this as "not seen", not as a failure.
	ErrNotFound = errors.New("record not found")

	// ErrPermissionDenied means the actor's tier is below the required one,
	// or the target is protected (an admin acted on by a non-owner).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidState means the requested transition does not apply, e.g.
	// unmuting a member who is not muted.
	ErrInvalidState = errors.New("invalid state")

	// ErrStoreUnavailable is a transient data-store failure; retryable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUpstreamUnavailable means the platform roster query failed. The
	// permission resolver degrades to member when it sees this.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
