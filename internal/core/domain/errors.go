package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email already exists")
	ErrEmailTaken         = errors.New("email already taken by another user")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotLinked marks a user without remote linkage reaching an
	// operation that requires one. Under the linkage invariant this is an
	// internal inconsistency, not a user input error.
	ErrUserNotLinked = errors.New("user has no linked remote account")
)

// Transport-level sentinels produced by the remote platform gateway. The
// sync orchestrator translates them into SyncError kinds; nothing above
// the orchestrator matches on these directly.
var (
	ErrRemoteUnavailable = errors.New("remote platform unreachable")
	ErrRemoteAuth        = errors.New("remote platform rejected credentials")
	ErrRemoteRejected    = errors.New("remote platform declined the request")
)
