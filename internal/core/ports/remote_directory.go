package ports

import "context"

// RemoteDirectory is the outbound port to the remote messaging platform.
// Every call opens its own short-lived session — anonymous (application
// level) for Signup, user-scoped for everything else. Implementations
// never reuse sessions across calls and classify failures into the
// transport sentinels in domain (ErrRemoteUnavailable, ErrRemoteAuth,
// ErrRemoteRejected).
type RemoteDirectory interface {
	// Signup registers a new remote account and returns the
	// platform-assigned id. Not idempotent: calling twice with the same
	// email may create two accounts unless the platform rejects
	// duplicates.
	Signup(ctx context.Context, name, email, password string) (int64, error)
	// DeleteAccount removes the remote account, authenticating as the
	// account being deleted.
	DeleteAccount(ctx context.Context, remoteID int64, login, password string) error
	// UpdateEmail changes the remote account's login/email.
	UpdateEmail(ctx context.Context, remoteID int64, login, password, newEmail string) error
	// CreateDialog opens a private two-party dialog with a peer account
	// and returns the dialog id.
	CreateDialog(ctx context.Context, login, password string, peerRemoteID int64) (string, error)
	// SendPush delivers a push event to one or more remote accounts.
	SendPush(ctx context.Context, login, password string, targetIDs []int64, title, content string) error
}
