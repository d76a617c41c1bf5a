package ports

import "context"

// ProvisionedAccount is the outcome of a successful remote account
// creation: the platform-assigned id plus the encrypted secondary
// credential, ready to be persisted together on the local user record.
type ProvisionedAccount struct {
	RemoteID  int64
	SecretEnc string
}

// SyncService is the synchronization orchestrator: it composes credential
// decoding, session establishment and a single remote operation, and
// classifies every failure into a *domain.SyncError. It performs no
// automatic retries and never mutates local user state itself — callers
// apply the matching local mutation only after the remote call succeeds.
type SyncService interface {
	ProvisionAccount(ctx context.Context, name, email, password string) (*ProvisionedAccount, error)
	DeprovisionAccount(ctx context.Context, remoteID int64, login, secretEnc string) error
	ChangeLogin(ctx context.Context, remoteID int64, login, secretEnc, newEmail string) error
	OpenDialog(ctx context.Context, login, secretEnc string, peerRemoteID int64) (string, error)
	Push(ctx context.Context, login, secretEnc string, targetIDs []int64, title, content string) error

	// FlagOrphan records a remote account whose local commit failed so a
	// background job can delete it; automatic rollback of the remote side
	// is not guaranteed.
	FlagOrphan(ctx context.Context, remoteID int64, login, secretEnc string) error
}
