package domain

import "fmt"

// SyncErrorKind discriminates the failure classes of a synchronization
// operation against the remote messaging platform.
type SyncErrorKind string

const (
	// SyncCredentialCorrupt: the stored remote secret could not be
	// decoded. Fatal to the operation, never retried.
	SyncCredentialCorrupt SyncErrorKind = "CredentialDecodeError"
	// SyncRemoteAuth: the remote platform rejected the stored
	// credentials. Implies internal inconsistency between the two stores.
	SyncRemoteAuth SyncErrorKind = "RemoteAuthError"
	// SyncRemoteUnavailable: network failure or platform outage.
	// Retryable from the caller's perspective; the core never retries.
	SyncRemoteUnavailable SyncErrorKind = "RemoteUnavailableError"
	// SyncRemoteRejected: the platform explicitly declined the request,
	// e.g. a duplicate signup.
	SyncRemoteRejected SyncErrorKind = "RemoteRejected"
)

// SyncError is the discriminated failure result of an orchestrator
// operation. The orchestrator never lets a raw transport or codec error
// cross its boundary.
type SyncError struct {
	Kind SyncErrorKind
	Op   string
	Err  error
}

func (e *SyncError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("sync %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("sync %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
