package domain

import "time"

// User models a registered account. Each user is mirrored 1:1 into the
// remote messaging platform: RemoteID holds the platform-assigned
// identifier and RemoteSecretEnc the encrypted copy of the password used
// to re-authenticate as that remote account later.
//
// RemoteID and RemoteSecretEnc are either both set or both unset. A
// half-linked user is a data-integrity violation the sync layer must
// never produce.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	APIKey          string    `json:"api_key,omitempty"`
	RemoteID        *int64    `json:"remote_id,omitempty"`
	RemoteSecretEnc string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Linked reports whether the user carries a complete remote linkage.
func (u *User) Linked() bool {
	return u.RemoteID != nil && u.RemoteSecretEnc != ""
}

// OrphanedAccount records a remote account whose matching local insert
// failed. Entries live in the reconciliation outbox until a background
// worker deletes the remote account.
type OrphanedAccount struct {
	ID        string
	RemoteID  int64
	Login     string
	SecretEnc string
	Attempts  int
	CreatedAt time.Time
}
