package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchpoint/chat-backend/internal/api/metrics"
	"github.com/matchpoint/chat-backend/internal/core/domain"
	"github.com/matchpoint/chat-backend/internal/core/ports"
)

// syncService is the synchronization orchestrator. Per operation it runs
// decode stored secret → session-scoped remote call → failure
// classification. It never retries, never mutates local user state, and
// every failure crossing its boundary is a *domain.SyncError.
type syncService struct {
	remote ports.RemoteDirectory
	codec  ports.CredentialCodec
	outbox ports.OutboxRepository
	log    zerolog.Logger
}

// NewSyncService returns a SyncService implementation.
func NewSyncService(
	remote ports.RemoteDirectory,
	codec ports.CredentialCodec,
	outbox ports.OutboxRepository,
	log zerolog.Logger,
) ports.SyncService {
	return &syncService{
		remote: remote,
		codec:  codec,
		outbox: outbox,
		log:    log,
	}
}

// ProvisionAccount creates the remote account under an anonymous session
// and returns the remote id together with the encrypted secondary
// credential. The caller must persist both fields in the same step as the
// rest of the user so they either both land or both fail.
func (s *syncService) ProvisionAccount(ctx context.Context, name, email, password string) (*ports.ProvisionedAccount, error) {
	const op = "provision"
	start := time.Now()

	remoteID, err := s.remote.Signup(ctx, name, email, password)
	if err != nil {
		return nil, s.classifyRemote(op, err, start)
	}

	secretEnc, err := s.codec.Encrypt(password)
	if err != nil {
		// The remote account exists but its credential cannot be stored;
		// persisting the user without linkage would violate the
		// invariant, so flag the account for cleanup and fail.
		s.log.Error().Err(err).Int64("remote_id", remoteID).Msg("secondary credential encode failed after remote signup")
		if ferr := s.FlagOrphan(ctx, remoteID, email, ""); ferr != nil {
			s.log.Error().Err(ferr).Int64("remote_id", remoteID).Msg("failed to flag orphaned remote account")
		}
		return nil, s.fail(op, domain.SyncCredentialCorrupt, err, start)
	}

	s.done(op, start)
	return &ports.ProvisionedAccount{RemoteID: remoteID, SecretEnc: secretEnc}, nil
}

// DeprovisionAccount deletes the remote account, authenticating as that
// account with the decoded stored secret. The caller deletes the local
// row only after this returns nil; the reverse order would leave the
// remote side unreachable (its credential decodes against the old email).
func (s *syncService) DeprovisionAccount(ctx context.Context, remoteID int64, login, secretEnc string) error {
	const op = "deprovision"
	start := time.Now()

	password, err := s.codec.Decrypt(secretEnc)
	if err != nil {
		return s.fail(op, domain.SyncCredentialCorrupt, err, start)
	}

	if err := s.remote.DeleteAccount(ctx, remoteID, login, password); err != nil {
		return s.classifyRemote(op, err, start)
	}

	s.done(op, start)
	return nil
}

// ChangeLogin updates the remote account's login/email to match a local
// email change. The caller updates the local column only after success.
func (s *syncService) ChangeLogin(ctx context.Context, remoteID int64, login, secretEnc, newEmail string) error {
	const op = "change_login"
	start := time.Now()

	password, err := s.codec.Decrypt(secretEnc)
	if err != nil {
		return s.fail(op, domain.SyncCredentialCorrupt, err, start)
	}

	if err := s.remote.UpdateEmail(ctx, remoteID, login, password, newEmail); err != nil {
		return s.classifyRemote(op, err, start)
	}

	s.done(op, start)
	return nil
}

// OpenDialog creates a private dialog with the peer account. Pure
// pass-through: no local commit step.
func (s *syncService) OpenDialog(ctx context.Context, login, secretEnc string, peerRemoteID int64) (string, error) {
	const op = "open_dialog"
	start := time.Now()

	password, err := s.codec.Decrypt(secretEnc)
	if err != nil {
		return "", s.fail(op, domain.SyncCredentialCorrupt, err, start)
	}

	dialogID, err := s.remote.CreateDialog(ctx, login, password, peerRemoteID)
	if err != nil {
		return "", s.classifyRemote(op, err, start)
	}

	s.done(op, start)
	return dialogID, nil
}

// Push delivers a push notification. Pure pass-through.
func (s *syncService) Push(ctx context.Context, login, secretEnc string, targetIDs []int64, title, content string) error {
	const op = "push"
	start := time.Now()

	password, err := s.codec.Decrypt(secretEnc)
	if err != nil {
		return s.fail(op, domain.SyncCredentialCorrupt, err, start)
	}

	if err := s.remote.SendPush(ctx, login, password, targetIDs, title, content); err != nil {
		return s.classifyRemote(op, err, start)
	}

	s.done(op, start)
	return nil
}

// FlagOrphan records a remote account whose local commit failed in the
// reconciliation outbox.
func (s *syncService) FlagOrphan(ctx context.Context, remoteID int64, login, secretEnc string) error {
	orphan := &domain.OrphanedAccount{
		RemoteID:  remoteID,
		Login:     login,
		SecretEnc: secretEnc,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.outbox.Enqueue(ctx, orphan); err != nil {
		return err
	}
	metrics.OrphansFlaggedTotal.Inc()
	s.log.Warn().Int64("remote_id", remoteID).Str("login", login).Msg("orphaned remote account flagged for cleanup")
	return nil
}

// classifyRemote translates a gateway error into a *domain.SyncError.
func (s *syncService) classifyRemote(op string, err error, start time.Time) error {
	kind := domain.SyncRemoteRejected
	switch {
	case errors.Is(err, domain.ErrRemoteUnavailable):
		kind = domain.SyncRemoteUnavailable
	case errors.Is(err, domain.ErrRemoteAuth):
		kind = domain.SyncRemoteAuth
	}
	return s.fail(op, kind, err, start)
}

func (s *syncService) fail(op string, kind domain.SyncErrorKind, err error, start time.Time) error {
	metrics.RemoteCallsTotal.WithLabelValues(op, string(kind)).Inc()
	metrics.RemoteCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.log.Error().Err(err).Str("op", op).Str("kind", string(kind)).Msg("sync operation failed")
	return &domain.SyncError{Kind: kind, Op: op, Err: err}
}

func (s *syncService) done(op string, start time.Time) {
	metrics.RemoteCallsTotal.WithLabelValues(op, "ok").Inc()
	metrics.RemoteCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
