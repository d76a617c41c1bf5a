package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/matchpoint/chat-backend/internal/api/metrics"
	"github.com/matchpoint/chat-backend/internal/core/ports"
)

// ReplayGuard abstracts the push replay-suppression store (Redis).
type ReplayGuard interface {
	IsDuplicate(ctx context.Context, senderRemoteID int64, targetIDs []int64, title, content string) (bool, error)
	Mark(ctx context.Context, senderRemoteID int64, targetIDs []int64, title, content string) error
}

// chatService relays dialog creation and push delivery through the sync
// orchestrator. Both operations are pass-through: they mutate no local
// state, so failures are reported without any rollback.
type chatService struct {
	repo  ports.UserRepository
	sync  ports.SyncService
	guard ReplayGuard
	log   zerolog.Logger
}

// NewChatService returns a ChatService implementation.
func NewChatService(repo ports.UserRepository, sync ports.SyncService, guard ReplayGuard, log zerolog.Logger) ports.ChatService {
	return &chatService{repo: repo, sync: sync, guard: guard, log: log}
}

// CreateDialog opens a private dialog between the caller and the peer,
// authenticated as the caller's remote account.
func (s *chatService) CreateDialog(ctx context.Context, callerRemoteID, peerRemoteID int64) (string, error) {
	caller, err := s.repo.FindByRemoteID(ctx, callerRemoteID)
	if err != nil {
		return "", err
	}

	dialogID, err := s.sync.OpenDialog(ctx, caller.Email, caller.RemoteSecretEnc, peerRemoteID)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("dialog_id", dialogID).Int64("caller", callerRemoteID).Int64("peer", peerRemoteID).Msg("dialog created")
	return dialogID, nil
}

// SendPush delivers a push notification to the targets. Exact duplicates
// within the guard's window are silently suppressed so client retries do
// not double-notify.
func (s *chatService) SendPush(ctx context.Context, senderRemoteID int64, targetIDs []int64, title, content string) error {
	sender, err := s.repo.FindByRemoteID(ctx, senderRemoteID)
	if err != nil {
		return err
	}

	isDup, err := s.guard.IsDuplicate(ctx, senderRemoteID, targetIDs, title, content)
	switch {
	case err != nil:
		metrics.PushDedupTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("push replay check failed, delivering anyway")
	case isDup:
		metrics.PushDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Int64("sender", senderRemoteID).Msg("duplicate push suppressed")
		return nil
	default:
		metrics.PushDedupTotal.WithLabelValues("miss").Inc()
	}

	if err := s.sync.Push(ctx, sender.Email, sender.RemoteSecretEnc, targetIDs, title, content); err != nil {
		return err
	}

	if err := s.guard.Mark(ctx, senderRemoteID, targetIDs, title, content); err != nil {
		s.log.Warn().Err(err).Msg("failed to set push replay key")
	}

	s.log.Info().Int64("sender", senderRemoteID).Ints64("targets", targetIDs).Msg("push delivered")
	return nil
}
