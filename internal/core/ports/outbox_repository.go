package ports

import (
	"context"

	"github.com/matchpoint/chat-backend/internal/core/domain"
)

// OutboxRepository persists orphaned remote accounts awaiting cleanup.
type OutboxRepository interface {
	Enqueue(ctx context.Context, orphan *domain.OrphanedAccount) error
	Pending(ctx context.Context, maxAttempts, limit int) ([]domain.OrphanedAccount, error)
	RecordAttempt(ctx context.Context, id string) error
	MarkResolved(ctx context.Context, id string) error
}
