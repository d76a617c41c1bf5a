package ports

import (
	"context"

	"github.com/matchpoint/chat-backend/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByRemoteID(ctx context.Context, remoteID int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateEmail(ctx context.Context, id, newEmail string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.User, error)
}
