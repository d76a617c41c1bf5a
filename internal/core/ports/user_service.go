package ports

import (
	"context"

	"github.com/matchpoint/chat-backend/internal/core/domain"
)

// RegisterInput carries the plain registration data from the HTTP layer.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateEmail(ctx context.Context, id, currentEmail, newEmail string) error
	DeleteUser(ctx context.Context, id string) error
}
