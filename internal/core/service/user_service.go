package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/matchpoint/chat-backend/internal/api/metrics"
	"github.com/matchpoint/chat-backend/internal/core/domain"
	"github.com/matchpoint/chat-backend/internal/core/ports"
)

// UserService implements the account lifecycle: registration, login,
// email change and deletion, each kept in lockstep with the remote
// messaging platform through the sync orchestrator.
type UserService struct {
	repo      ports.UserRepository
	sync      ports.SyncService
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewUserService(repo ports.UserRepository, sync ports.SyncService, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{repo: repo, sync: sync, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Register creates the local user together with its remote mirror. The
// remote account is provisioned first; the local insert then persists the
// remote id and the encrypted secondary credential in the same write as
// the rest of the record, so both either land or fail. When the insert
// fails after a successful remote create, the remote account is flagged
// for cleanup — automatic rollback of the remote side is not guaranteed.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	// Only a definitive "not found" clears the way: a store failure here
	// must not be read as availability, or the remote account created next
	// is guaranteed to orphan on the insert.
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	prov, err := s.sync.ProvisionAccount(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    string(hash),
		APIKey:          uuid.NewString(),
		RemoteID:        &prov.RemoteID,
		RemoteSecretEnc: prov.SecretEnc,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if ferr := s.sync.FlagOrphan(ctx, prov.RemoteID, in.Email, prov.SecretEnc); ferr != nil {
			s.log.Error().Err(ferr).Int64("remote_id", prov.RemoteID).Msg("failed to flag orphaned remote account")
		}
		return nil, err
	}

	metrics.UsersRegisteredTotal.Inc()
	s.log.Info().Str("user_id", created.ID).Int64("remote_id", prov.RemoteID).Msg("user registered")
	return created, nil
}

// Login authenticates against the locally-hashed password and issues an
// HS256 token. The remote platform is not involved.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ListUsers returns all users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

// UpdateEmail changes the user's email. The remote login is updated
// first; the local column is only written after remote success, otherwise
// the stores would diverge with the remote side unreachable afterward
// (its credential authenticates under the old email).
func (s *UserService) UpdateEmail(ctx context.Context, id, currentEmail, newEmail string) error {
	user, err := s.repo.FindByEmail(ctx, currentEmail)
	if err != nil {
		return err
	}

	if _, err := s.repo.FindByEmail(ctx, newEmail); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	if !user.Linked() {
		return domain.ErrUserNotLinked
	}

	if err := s.sync.ChangeLogin(ctx, *user.RemoteID, currentEmail, user.RemoteSecretEnc, newEmail); err != nil {
		return err
	}

	if err := s.repo.UpdateEmail(ctx, id, newEmail); err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Msg("email changed")
	return nil
}

// DeleteUser removes the remote account first, then the local row. Local
// deletion never precedes remote success.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Linked() {
		if err := s.sync.DeprovisionAccount(ctx, *user.RemoteID, user.Email, user.RemoteSecretEnc); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
