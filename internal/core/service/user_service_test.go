package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/matchpoint/chat-backend/internal/core/domain"
	"github.com/matchpoint/chat-backend/internal/core/ports"
	"github.com/matchpoint/chat-backend/internal/infrastructure/secretbox"
)

// stubUserRepo is an in-memory UserRepository. createErr lets tests
// simulate a local commit failure after a successful remote create;
// findErr injects a lookup failure, scoped to findErrOn when set.
type stubUserRepo struct {
	users     map[string]*domain.User
	nextID    int
	createErr error
	findErr   error
	findErrOn string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.RemoteID != nil {
		id := *u.RemoteID
		clone.RemoteID = &id
	}
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil && (r.findErrOn == "" || r.findErrOn == email) {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByRemoteID(_ context.Context, remoteID int64) (*domain.User, error) {
	for _, u := range r.users {
		if u.RemoteID != nil && *u.RemoteID == remoteID {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = "u" + strconv.Itoa(r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) UpdateEmail(_ context.Context, id, newEmail string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Email = newEmail
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *cloneUser(u))
	}
	return out, nil
}

// newUserFixture wires a UserService against the real orchestrator and
// codec, with the remote platform and storage stubbed.
func newUserFixture(t *testing.T) (*UserService, *stubUserRepo, *mockRemote, *stubOutbox, *secretbox.Codec) {
	t.Helper()
	repo := newStubUserRepo()
	remote := newMockRemote()
	outbox := &stubOutbox{}
	codec := testCodec(t)
	sync := NewSyncService(remote, codec, outbox, zerolog.Nop())
	svc := NewUserService(repo, sync, "jwt-secret", time.Hour, zerolog.Nop())
	return svc, repo, remote, outbox, codec
}

func TestUserService_Register_Success(t *testing.T) {
	svc, repo, _, _, codec := newUserFixture(t)

	user, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	stored, err := repo.FindByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if !stored.Linked() {
		t.Fatalf("registered user must carry both remote_id and remote_secret_enc")
	}
	if *stored.RemoteID != 42 {
		t.Fatalf("expected remote id 42, got %d", *stored.RemoteID)
	}
	plain, err := codec.Decrypt(stored.RemoteSecretEnc)
	if err != nil || plain != "pw" {
		t.Fatalf("stored secret does not decrypt to the password: %q, %v", plain, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw")) != nil {
		t.Fatalf("stored hash does not match password")
	}
	if user.APIKey == "" {
		t.Fatalf("expected an opaque api key")
	}
}

func TestUserService_Register_RemoteFailure_NoLocalRow(t *testing.T) {
	svc, repo, remote, _, _ := newUserFixture(t)
	remote.signupErr = domain.ErrRemoteRejected

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, err := repo.FindByEmail(context.Background(), "a@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("no local row may exist after a failed registration")
	}
}

func TestUserService_Register_LocalCommitFailure_FlagsOrphan(t *testing.T) {
	svc, repo, _, outbox, _ := newUserFixture(t)
	repo.createErr = errors.New("insert failed")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(outbox.entries) != 1 {
		t.Fatalf("expected one orphan flagged, got %d", len(outbox.entries))
	}
	if outbox.entries[0].RemoteID != 42 || outbox.entries[0].Login != "a@x.com" {
		t.Fatalf("unexpected orphan entry: %+v", outbox.entries[0])
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc, _, remote, _, _ := newUserFixture(t)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	callsAfterFirst := remote.calls

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if remote.calls != callsAfterFirst {
		t.Fatalf("duplicate email must be rejected before any remote call")
	}
}

func TestUserService_Register_ConcurrentDuplicate_FlagsOrphan(t *testing.T) {
	// A racing registration for the same email can pass the pre-check and
	// lose the insert to the unique email index. The loser must surface
	// ErrUserExists and flag its already-created remote account for
	// cleanup.
	svc, repo, _, outbox, _ := newUserFixture(t)
	repo.createErr = domain.ErrUserExists

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(outbox.entries) != 1 {
		t.Fatalf("expected the losing remote account flagged, got %d entries", len(outbox.entries))
	}
	if outbox.entries[0].RemoteID != 42 || outbox.entries[0].Login != "a@x.com" {
		t.Fatalf("unexpected orphan entry: %+v", outbox.entries[0])
	}
}

func TestUserService_Register_StoreFailure_FailsFast(t *testing.T) {
	svc, repo, remote, _, _ := newUserFixture(t)
	repo.findErr = errors.New("store down")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if err == nil || errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected the store failure to surface, got %v", err)
	}
	if remote.calls != 0 {
		t.Fatalf("no remote account may be created when the availability check fails")
	}
}

func TestUserService_Register_TwiceDistinctRemoteIDs(t *testing.T) {
	// With the duplicate-email guard out of the way (two repos), the
	// permissive mock platform hands out two distinct remote accounts for
	// identical input — registration is not idempotent.
	remote := newMockRemote()
	codec := testCodec(t)
	sync := NewSyncService(remote, codec, &stubOutbox{}, zerolog.Nop())

	svc1 := NewUserService(newStubUserRepo(), sync, "s", time.Hour, zerolog.Nop())
	svc2 := NewUserService(newStubUserRepo(), sync, "s", time.Hour, zerolog.Nop())

	u1, err1 := svc1.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	u2, err2 := svc2.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if *u1.RemoteID == *u2.RemoteID {
		t.Fatalf("expected distinct remote ids, both %d", *u1.RemoteID)
	}
}

func TestUserService_Login(t *testing.T) {
	svc, _, _, _, _ := newUserFixture(t)
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Name: "C", Email: "c@x.com", Password: "s3cret"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "c@x.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user == nil || user.Email != "c@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("jwt-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["email"] != "c@x.com" {
		t.Fatalf("unexpected claims: %v", claims)
	}

	if _, _, err := svc.Login(context.Background(), "c@x.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "ghost@x.com", "pw"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_UpdateEmail_RemoteFirst(t *testing.T) {
	svc, repo, remote, _, _ := newUserFixture(t)
	u, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	remote.updateErr = domain.ErrRemoteRejected
	err = svc.UpdateEmail(context.Background(), u.ID, "a@x.com", "b@x.com")
	if got := syncKind(t, err); got != domain.SyncRemoteRejected {
		t.Fatalf("expected RemoteRejected, got %s", got)
	}

	// Local email untouched after remote failure.
	stored, _ := repo.FindByID(context.Background(), u.ID)
	if stored.Email != "a@x.com" {
		t.Fatalf("local email must stay unchanged, got %q", stored.Email)
	}

	remote.updateErr = nil
	if err := svc.UpdateEmail(context.Background(), u.ID, "a@x.com", "b@x.com"); err != nil {
		t.Fatalf("UpdateEmail returned error: %v", err)
	}
	stored, _ = repo.FindByID(context.Background(), u.ID)
	if stored.Email != "b@x.com" {
		t.Fatalf("expected local email b@x.com, got %q", stored.Email)
	}
	if remote.updated[*u.RemoteID] != "b@x.com" {
		t.Fatalf("remote login not updated: %v", remote.updated)
	}
}

func TestUserService_UpdateEmail_Validation(t *testing.T) {
	svc, _, _, _, _ := newUserFixture(t)
	a, _ := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	_, _ = svc.Register(context.Background(), ports.RegisterInput{Name: "B", Email: "b@x.com", Password: "pw"})

	if err := svc.UpdateEmail(context.Background(), a.ID, "ghost@x.com", "c@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.UpdateEmail(context.Background(), a.ID, "a@x.com", "b@x.com"); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_UpdateEmail_StoreFailureOnTakenCheck(t *testing.T) {
	svc, repo, remote, _, _ := newUserFixture(t)
	u, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	repo.findErr = errors.New("store down")
	repo.findErrOn = "b@x.com"

	err = svc.UpdateEmail(context.Background(), u.ID, "a@x.com", "b@x.com")
	if err == nil || errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected the store failure to surface, got %v", err)
	}
	if len(remote.updated) != 0 {
		t.Fatalf("remote login must not change when the taken-check fails")
	}
}

func TestUserService_Delete_RemoteFirst(t *testing.T) {
	svc, repo, remote, _, _ := newUserFixture(t)
	u, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	remote.deleteErr = domain.ErrRemoteUnavailable
	err = svc.DeleteUser(context.Background(), u.ID)
	if got := syncKind(t, err); got != domain.SyncRemoteUnavailable {
		t.Fatalf("expected RemoteUnavailableError, got %s", got)
	}
	if _, err := repo.FindByID(context.Background(), u.ID); err != nil {
		t.Fatalf("local row must survive a failed remote delete")
	}

	remote.deleteErr = nil
	if err := svc.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("local row must be gone after delete")
	}
	if len(remote.deleted) != 1 || remote.deleted[0] != *u.RemoteID {
		t.Fatalf("remote account not deleted: %v", remote.deleted)
	}
}

func TestUserService_Delete_CorruptSecret_RowUntouched(t *testing.T) {
	svc, repo, remote, _, _ := newUserFixture(t)
	u, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Corrupt the stored secret behind the service's back.
	repo.users[u.ID].RemoteSecretEnc = "corrupted"

	err = svc.DeleteUser(context.Background(), u.ID)
	if got := syncKind(t, err); got != domain.SyncCredentialCorrupt {
		t.Fatalf("expected CredentialDecodeError, got %s", got)
	}
	if _, err := repo.FindByID(context.Background(), u.ID); err != nil {
		t.Fatalf("local row must stay untouched on decode failure")
	}
	if len(remote.deleted) != 0 {
		t.Fatalf("remote must not be touched on decode failure")
	}
}
