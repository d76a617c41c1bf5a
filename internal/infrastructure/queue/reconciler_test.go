package queue

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchpoint/chat-backend/internal/core/domain"
	"github.com/matchpoint/chat-backend/internal/core/ports"
)

type fakeOutbox struct {
	entries  map[string]*domain.OrphanedAccount
	nextID   int
	resolved []string
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{entries: make(map[string]*domain.OrphanedAccount)}
}

func (o *fakeOutbox) Enqueue(_ context.Context, orphan *domain.OrphanedAccount) error {
	o.nextID++
	id := "o" + strconv.Itoa(o.nextID)
	copy := *orphan
	copy.ID = id
	o.entries[id] = &copy
	return nil
}

func (o *fakeOutbox) Pending(_ context.Context, maxAttempts, limit int) ([]domain.OrphanedAccount, error) {
	var out []domain.OrphanedAccount
	for _, e := range o.entries {
		if e.Attempts < maxAttempts && len(out) < limit {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (o *fakeOutbox) RecordAttempt(_ context.Context, id string) error {
	if e, ok := o.entries[id]; ok {
		e.Attempts++
	}
	return nil
}

func (o *fakeOutbox) MarkResolved(_ context.Context, id string) error {
	delete(o.entries, id)
	o.resolved = append(o.resolved, id)
	return nil
}

type fakeSync struct {
	deprovisioned []int64
	err           error
}

func (s *fakeSync) ProvisionAccount(context.Context, string, string, string) (*ports.ProvisionedAccount, error) {
	return nil, errors.New("not used")
}

func (s *fakeSync) DeprovisionAccount(_ context.Context, remoteID int64, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.deprovisioned = append(s.deprovisioned, remoteID)
	return nil
}

func (s *fakeSync) ChangeLogin(context.Context, int64, string, string, string) error { return nil }
func (s *fakeSync) OpenDialog(context.Context, string, string, int64) (string, error) {
	return "", nil
}
func (s *fakeSync) Push(context.Context, string, string, []int64, string, string) error { return nil }
func (s *fakeSync) FlagOrphan(context.Context, int64, string, string) error             { return nil }

func seedOrphan(t *testing.T, outbox *fakeOutbox, remoteID int64) {
	t.Helper()
	err := outbox.Enqueue(context.Background(), &domain.OrphanedAccount{
		RemoteID:  remoteID,
		Login:     "a@x.com",
		SecretEnc: "enc",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed orphan: %v", err)
	}
}

func TestReconciler_ResolvesOrphans(t *testing.T) {
	outbox := newFakeOutbox()
	sync := &fakeSync{}
	seedOrphan(t, outbox, 42)
	seedOrphan(t, outbox, 43)

	r := NewReconciler(outbox, sync, time.Minute, zerolog.Nop())
	r.runOnce(context.Background())

	if len(sync.deprovisioned) != 2 {
		t.Fatalf("expected 2 remote deletions, got %d", len(sync.deprovisioned))
	}
	if len(outbox.entries) != 0 {
		t.Fatalf("expected empty outbox, got %d entries", len(outbox.entries))
	}
}

func TestReconciler_KeepsEntryOnFailure(t *testing.T) {
	outbox := newFakeOutbox()
	sync := &fakeSync{err: domain.ErrRemoteUnavailable}
	seedOrphan(t, outbox, 42)

	r := NewReconciler(outbox, sync, time.Minute, zerolog.Nop())
	r.runOnce(context.Background())

	if len(outbox.entries) != 1 {
		t.Fatalf("entry must survive a failed cleanup")
	}
	for _, e := range outbox.entries {
		if e.Attempts != 1 {
			t.Fatalf("expected 1 recorded attempt, got %d", e.Attempts)
		}
	}
}

func TestReconciler_GivesUpAfterMaxAttempts(t *testing.T) {
	outbox := newFakeOutbox()
	sync := &fakeSync{err: domain.ErrRemoteUnavailable}
	seedOrphan(t, outbox, 42)

	r := NewReconciler(outbox, sync, time.Minute, zerolog.Nop())
	for i := 0; i < r.maxAttempts+2; i++ {
		r.runOnce(context.Background())
	}

	for _, e := range outbox.entries {
		if e.Attempts != r.maxAttempts {
			t.Fatalf("expected attempts capped at %d, got %d", r.maxAttempts, e.Attempts)
		}
	}
}
