package draftstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newRepository(t *testing.T, ttl time.Duration) (*DraftRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDraftRepository(client, ttl, nopLogger{}), mr
}

func draftAt(id uuid.UUID, code string, savedAt time.Time) *domain.Draft {
	return &domain.Draft{SessionID: id, Code: code, ElapsedSeconds: 42, SavedAt: savedAt}
}

func dirtyIDs(t *testing.T, repo *DraftRepository) []uuid.UUID {
	t.Helper()
	ids, err := repo.Dirty(context.Background())
	if err != nil {
		t.Fatalf("Dirty returned error: %v", err)
	}
	return ids
}

func TestPutStoresDraftWithTTLAndMarksDirty(t *testing.T) {
	t.Parallel()

	repo, mr := newRepository(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()
	saved := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := repo.Put(ctx, draftAt(id, "print(1)", saved)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if ttl := mr.TTL(draftKey(id)); ttl != time.Hour {
		t.Fatalf("expected draft ttl 1h, got %v", ttl)
	}
	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil || got.Code != "print(1)" || got.ElapsedSeconds != 42 || !got.SavedAt.Equal(saved) {
		t.Fatalf("unexpected draft: %+v", got)
	}
	if ids := dirtyIDs(t, repo); len(ids) != 1 || ids[0] != id {
		t.Fatalf("expected %s to be dirty, got %v", id, ids)
	}
}

func TestGetMissingDraftReturnsNil(t *testing.T) {
	t.Parallel()

	repo, _ := newRepository(t, 0)
	got, err := repo.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil draft, got %+v", got)
	}
}

func TestMarkFlushedKeepsNewerDraftDirty(t *testing.T) {
	t.Parallel()

	repo, _ := newRepository(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()
	first := draftAt(id, "v1", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	second := draftAt(id, "v2", first.SavedAt.Add(time.Second))

	if err := repo.Put(ctx, first); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	// the flusher read v1, then the editor saved v2 before the flush finished
	if err := repo.Put(ctx, second); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := repo.MarkFlushed(ctx, first); err != nil {
		t.Fatalf("MarkFlushed returned error: %v", err)
	}
	if ids := dirtyIDs(t, repo); len(ids) != 1 || ids[0] != id {
		t.Fatalf("expected newer draft to stay dirty, got %v", ids)
	}

	if err := repo.MarkFlushed(ctx, second); err != nil {
		t.Fatalf("MarkFlushed returned error: %v", err)
	}
	if ids := dirtyIDs(t, repo); len(ids) != 0 {
		t.Fatalf("expected no dirty drafts, got %v", ids)
	}
	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil || got.Code != "v2" {
		t.Fatalf("expected flushed draft to remain readable, got %+v", got)
	}
}

func TestMarkFlushedWithoutDirtyEntryIsNoop(t *testing.T) {
	t.Parallel()

	repo, _ := newRepository(t, time.Hour)
	draft := draftAt(uuid.New(), "v1", time.Now())
	if err := repo.MarkFlushed(context.Background(), draft); err != nil {
		t.Fatalf("MarkFlushed returned error: %v", err)
	}
}

func TestDirtyDropsInvalidMembers(t *testing.T) {
	t.Parallel()

	repo, mr := newRepository(t, time.Hour)
	id := uuid.New()
	if err := repo.Put(context.Background(), draftAt(id, "v1", time.Now())); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if _, err := mr.ZAdd(dirtySetKey, 1, "not-a-uuid"); err != nil {
		t.Fatalf("ZAdd returned error: %v", err)
	}

	if ids := dirtyIDs(t, repo); len(ids) != 1 || ids[0] != id {
		t.Fatalf("expected only %s, got %v", id, ids)
	}
	if members, _ := mr.SortedSet(dirtySetKey); len(members) != 1 {
		t.Fatalf("expected invalid member to be removed, set is %v", members)
	}
}

func TestDeleteRemovesDraftAndDirtyFlag(t *testing.T) {
	t.Parallel()

	repo, mr := newRepository(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()
	if err := repo.Put(ctx, draftAt(id, "v1", time.Now())); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if mr.Exists(draftKey(id)) {
		t.Fatalf("expected draft key to be deleted")
	}
	if ids := dirtyIDs(t, repo); len(ids) != 0 {
		t.Fatalf("expected no dirty drafts, got %v", ids)
	}
}
