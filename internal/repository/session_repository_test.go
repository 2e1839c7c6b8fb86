package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"cv-builder/internal/domain/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestPostgresSessionRepository_RotateRefreshHash_Mismatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepository(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions`)).
		WithArgs(id, "old", "new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RotateRefreshHash(context.Background(), id, "old", "new", time.Now().Add(time.Hour))
	if !errors.Is(err, session.ErrRefreshMismatch) {
		t.Fatalf("expected ErrRefreshMismatch, got %v", err)
	}
}

func TestPostgresSessionRepository_RevokeAllForUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepository(db)
	userID, keep := uuid.New(), uuid.New()
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE sessions SET revoked_at = NOW()`)).
		WithArgs(userID, keep).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a.String()).AddRow(b.String()))

	ids, err := repo.RevokeAllForUser(context.Background(), userID, keep)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestPostgresSessionRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type fakeJSONCache struct {
	data    map[string][]byte
	deleted []string
}

func newFakeJSONCache() *fakeJSONCache {
	return &fakeJSONCache{data: map[string][]byte{}}
}

func (c *fakeJSONCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *fakeJSONCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *fakeJSONCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func TestCachedSessionRepository_ReadThroughAndEvict(t *testing.T) {
	db, mock := newMockDB(t)
	cache := newFakeJSONCache()
	repo := NewCachedSessionRepository(NewPostgresSessionRepository(db), cache, time.Minute, nil)

	id, userID := uuid.New(), uuid.New()
	now := time.Now()
	cols := []string{"id", "user_id", "refresh_token_hash", "user_agent", "ip_address", "expires_at", "revoked_at", "last_activity_at", "created_at"}

	// Only the first read reaches the database.
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(id.String(), userID.String(), "h", "ua", "127.0.0.1", now.Add(time.Hour), nil, now, now))

	for i := 0; i < 2; i++ {
		s, err := repo.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if s.UserID != userID {
			t.Fatalf("unexpected session: %+v", s)
		}
	}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET revoked_at = NOW() WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Revoke(context.Background(), id); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := cache.data[sessionCacheKey(id)]; ok {
		t.Fatalf("expected cache entry to be evicted")
	}
}

// racingSessionStore runs beforeReturn after it has read the row, which lets a
// test revoke the session while a cache fill is in flight.
type racingSessionStore struct {
	session.Repository
	s            session.Session
	reads        int
	beforeReturn func()
}

func (r *racingSessionStore) GetByID(_ context.Context, id uuid.UUID) (session.Session, error) {
	r.reads++
	if id != r.s.ID {
		return session.Session{}, session.ErrNotFound
	}
	read := r.s
	if hook := r.beforeReturn; hook != nil {
		r.beforeReturn = nil
		hook()
	}
	return read, nil
}

func (r *racingSessionStore) Revoke(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	r.s.RevokedAt = &now
	return nil
}

func TestCachedSessionRepository_RevokeDuringFillIsNotServedStale(t *testing.T) {
	ctx := context.Background()
	store := &racingSessionStore{s: session.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	cache := newFakeJSONCache()
	repo := NewCachedSessionRepository(store, cache, time.Minute, nil)

	store.beforeReturn = func() {
		if err := repo.Revoke(ctx, store.s.ID); err != nil {
			t.Fatalf("revoke err: %v", err)
		}
	}

	first, err := repo.GetByID(ctx, store.s.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if first.IsRevoked() {
		t.Fatalf("first read should carry the pre-revoke row")
	}

	second, err := repo.GetByID(ctx, store.s.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !second.IsRevoked() {
		t.Fatalf("revoked session returned as live from cache")
	}
	if store.reads != 2 {
		t.Fatalf("expected the second read to reach the store, got %d reads", store.reads)
	}

	// Revoked sessions are never cached.
	if _, err := repo.GetByID(ctx, store.s.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.reads != 3 {
		t.Fatalf("expected revoked session to bypass the cache, got %d reads", store.reads)
	}
}
