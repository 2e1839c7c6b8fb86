package repository

import (
	"context"
	"time"

	"cv-builder/internal/domain/session"
	"cv-builder/internal/pkg/logger"

	"github.com/google/uuid"
)

// JSONCache is the subset of the Redis cache the decorators rely on.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedSessionRepository fronts a session store with a read-through cache.
// Writes go to the store first and then bump a per-session version key. A
// cached copy is only served while its version matches the current one, so a
// fill that raced a revoke or rotation can never be read back.
type CachedSessionRepository struct {
	next   session.Repository
	cache  JSONCache
	ttl    time.Duration
	logger *logger.Logger
}

func NewCachedSessionRepository(next session.Repository, cache JSONCache, ttl time.Duration, log *logger.Logger) *CachedSessionRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CachedSessionRepository{next: next, cache: cache, ttl: ttl, logger: log.Named("session-cache")}
}

func sessionCacheKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func sessionVersionKey(id uuid.UUID) string {
	return "session:ver:" + id.String()
}

type cachedSession struct {
	Version string          `json:"version"`
	Session session.Session `json:"session"`
}

func (r *CachedSessionRepository) Create(ctx context.Context, s session.Session) error {
	return r.next.Create(ctx, s)
}

func (r *CachedSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (session.Session, error) {
	// The version is read before the store so a write landing in between
	// leaves the fill tagged with a version that is already superseded.
	ver, verOK := r.version(ctx, id)
	if verOK {
		var hit cachedSession
		if ok, err := r.cache.GetJSON(ctx, sessionCacheKey(id), &hit); err == nil && ok && hit.Version == ver {
			return hit.Session, nil
		}
	}

	s, err := r.next.GetByID(ctx, id)
	if err != nil {
		return session.Session{}, err
	}
	if !verOK || s.IsRevoked() {
		return s, nil
	}

	ttl := r.ttl
	if left := time.Until(s.ExpiresAt); left < ttl {
		ttl = left
	}
	if ttl > 0 {
		if err := r.cache.SetJSON(ctx, sessionCacheKey(id), cachedSession{Version: ver, Session: s}, ttl); err != nil {
			r.logger.Debug("session cache set failed", "session_id", id, "error", err)
		}
	}
	return s, nil
}

// version returns the current version of id. A missing key is the empty
// version; ok is false when the cache cannot be read.
func (r *CachedSessionRepository) version(ctx context.Context, id uuid.UUID) (string, bool) {
	var v string
	found, err := r.cache.GetJSON(ctx, sessionVersionKey(id), &v)
	if err != nil {
		return "", false
	}
	if !found {
		return "", true
	}
	return v, true
}

func (r *CachedSessionRepository) RotateRefreshHash(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	err := r.next.RotateRefreshHash(ctx, id, oldHash, newHash, expiresAt)
	r.invalidate(ctx, id)
	return err
}

func (r *CachedSessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	err := r.next.Revoke(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *CachedSessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, keep uuid.UUID) ([]uuid.UUID, error) {
	ids, err := r.next.RevokeAllForUser(ctx, userID, keep)
	for _, id := range ids {
		r.invalidate(ctx, id)
	}
	return ids, err
}

func (r *CachedSessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.next.Touch(ctx, id, at)
}

// invalidate must run after the store write.
func (r *CachedSessionRepository) invalidate(ctx context.Context, id uuid.UUID) {
	// The version key outlives any entry filled against the old version.
	if err := r.cache.SetJSON(ctx, sessionVersionKey(id), uuid.NewString(), 2*r.ttl); err != nil {
		r.logger.Warn("session cache version bump failed", "session_id", id, "error", err)
	}
	if err := r.cache.Delete(ctx, sessionCacheKey(id)); err != nil {
		r.logger.Warn("session cache eviction failed", "session_id", id, "error", err)
	}
}
