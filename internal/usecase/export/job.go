package export

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Channel is the queue export jobs are published on.
const Channel = "pdf.exports"

var (
	ErrJobNotFound = errors.New("export not found")
	ErrJobNotReady = errors.New("export is not ready")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is the tracked state of one asynchronous export.
type Job struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	UserID    uuid.UUID `json:"user_id"`
	Status    Status    `json:"status"`
	Filename  string    `json:"filename,omitempty"`
	ObjectKey string    `json:"object_key,omitempty"`
	Size      int       `json:"size,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusStore persists job state between the API and the workers.
type StatusStore interface {
	Get(ctx context.Context, id uuid.UUID) (Job, error)
	Put(ctx context.Context, job Job) error
}

// JSONCache is the part of the Redis cache the status store needs.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CacheStatusStore keeps jobs in Redis for ttl.
type CacheStatusStore struct {
	cache JSONCache
	ttl   time.Duration
}

func NewCacheStatusStore(cache JSONCache, ttl time.Duration) *CacheStatusStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CacheStatusStore{cache: cache, ttl: ttl}
}

func jobKey(id uuid.UUID) string {
	return "export:" + id.String()
}

func (s *CacheStatusStore) Get(ctx context.Context, id uuid.UUID) (Job, error) {
	var j Job
	ok, err := s.cache.GetJSON(ctx, jobKey(id), &j)
	if err != nil {
		return Job{}, err
	}
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return j, nil
}

func (s *CacheStatusStore) Put(ctx context.Context, job Job) error {
	return s.cache.SetJSON(ctx, jobKey(job.ID), job, s.ttl)
}

// MemoryStatusStore is used when Redis is not configured.
type MemoryStatusStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]Job
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{jobs: make(map[uuid.UUID]Job)}
}

func (s *MemoryStatusStore) Get(_ context.Context, id uuid.UUID) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return j, nil
}

func (s *MemoryStatusStore) Put(_ context.Context, job Job) error {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return nil
}
