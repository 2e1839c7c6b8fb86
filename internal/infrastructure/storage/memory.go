package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory is an in-process ObjectStorage used when no object store is
// configured and in tests.
type Memory struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string][]byte
}

func NewMemory(bucket string) *Memory {
	return &Memory{bucket: bucket, objects: make(map[string][]byte)}
}

func (m *Memory) EnsureBucket(context.Context) error { return nil }

func (m *Memory) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = b
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	b, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Bucket() string { return m.bucket }
