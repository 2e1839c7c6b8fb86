package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"cv-builder/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStorage(NewMemory("exports"))

	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.Put(ctx, "a/b.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf"))

	rc, err := s.Get(ctx, "a/b.pdf")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	_ = rc.Close()
	assert.Equal(t, "%PDF-1.4", string(b))

	require.NoError(t, s.Delete(ctx, "a/b.pdf"))
	_, err = s.Get(ctx, "a/b.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Equal(t, "exports", s.Bucket())
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.StorageConfig{Backend: "minio"})
	assert.Error(t, err)

	s, err := New(context.Background(), config.StorageConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Equal(t, "exports", s.Bucket())
}
