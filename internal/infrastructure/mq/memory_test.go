package mq

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_DeliversToSubscriber(t *testing.T) {
	q := New(NewMemory())
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan Message, 1)
	go func() {
		_ = q.Subscribe(ctx, "exports", func(_ context.Context, msg Message) error {
			got <- msg
			return nil
		})
	}()

	id, err := q.Publish(ctx, "exports", []byte(`{"id":"1"}`), map[string]string{"kind": "pdf"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	select {
	case msg := <-got:
		assert.Equal(t, id, msg.ID)
		assert.Equal(t, `{"id":"1"}`, string(msg.Data))
		assert.Equal(t, "pdf", msg.Attributes["kind"])
	case <-ctx.Done():
		t.Fatal("message was not delivered")
	}
}

func TestMemory_RedeliversFailedMessagesBounded(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var calls int32
	done := make(chan struct{})
	go func() {
		_ = m.Subscribe(ctx, "exports", func(context.Context, Message) error {
			if atomic.AddInt32(&calls, 1) == maxMemoryAttempts {
				close(done)
			}
			return errors.New("boom")
		})
	}()

	_, err := m.Publish(ctx, "exports", []byte("x"), nil)
	require.NoError(t, err)

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("expected redelivery")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(maxMemoryAttempts), atomic.LoadInt32(&calls))
}

func TestMemory_ClosedRejectsPublish(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err := m.Publish(context.Background(), "exports", nil, nil)
	assert.ErrorIs(t, err, ErrClosed)
}
