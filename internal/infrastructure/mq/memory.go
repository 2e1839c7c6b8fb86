package mq

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

// maxMemoryAttempts bounds redelivery of a message whose handler keeps failing.
const maxMemoryAttempts = 3

// ErrClosed is returned by a Memory backend after Close.
var ErrClosed = errors.New("mq: backend closed")

// Memory is an in-process broker. Each channel is a buffered queue shared by
// its subscribers, so a message is handled by exactly one of them.
type Memory struct {
	mu     sync.Mutex
	queues map[string]chan Message
	closed chan struct{}
	once   sync.Once
}

func NewMemory() *Memory {
	return &Memory{
		queues: make(map[string]chan Message),
		closed: make(chan struct{}),
	}
}

func (m *Memory) queue(channel string) chan Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[channel]
	if !ok {
		q = make(chan Message, 256)
		m.queues[channel] = q
	}
	return q
}

func (m *Memory) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	select {
	case <-m.closed:
		return "", ErrClosed
	default:
	}
	msg := Message{ID: newMessageID(), Data: data, Attributes: copyAttrs(attrs)}
	select {
	case <-m.closed:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	case m.queue(channel) <- msg:
		return msg.ID, nil
	}
}

func (m *Memory) Subscribe(ctx context.Context, channel string, handler Handler) error {
	q := m.queue(channel)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.closed:
			return ErrClosed
		case msg := <-q:
			if err := handler(ctx, msg); err != nil {
				m.redeliver(q, msg)
			}
		}
	}
}

func (m *Memory) redeliver(q chan Message, msg Message) {
	attempt, _ := strconv.Atoi(msg.Attributes["attempt"])
	attempt++
	if attempt >= maxMemoryAttempts {
		return
	}
	if msg.Attributes == nil {
		msg.Attributes = map[string]string{}
	}
	msg.Attributes["attempt"] = strconv.Itoa(attempt)
	select {
	case q <- msg:
	default:
	}
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func copyAttrs(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
