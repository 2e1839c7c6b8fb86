package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"cv-builder/internal/config"
)

const natsMsgIDHeader = "Nats-Msg-Id"

// NATSClient publishes on core NATS subjects and consumes them through a
// queue group, so each message reaches one worker. Core NATS has no acks; a
// failing handler is retried once in place.
type NATSClient struct {
	conn       *nats.Conn
	queueGroup string
}

func NewNATSClient(cfg config.NATSConfig) (*NATSClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("nats url is required")
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSClient{conn: conn, queueGroup: cfg.QueueGroup}, nil
}

func (n *NATSClient) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("nats subject is required")
	}
	id := newMessageID()
	msg := nats.NewMsg(channel)
	msg.Data = data
	msg.Header.Set(natsMsgIDHeader, id)
	for k, v := range attrs {
		msg.Header.Set(k, v)
	}
	if err := n.conn.PublishMsg(msg); err != nil {
		return "", fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return id, nil
}

func (n *NATSClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("nats subject is required")
	}

	sub, err := n.conn.QueueSubscribe(channel, n.queueGroup, func(m *nats.Msg) {
		message := Message{
			ID:         m.Header.Get(natsMsgIDHeader),
			Data:       m.Data,
			Attributes: natsHeaderToAttributes(m.Header),
		}
		if err := handler(ctx, message); err != nil {
			_ = handler(ctx, message)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to queue subscribe to %s: %w", channel, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	<-ctx.Done()
	return ctx.Err()
}

func (n *NATSClient) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}

func natsHeaderToAttributes(h nats.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(h))
	for k := range h {
		if k == natsMsgIDHeader {
			continue
		}
		attrs[k] = h.Get(k)
	}
	return attrs
}
