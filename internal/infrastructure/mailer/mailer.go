// Package mailer delivers account emails (verification and password reset).
package mailer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/resend/resend-go/v2"

	"cv-builder/internal/config"
	"cv-builder/internal/pkg/logger"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the provider named in cfg. Anything but "resend" logs instead of
// sending.
func New(cfg config.MailConfig, log *logger.Logger) Mailer {
	if cfg.Provider == "resend" && cfg.APIKey != "" {
		return NewResend(cfg.APIKey, cfg.Sender, log)
	}
	return NewLog(log)
}

// Resend sends through the Resend HTTP API.
type Resend struct {
	client *resend.Client
	sender string
	log    *logger.Logger
}

func NewResend(apiKey, sender string, log *logger.Logger) *Resend {
	return &Resend{client: resend.NewClient(apiKey), sender: sender, log: log}
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    r.sender,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}
	resp, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	r.log.Debug("email sent", "id", resp.Id, "subject", msg.Subject)
	return nil
}

// Log writes emails to the application log and keeps the last few in memory
// so tests and local runs can read the links they contain.
type Log struct {
	log *logger.Logger

	mu   sync.Mutex
	sent []Message
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Send(_ context.Context, msg Message) error {
	l.mu.Lock()
	l.sent = append(l.sent, msg)
	if len(l.sent) > 50 {
		l.sent = l.sent[len(l.sent)-50:]
	}
	l.mu.Unlock()

	l.log.Info("email (log provider)", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}

// Sent returns the retained messages, oldest first.
func (l *Log) Sent() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.sent))
	copy(out, l.sent)
	return out
}

// Last returns the most recent message sent to the address.
func (l *Log) Last(to string) (Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.sent) - 1; i >= 0; i-- {
		if strings.EqualFold(l.sent[i].To, to) {
			return l.sent[i], true
		}
	}
	return Message{}, false
}
