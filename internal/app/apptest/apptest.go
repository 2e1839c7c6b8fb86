// Package apptest builds a fully wired app over the in-memory store for
// HTTP tests.
package apptest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"cv-builder/internal/app"
	"cv-builder/internal/config"
	"cv-builder/internal/infrastructure/mailer"
	"cv-builder/internal/pkg/logger"
	"cv-builder/internal/repository/memory"
)

// Config is a test configuration: memory backends, no Redis, a generous
// auth rate limit.
func Config() config.Config {
	return config.Config{
		App: config.AppConfig{
			AppName:     "cv-builder-test",
			Environment: config.EnvTest,
			HTTPPort:    "0",
			FrontendURL: "http://frontend.test",
		},
		Database: config.DatabaseConfig{Driver: app.DriverMemory},
		JWT: config.JWTConfig{
			AccessSecret:     "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessExpiresIn:  15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
		Storage:   config.StorageConfig{Backend: "memory"},
		MQ:        config.MQConfig{Backend: "memory"},
		Mail:      config.MailConfig{Provider: "log"},
		PDF:       config.PDFConfig{RenderTimeout: 5 * time.Second, MaxTabs: 1, ExportWorkers: 1},
		RateLimit: config.RateLimitConfig{AuthPerMinute: 600, AuthBurst: 100},
		Log:       config.LogConfig{Level: "error", Format: "console"},
	}
}

// Renderer returns a fixed PDF body.
type Renderer struct {
	mu    sync.Mutex
	Calls int
}

func (r *Renderer) Render(context.Context, []byte) ([]byte, error) {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()
	return []byte("%PDF-1.4 test"), nil
}

// Mailer records every message.
type Mailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *Mailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *Mailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

type Harness struct {
	App      *app.App
	Store    *memory.Store
	Renderer *Renderer
	Mailer   *Mailer
}

// New builds and starts an app; it is shut down when the test ends.
func New(t testing.TB, cfg config.Config) *Harness {
	t.Helper()
	h := &Harness{Store: memory.NewStore(), Renderer: &Renderer{}, Mailer: &Mailer{}}

	a, err := app.New(context.Background(), cfg,
		app.WithStore(h.Store),
		app.WithRenderer(h.Renderer),
		app.WithMailer(h.Mailer),
		app.WithLogger(logger.Nop()),
	)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	a.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
	})
	h.App = a
	return h
}

// Envelope is the decoded response body.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
	Stack   string          `json:"stack"`
}

// Do sends a JSON request through fiber's in-process test transport.
func (h *Harness) Do(t testing.TB, method, path, token string, body any) (int, Envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := h.App.Fiber.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env Envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && resp.Header.Get(fiber.HeaderContentType) != "application/pdf" {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, env
}

// Decode unmarshals the envelope data into out.
func Decode(t testing.TB, env Envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

// Handler exposes the app as a net/http handler for httptest servers.
func (h *Harness) Handler() http.Handler {
	return adaptor.FiberApp(h.App.Fiber)
}

// Raw sends a bodiless request and returns the response with its body read.
func (h *Harness) Raw(t testing.TB, method, path, token string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := h.App.Fiber.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

// Register signs up a user and returns its access and refresh tokens.
func (h *Harness) Register(t testing.TB, email string) (access, refresh string) {
	t.Helper()
	status, env := h.Do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      email,
		"password":   "Passw0rd!",
		"first_name": "Test",
		"last_name":  "User",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status=%d message=%q errors=%v", email, status, env.Message, env.Errors)
	}
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	Decode(t, env, &out)
	return out.AccessToken, out.RefreshToken
}
