package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/pkg/response"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
	now   func() time.Time
}

// NewHealthHandler takes the database and, optionally, Redis.
func NewHealthHandler(db Pinger, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, now: time.Now}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
}

// Health is 503 when the database is down. Redis is optional and only
// reported.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	db := "ok"
	if h.db == nil {
		db = "unconfigured"
	} else if err := h.db.Ping(ctx); err != nil {
		db = "down"
		status = fiber.StatusServiceUnavailable
	}

	redis := "disabled"
	if h.redis != nil {
		redis = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			redis = "down"
		}
	}

	if status != fiber.StatusOK {
		return response.Error(c, status, "Service unavailable", []string{"database " + db})
	}
	return response.Success(c, status, response.MessageOK, fiber.Map{
		"status":    "ok",
		"database":  db,
		"redis":     redis,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
