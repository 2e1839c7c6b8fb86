package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"cv-builder/internal/pkg/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestIDKey = "request_id"
)

type AccessLogMiddleware struct {
	logger *logger.Logger
}

func NewAccessLogMiddleware(log *logger.Logger) *AccessLogMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AccessLogMiddleware{logger: log.Named("access")}
}

// Middleware assigns a request id, attaches a request-scoped logger to the
// context and writes one line per request.
func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.Locals(CtxRequestIDKey, rid)
		c.SetContext(logger.WithContext(c.Context(), m.logger.With("request_id", rid)))

		err := c.Next()

		status := c.Response().StatusCode()
		fields := []any{
			"request_id", rid,
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", status,
			"latency", time.Since(start),
			"req_bytes", c.Request().Header.ContentLength(),
			"resp_bytes", len(c.Response().Body()),
			"ua", c.Get("User-Agent"),
		}
		if uid, ok := UserID(c); ok {
			fields = append(fields, "user_id", uid)
		}

		switch {
		case status >= 500:
			m.logger.Error("http request", fields...)
		case status >= 400:
			m.logger.Warn("http request", fields...)
		default:
			m.logger.Info("http request", fields...)
		}
		return err
	}
}
