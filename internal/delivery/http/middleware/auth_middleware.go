package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"cv-builder/internal/domain/session"
	"cv-builder/internal/domain/user"
	"cv-builder/internal/pkg/logger"
	"cv-builder/internal/usecase/auth"
)

const (
	CtxUserIDKey  = "user_id"
	CtxUserKey    = "user"
	CtxSessionKey = "session"
)

const touchTimeout = 5 * time.Second

// Authenticator resolves bearer tokens. *auth.Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (auth.Principal, error)
	Touch(ctx context.Context, sessionID uuid.UUID) error
}

type AuthMiddleware struct {
	auth Authenticator
	log  *logger.Logger
}

func NewAuthMiddleware(a Authenticator, log *logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthMiddleware{auth: a, log: log.Named("auth")}
}

// Middleware rejects the request with a 401 unless it carries a valid access
// token for a live session of an active user.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		header := strings.TrimSpace(c.Get("Authorization"))
		if header == "" {
			return NewAppError(fiber.StatusUnauthorized, "Access token required", nil, auth.ErrMissingToken)
		}
		token, ok := bearerTokenFromHeader(header)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Malformed authorization header", nil, auth.ErrTokenMalformed)
		}

		principal, err := m.auth.Authenticate(c.Context(), token)
		if err != nil {
			return authError(err)
		}

		m.attach(c, principal)
		m.touch(principal.Session.ID)
		return c.Next()
	}
}

// Optional attaches the principal when the token is valid and otherwise
// lets the request through anonymously.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return c.Next()
		}
		principal, err := m.auth.Authenticate(c.Context(), token)
		if err != nil {
			m.log.Debug("optional auth ignored", "error", err)
			return c.Next()
		}
		m.attach(c, principal)
		m.touch(principal.Session.ID)
		return c.Next()
	}
}

func (m *AuthMiddleware) attach(c fiber.Ctx, p auth.Principal) {
	c.Locals(CtxUserIDKey, p.User.ID)
	c.Locals(CtxUserKey, p.User)
	c.Locals(CtxSessionKey, p.Session)
	c.SetContext(logger.WithUserID(c.Context(), p.User.ID.String()))
}

// touch records activity off the request path. Errors are only logged.
func (m *AuthMiddleware) touch(sessionID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		if err := m.auth.Touch(ctx, sessionID); err != nil {
			m.log.Warn("session touch failed", "session_id", sessionID, "error", err)
		}
	}()
}

func authError(err error) error {
	msg := "Invalid token"
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		msg = "Access token required"
	case errors.Is(err, auth.ErrTokenMalformed):
		msg = "Malformed token"
	case errors.Is(err, auth.ErrTokenExpired):
		msg = "Token expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		msg = "Invalid token signature"
	case errors.Is(err, auth.ErrTokenInvalid):
		msg = "Invalid token"
	case errors.Is(err, auth.ErrSessionNotFound):
		msg = "Session not found"
	case errors.Is(err, auth.ErrSessionRevoked):
		msg = "Session has been revoked"
	case errors.Is(err, auth.ErrSessionExpired):
		msg = "Session expired"
	case errors.Is(err, auth.ErrUserNotFound):
		msg = "User not found"
	case errors.Is(err, auth.ErrUserInactive):
		msg = "Account is deactivated"
	default:
		// Storage failures are not an auth answer.
		return err
	}
	return NewAppError(fiber.StatusUnauthorized, msg, nil, err)
}

// UserID returns the authenticated user's id.
func UserID(c fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func CurrentUser(c fiber.Ctx) (user.User, bool) {
	u, ok := c.Locals(CtxUserKey).(user.User)
	return u, ok
}

func CurrentSession(c fiber.Ctx) (session.Session, bool) {
	s, ok := c.Locals(CtxSessionKey).(session.Session)
	return s, ok
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
