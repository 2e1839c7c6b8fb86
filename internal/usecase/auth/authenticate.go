package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"cv-builder/internal/domain/session"
	"cv-builder/internal/domain/user"
	"cv-builder/internal/pkg/jwt"
)

// Authentication failures. Each maps to its own 401 message.
var (
	ErrMissingToken     = errors.New("missing token")
	ErrTokenMalformed   = errors.New("malformed token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionRevoked   = errors.New("session revoked")
	ErrSessionExpired   = errors.New("session expired")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserInactive     = errors.New("user deactivated")
)

// TouchInterval bounds how often a session's last_activity_at is written.
const TouchInterval = time.Minute

// Throttle admits one caller per key per ttl. cache.Redis implements it.
type Throttle interface {
	SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

type alwaysAllow struct{}

func (alwaysAllow) SetIfNotExists(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}

// Principal is the authenticated caller of a request.
type Principal struct {
	User    user.User
	Session session.Session
}

// Authenticate resolves an access token to a live session and active user.
// A session found past its expiry is revoked on the way out.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (Principal, error) {
	if accessToken == "" {
		return Principal{}, ErrMissingToken
	}

	claims, err := s.jwt.ValidateToken(accessToken)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Principal{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Principal{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return Principal{}, ErrInvalidSignature
		}
		return Principal{}, ErrTokenInvalid
	}
	if claims.TokenType != jwt.TokenTypeAccess || s.jwt.IsRefreshToken(claims) {
		return Principal{}, ErrTokenInvalid
	}

	sess, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Principal{}, ErrSessionNotFound
		}
		return Principal{}, err
	}
	if sess.UserID != claims.UserID {
		return Principal{}, ErrSessionNotFound
	}
	if sess.IsRevoked() {
		return Principal{}, ErrSessionRevoked
	}
	if sess.IsExpired(s.now()) {
		s.revokeQuietly(ctx, sess.ID)
		return Principal{}, ErrSessionExpired
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Principal{}, ErrUserNotFound
		}
		return Principal{}, err
	}
	if !u.IsActive {
		return Principal{}, ErrUserInactive
	}

	return Principal{User: sanitizeUser(u), Session: sess}, nil
}

// Touch records activity on the session at most once per TouchInterval.
// Callers run it off the request path.
func (s *Service) Touch(ctx context.Context, sessionID uuid.UUID) error {
	ok, err := s.throttle.SetIfNotExists(ctx, "session:touch:"+sessionID.String(), "1", TouchInterval)
	if err != nil || !ok {
		return err
	}
	return s.sessions.Touch(ctx, sessionID, s.now())
}
