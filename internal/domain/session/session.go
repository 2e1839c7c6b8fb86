package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrRefreshMismatch = errors.New("refresh token does not match session")
)

// Session is the server-side record behind a pair of JWTs. Tokens carry its
// id as the sid claim and are only honoured while it is neither revoked nor
// expired.
type Session struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	RefreshTokenHash string
	UserAgent        string
	IPAddress        string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	LastActivityAt   time.Time
	CreatedAt        time.Time
}

func (s Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

func (s Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type Repository interface {
	Create(ctx context.Context, s Session) error
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	// RotateRefreshHash swaps the stored hash only when oldHash still matches
	// a live session. It returns ErrRefreshMismatch otherwise.
	RotateRefreshHash(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error
	Revoke(ctx context.Context, id uuid.UUID) error
	// RevokeAllForUser revokes every live session of the user except keep,
	// which may be uuid.Nil, and returns the ids it revoked.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, keep uuid.UUID) ([]uuid.UUID, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
}
