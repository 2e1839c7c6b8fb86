package authtoken

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Purpose string

const (
	PurposeEmailVerification Purpose = "email_verification"
	PurposePasswordReset     Purpose = "password_reset"
)

const (
	EmailVerificationTTL = 24 * time.Hour
	PasswordResetTTL     = time.Hour
)

var ErrInvalid = errors.New("token invalid or expired")

// Token is a single-use credential delivered by email. Only the sha256 of the
// raw value is stored.
type Token struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Purpose   Purpose
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, t Token) error
	// Consume marks a live, unused token as used and returns it. Unknown,
	// used and expired tokens all yield ErrInvalid.
	Consume(ctx context.Context, purpose Purpose, tokenHash string, now time.Time) (Token, error)
	// InvalidateForUser burns every outstanding token of the purpose.
	InvalidateForUser(ctx context.Context, userID uuid.UUID, purpose Purpose, now time.Time) error
}
