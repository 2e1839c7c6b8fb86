package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cv-builder/internal/domain/authtoken"
	"cv-builder/internal/domain/user"
	"cv-builder/internal/infrastructure/mailer"
	"cv-builder/internal/pkg/token"
)

func (s *Service) issueToken(ctx context.Context, userID uuid.UUID, purpose authtoken.Purpose) (string, error) {
	now := s.now()
	if err := s.tokens.InvalidateForUser(ctx, userID, purpose, now); err != nil {
		return "", fmt.Errorf("invalidate %s tokens: %w", purpose, err)
	}

	raw, hash, err := token.Generate()
	if err != nil {
		return "", err
	}
	ttl := authtoken.EmailVerificationTTL
	if purpose == authtoken.PurposePasswordReset {
		ttl = authtoken.PasswordResetTTL
	}
	err = s.tokens.Create(ctx, authtoken.Token{
		ID:        uuid.New(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hash,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("store %s token: %w", purpose, err)
	}
	return raw, nil
}

func (s *Service) sendVerification(ctx context.Context, u user.User) error {
	raw, err := s.issueToken(ctx, u.ID, authtoken.PurposeEmailVerification)
	if err != nil {
		return err
	}
	return s.mail.Send(ctx, mailer.VerificationEmail(u.Email, u.FirstName, s.frontendURL, raw))
}

func (s *Service) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}
	return s.sendVerification(ctx, u)
}

func (s *Service) VerifyEmail(ctx context.Context, rawToken string) (user.User, error) {
	t, err := s.tokens.Consume(ctx, authtoken.PurposeEmailVerification, token.Hash(rawToken), s.now())
	if err != nil {
		if errors.Is(err, authtoken.ErrInvalid) {
			return user.User{}, ErrInvalidToken
		}
		return user.User{}, err
	}
	if err := s.users.MarkVerified(ctx, t.UserID); err != nil {
		return user.User{}, err
	}
	return s.Me(ctx, t.UserID)
}

// ForgotPassword never reveals whether the email is registered: unknown and
// deactivated accounts return nil without sending anything.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return err
	}
	if !u.IsActive {
		return nil
	}

	raw, err := s.issueToken(ctx, u.ID, authtoken.PurposePasswordReset)
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, mailer.PasswordResetEmail(u.Email, u.FirstName, s.frontendURL, raw)); err != nil {
		s.log.Warn("password reset email not sent", "user_id", u.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes the token, stores the new password and signs the
// user out everywhere.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	t, err := s.tokens.Consume(ctx, authtoken.PurposePasswordReset, token.Hash(rawToken), s.now())
	if err != nil {
		if errors.Is(err, authtoken.ErrInvalid) {
			return ErrInvalidToken
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, t.UserID, string(hash)); err != nil {
		return err
	}
	ids, err := s.sessions.RevokeAllForUser(ctx, t.UserID, uuid.Nil)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	s.log.Info("password reset", "user_id", t.UserID, "revoked_sessions", len(ids))
	return nil
}
