package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cv-builder/internal/domain/session"
	"cv-builder/internal/domain/user"
	"cv-builder/internal/pkg/jwt"
	"cv-builder/internal/pkg/token"
)

func (s *Service) openSession(ctx context.Context, u user.User, client ClientInfo) (Result, error) {
	now := s.now()
	sess := session.Session{
		ID:             uuid.New(),
		UserID:         u.ID,
		UserAgent:      truncate(client.UserAgent, 255),
		IPAddress:      client.IPAddress,
		ExpiresAt:      now.Add(s.jwt.RefreshTTL()),
		LastActivityAt: now,
		CreatedAt:      now,
	}

	access, refresh, err := s.issueTokens(u, sess.ID)
	if err != nil {
		return Result{}, err
	}
	sess.RefreshTokenHash = token.Hash(refresh)

	if err := s.sessions.Create(ctx, sess); err != nil {
		return Result{}, fmt.Errorf("create session: %w", err)
	}
	return s.result(u, sess.ID, access, refresh), nil
}

func (s *Service) issueTokens(u user.User, sessionID uuid.UUID) (string, string, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID, sessionID, u.Email)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(u.ID, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	return access, refresh, nil
}

func (s *Service) result(u user.User, sessionID uuid.UUID, access, refresh string) Result {
	return Result{
		User:         sanitizeUser(u),
		SessionID:    sessionID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.AccessTTL().Seconds()),
	}
}

// Refresh rotates the session's refresh token. Presenting a token that was
// already rotated out revokes the session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Result, error) {
	if refreshToken == "" {
		return Result{}, ErrInvalidRefreshToken
	}

	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Result{}, ErrRefreshTokenExpired
		}
		return Result{}, ErrInvalidRefreshToken
	}
	if !s.jwt.IsRefreshToken(claims) {
		return Result{}, ErrInvalidRefreshToken
	}

	sess, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Result{}, ErrSessionNotFound
		}
		return Result{}, err
	}
	if sess.UserID != claims.UserID {
		return Result{}, ErrInvalidRefreshToken
	}
	if sess.IsRevoked() {
		return Result{}, ErrSessionRevoked
	}
	now := s.now()
	if sess.IsExpired(now) {
		s.revokeQuietly(ctx, sess.ID)
		return Result{}, ErrSessionExpired
	}

	oldHash := token.Hash(refreshToken)
	if oldHash != sess.RefreshTokenHash {
		s.log.Warn("refresh token reuse, revoking session", "session_id", sess.ID, "user_id", sess.UserID)
		s.revokeQuietly(ctx, sess.ID)
		return Result{}, ErrRefreshTokenReused
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Result{}, ErrUserNotFound
		}
		return Result{}, err
	}
	if !u.IsActive {
		return Result{}, ErrUserInactive
	}

	access, refresh, err := s.issueTokens(u, sess.ID)
	if err != nil {
		return Result{}, err
	}
	err = s.sessions.RotateRefreshHash(ctx, sess.ID, oldHash, token.Hash(refresh), now.Add(s.jwt.RefreshTTL()))
	if err != nil {
		if errors.Is(err, session.ErrRefreshMismatch) {
			// Lost a race with another refresh of the same token.
			s.revokeQuietly(ctx, sess.ID)
			return Result{}, ErrRefreshTokenReused
		}
		return Result{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	return s.result(u, sess.ID, access, refresh), nil
}

func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// LogoutAll revokes every live session of the user, the current one included.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) (int, error) {
	ids, err := s.sessions.RevokeAllForUser(ctx, userID, uuid.Nil)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Service) revokeQuietly(ctx context.Context, id uuid.UUID) {
	if err := s.sessions.Revoke(ctx, id); err != nil {
		s.log.Error("revoke session failed", "session_id", id, "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
