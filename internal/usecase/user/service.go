package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cv-builder/internal/domain/session"
	"cv-builder/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrSamePassword  = errors.New("new password must differ from the current one")
)

type UpdateMeInput struct {
	FirstName string
	LastName  string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

type Service struct {
	users    user.Repository
	sessions session.Repository
}

func NewService(users user.Repository, sessions session.Repository) *Service {
	return &Service{users: users, sessions: sessions}
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	usr, err := s.users.UpdateName(ctx, userID, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName))
	if err != nil {
		return user.User{}, err
	}
	return sanitizeUser(usr), nil
}

// ChangePassword keeps the caller's session and revokes every other one.
func (s *Service) ChangePassword(ctx context.Context, userID, currentSession uuid.UUID, in ChangePasswordInput) error {
	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	if in.CurrentPassword == in.NewPassword {
		return ErrSamePassword
	}

	hash, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	if _, err := s.sessions.RevokeAllForUser(ctx, userID, currentSession); err != nil {
		return fmt.Errorf("revoke other sessions: %w", err)
	}
	return nil
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}

func hashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
