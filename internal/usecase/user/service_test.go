package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"cv-builder/internal/domain/session"
	domain "cv-builder/internal/domain/user"
	"cv-builder/internal/repository/memory"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, store *memory.Store, password string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := store.Users().Create(context.Background(), domain.User{Email: "u@example.com", PasswordHash: string(hash), IsActive: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestChangePassword_RevokesOtherSessions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u := seedUser(t, store, "old-password")

	current, other := uuid.New(), uuid.New()
	exp := time.Now().Add(time.Hour)
	_ = store.Sessions().Create(ctx, session.Session{ID: current, UserID: u.ID, ExpiresAt: exp})
	_ = store.Sessions().Create(ctx, session.Session{ID: other, UserID: u.ID, ExpiresAt: exp})

	svc := NewService(store.Users(), store.Sessions())

	err := svc.ChangePassword(ctx, u.ID, current, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "new-password"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	err = svc.ChangePassword(ctx, u.ID, current, ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "old-password"})
	if !errors.Is(err, ErrSamePassword) {
		t.Fatalf("expected ErrSamePassword, got %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, current, ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "new-password"}); err != nil {
		t.Fatalf("change password: %v", err)
	}

	got, _ := store.Sessions().GetByID(ctx, other)
	if !got.IsRevoked() {
		t.Fatalf("expected other session revoked")
	}
	got, _ = store.Sessions().GetByID(ctx, current)
	if got.IsRevoked() {
		t.Fatalf("expected current session kept")
	}

	stored, _ := store.Users().GetByID(ctx, u.ID)
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password")) != nil {
		t.Fatalf("new password not stored")
	}
}

func TestUpdateMe_TrimsAndHidesHash(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u := seedUser(t, store, "pw-123456")

	out, err := NewService(store.Users(), store.Sessions()).UpdateMe(ctx, u.ID, UpdateMeInput{FirstName: " Ada ", LastName: "Lovelace"})
	if err != nil {
		t.Fatalf("update me: %v", err)
	}
	if out.FirstName != "Ada" || out.LastName != "Lovelace" {
		t.Fatalf("unexpected name %q %q", out.FirstName, out.LastName)
	}
	if out.PasswordHash != "" {
		t.Fatalf("password hash leaked")
	}

	if _, err := NewService(store.Users(), store.Sessions()).UpdateMe(ctx, uuid.New(), UpdateMeInput{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
