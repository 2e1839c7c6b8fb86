package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"cv-builder/internal/database"
	"cv-builder/internal/domain/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var userRowColumns = []string{
	"id", "email", "password_hash", "first_name", "last_name",
	"is_verified", "is_active", "is_premium", "last_login_at", "created_at", "updated_at",
}

func TestPostgresUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), user.User{Email: "a@b.c", PasswordHash: "x", IsActive: true})
	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPostgresUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE LOWER(email) = LOWER($1)`)).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "ada@example.com", "hash", "Ada", "Lovelace", true, true, false, nil, now, now))

	u, err := repo.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.ID != id || u.FullName() != "Ada Lovelace" || u.LastLoginAt != nil {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestPostgresUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresUserRepository_MarkVerified_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_verified = TRUE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MarkVerified(context.Background(), uuid.New()); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !database.IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected unique violation")
	}
	if database.IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain error is not a unique violation")
	}
}
