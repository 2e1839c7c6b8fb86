package repository

import (
	"context"
	"errors"
	"time"

	"cv-builder/internal/database"
	"cv-builder/internal/domain/user"

	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, first_name, last_name, is_verified, is_active, is_premium, last_login_at, created_at, updated_at`

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, is_verified, is_active, is_premium)
		 VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8)
		 RETURNING `+userColumns,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsVerified, u.IsActive, u.IsPremium,
	)
	created, err := scanUser(row)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}
	return created, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *PostgresUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
}

func (r *PostgresUserRepository) UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET first_name = $2, last_name = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, firstName, lastName,
	))
}

func (r *PostgresUserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, `UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
}

func (r *PostgresUserRepository) execOne(ctx context.Context, query string, args ...any) error {
	n, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsVerified, &u.IsActive, &u.IsPremium, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
