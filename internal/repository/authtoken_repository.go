package repository

import (
	"context"
	"errors"
	"time"

	"cv-builder/internal/database"
	"cv-builder/internal/domain/authtoken"

	"github.com/google/uuid"
)

type PostgresAuthTokenRepository struct {
	db database.DB
}

func NewPostgresAuthTokenRepository(db database.DB) *PostgresAuthTokenRepository {
	return &PostgresAuthTokenRepository{db: db}
}

func (r *PostgresAuthTokenRepository) Create(ctx context.Context, t authtoken.Token) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO auth_tokens (id, user_id, purpose, token_hash, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, string(t.Purpose), t.TokenHash, t.ExpiresAt,
	)
	return err
}

func (r *PostgresAuthTokenRepository) Consume(ctx context.Context, purpose authtoken.Purpose, tokenHash string, now time.Time) (authtoken.Token, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE auth_tokens SET used_at = $3
		 WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > $3
		 RETURNING id, user_id, purpose, token_hash, expires_at, used_at, created_at`,
		tokenHash, string(purpose), now,
	)

	var (
		t  authtoken.Token
		pp string
	)
	if err := row.Scan(&t.ID, &t.UserID, &pp, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return authtoken.Token{}, authtoken.ErrInvalid
		}
		return authtoken.Token{}, err
	}
	t.Purpose = authtoken.Purpose(pp)
	return t, nil
}

func (r *PostgresAuthTokenRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID, purpose authtoken.Purpose, now time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE auth_tokens SET used_at = $3 WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL`,
		userID, string(purpose), now,
	)
	return err
}
