package repository

import (
	"context"
	"errors"
	"time"

	"cv-builder/internal/database"
	"cv-builder/internal/domain/session"

	"github.com/google/uuid"
)

const sessionColumns = `id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, revoked_at, last_activity_at, created_at`

type PostgresSessionRepository struct {
	db database.DB
}

func NewPostgresSessionRepository(db database.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, s session.Session) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, last_activity_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.RefreshTokenHash, s.UserAgent, s.IPAddress, s.ExpiresAt, s.LastActivityAt,
	)
	return err
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (session.Session, error) {
	row := r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)

	var s session.Session
	if err := row.Scan(
		&s.ID, &s.UserID, &s.RefreshTokenHash, &s.UserAgent, &s.IPAddress,
		&s.ExpiresAt, &s.RevokedAt, &s.LastActivityAt, &s.CreatedAt,
	); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, err
	}
	return s, nil
}

func (r *PostgresSessionRepository) RotateRefreshHash(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	n, err := r.db.Exec(ctx,
		`UPDATE sessions
		 SET refresh_token_hash = $3, expires_at = $4, last_activity_at = NOW()
		 WHERE id = $1 AND refresh_token_hash = $2 AND revoked_at IS NULL`,
		id, oldHash, newHash, expiresAt,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return session.ErrRefreshMismatch
	}
	return nil
}

func (r *PostgresSessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`,
		id,
	)
	return err
}

func (r *PostgresSessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, keep uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE sessions SET revoked_at = NOW()
		 WHERE user_id = $1 AND id <> $2 AND revoked_at IS NULL
		 RETURNING id`,
		userID, keep,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE sessions SET last_activity_at = $2 WHERE id = $1`, id, at)
	return err
}
