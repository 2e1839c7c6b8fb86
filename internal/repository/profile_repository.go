package repository

import (
	"context"
	"errors"
	"fmt"

	"cv-builder/internal/database"
	"cv-builder/internal/domain/profile"

	"github.com/google/uuid"
)

const profileColumns = `id, user_id, name, template_id, color_scheme_id, language, is_default, is_public,
	completion_percentage, download_count,
	first_name, last_name, job_title, email, phone, address, city, country, website, summary, photo_url, date_of_birth,
	created_at, updated_at`

// SectionCopier copies the rows of one section table between profiles inside
// the caller's transaction.
type SectionCopier interface {
	CopyTo(ctx context.Context, q database.Querier, fromProfileID, toProfileID uuid.UUID) error
}

type PostgresProfileRepository struct {
	db       database.DB
	sections []SectionCopier
}

func NewPostgresProfileRepository(db database.DB, sections ...SectionCopier) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db, sections: sections}
}

func (r *PostgresProfileRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]profile.Profile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+profileColumns+`
		 FROM profiles
		 WHERE user_id = $1
		 ORDER BY is_default DESC, updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	return scanProfileRow(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

func (r *PostgresProfileRepository) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (profile.Profile, error) {
	return scanProfileRow(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
}

const oneDefaultPerUser = "profiles_one_default_per_user"

// Create makes the first profile of a user its default. Two concurrent first
// creates both see no profile; the one that loses the unique index is retried
// as a non-default profile.
func (r *PostgresProfileRepository) Create(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	created, err := r.insert(ctx, p, true)
	if err != nil && database.IsUniqueViolation(err) && database.ConstraintName(err) == oneDefaultPerUser {
		return r.insert(ctx, p, false)
	}
	return created, err
}

func (r *PostgresProfileRepository) insert(ctx context.Context, p profile.Profile, mayBeDefault bool) (profile.Profile, error) {
	pp := p.Personal
	return scanProfileRow(r.db.QueryRow(ctx,
		`INSERT INTO profiles (
			id, user_id, name, template_id, color_scheme_id, language, is_public, is_default,
			first_name, last_name, job_title, email, phone, address, city, country, website, summary, photo_url, date_of_birth
		 ) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $20::boolean AND NOT EXISTS (SELECT 1 FROM profiles WHERE user_id = $2),
			$8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		 )
		 RETURNING `+profileColumns,
		p.ID, p.UserID, p.Name, p.TemplateID, p.ColorSchemeID, p.Language, p.IsPublic,
		pp.FirstName, pp.LastName, pp.JobTitle, pp.Email, pp.Phone, pp.Address, pp.City, pp.Country,
		pp.Website, pp.Summary, pp.PhotoURL, pp.DateOfBirth, mayBeDefault,
	))
}

func (r *PostgresProfileRepository) Update(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	return scanProfileRow(r.db.QueryRow(ctx,
		`UPDATE profiles
		 SET name = $3, template_id = $4, color_scheme_id = $5, language = $6, is_public = $7, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+profileColumns,
		p.ID, p.UserID, p.Name, p.TemplateID, p.ColorSchemeID, p.Language, p.IsPublic,
	))
}

func (r *PostgresProfileRepository) UpdatePersonal(ctx context.Context, id, userID uuid.UUID, pp profile.Personal) (profile.Profile, error) {
	return scanProfileRow(r.db.QueryRow(ctx,
		`UPDATE profiles
		 SET first_name = $3, last_name = $4, job_title = $5, email = $6, phone = $7, address = $8,
		     city = $9, country = $10, website = $11, summary = $12, photo_url = $13, date_of_birth = $14,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+profileColumns,
		id, userID, pp.FirstName, pp.LastName, pp.JobTitle, pp.Email, pp.Phone, pp.Address,
		pp.City, pp.Country, pp.Website, pp.Summary, pp.PhotoURL, pp.DateOfBirth,
	))
}

func (r *PostgresProfileRepository) UpdateAppearance(ctx context.Context, id, userID uuid.UUID, templateID, colorSchemeID string) (profile.Profile, error) {
	return scanProfileRow(r.db.QueryRow(ctx,
		`UPDATE profiles SET template_id = $3, color_scheme_id = $4, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+profileColumns,
		id, userID, templateID, colorSchemeID,
	))
}

func (r *PostgresProfileRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var wasDefault bool
		err := tx.QueryRow(ctx,
			`SELECT is_default FROM profiles WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID,
		).Scan(&wasDefault)
		if err != nil {
			if errors.Is(err, database.ErrNoRows) {
				return profile.ErrNotFound
			}
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id); err != nil {
			return err
		}

		if !wasDefault {
			return nil
		}
		_, err = tx.Exec(ctx,
			`UPDATE profiles SET is_default = TRUE
			 WHERE id = (
				SELECT id FROM profiles WHERE user_id = $1
				ORDER BY updated_at DESC, created_at DESC
				LIMIT 1
			 )`,
			userID,
		)
		return err
	})
}

func (r *PostgresProfileRepository) SetDefault(ctx context.Context, id, userID uuid.UUID) (profile.Profile, error) {
	var out profile.Profile
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT id FROM profiles WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID,
		).Scan(&locked)
		if err != nil {
			if errors.Is(err, database.ErrNoRows) {
				return profile.ErrNotFound
			}
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE profiles SET is_default = FALSE WHERE user_id = $1 AND id <> $2 AND is_default`,
			userID, id,
		); err != nil {
			return err
		}

		out, err = scanProfileRow(tx.QueryRow(ctx,
			`UPDATE profiles SET is_default = TRUE, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+profileColumns,
			id,
		))
		return err
	})
	if err != nil {
		return profile.Profile{}, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) Duplicate(ctx context.Context, id, userID uuid.UUID, name string) (profile.Profile, error) {
	newID := uuid.New()

	var out profile.Profile
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var err error
		out, err = scanProfileRow(tx.QueryRow(ctx,
			`INSERT INTO profiles (
				id, user_id, name, template_id, color_scheme_id, language, is_default, is_public,
				completion_percentage, download_count,
				first_name, last_name, job_title, email, phone, address, city, country, website, summary, photo_url, date_of_birth
			 )
			 SELECT $3, user_id, $4, template_id, color_scheme_id, language, FALSE, FALSE,
				completion_percentage, 0,
				first_name, last_name, job_title, email, phone, address, city, country, website, summary, photo_url, date_of_birth
			 FROM profiles
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+profileColumns,
			id, userID, newID, name,
		))
		if err != nil {
			return err
		}

		for _, s := range r.sections {
			if err := s.CopyTo(ctx, tx, id, newID); err != nil {
				return fmt.Errorf("copy sections: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return profile.Profile{}, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) UpdateCompletion(ctx context.Context, id uuid.UUID, percentage int) error {
	_, err := r.db.Exec(ctx, `UPDATE profiles SET completion_percentage = $2 WHERE id = $1`, id, percentage)
	return err
}

func (r *PostgresProfileRepository) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE profiles SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) Stats(ctx context.Context, userID uuid.UUID) (profile.Stats, error) {
	var st profile.Stats
	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_public),
			COALESCE(SUM(download_count), 0),
			COALESCE(AVG(completion_percentage), 0)::float8,
			(SELECT id FROM profiles WHERE user_id = $1 AND is_default LIMIT 1)
		 FROM profiles
		 WHERE user_id = $1`,
		userID,
	).Scan(&st.Total, &st.Public, &st.TotalDownloads, &st.AverageCompletion, &st.DefaultProfileID)
	if err != nil {
		return profile.Stats{}, err
	}
	return st, nil
}

func (r *PostgresProfileRepository) SectionCounts(ctx context.Context, id uuid.UUID) (profile.SectionCounts, error) {
	var c profile.SectionCounts
	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM experiences WHERE profile_id = $1),
			(SELECT COUNT(*) FROM educations WHERE profile_id = $1),
			(SELECT COUNT(*) FROM skills WHERE profile_id = $1),
			(SELECT COUNT(*) FROM languages WHERE profile_id = $1),
			(SELECT COUNT(*) FROM certifications WHERE profile_id = $1),
			(SELECT COUNT(*) FROM social_networks WHERE profile_id = $1)`,
		id,
	).Scan(&c.Experience, &c.Education, &c.Skills, &c.Languages, &c.Certifications, &c.SocialNetworks)
	if err != nil {
		return profile.SectionCounts{}, err
	}
	return c, nil
}

func scanProfileRow(row database.Row) (profile.Profile, error) {
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

func scanProfile(row database.Row) (profile.Profile, error) {
	var p profile.Profile
	pp := &p.Personal
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.TemplateID, &p.ColorSchemeID, &p.Language, &p.IsDefault, &p.IsPublic,
		&p.CompletionPercentage, &p.DownloadCount,
		&pp.FirstName, &pp.LastName, &pp.JobTitle, &pp.Email, &pp.Phone, &pp.Address, &pp.City, &pp.Country,
		&pp.Website, &pp.Summary, &pp.PhotoURL, &pp.DateOfBirth,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
