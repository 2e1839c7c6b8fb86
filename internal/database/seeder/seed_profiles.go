package seeder

import (
	"context"
	"errors"
	"fmt"

	"cv-builder/internal/catalog"
	"cv-builder/internal/database"
)

const demoProfileName = "Software Engineer CV"

var errUserMissing = errors.New("demo user missing, run demo_users first")

// DemoProfileSeeder gives the demo user one populated default profile. It is
// skipped when a profile with the same name already exists.
type DemoProfileSeeder struct{}

func (DemoProfileSeeder) Name() string { return "demo_profile" }

func (DemoProfileSeeder) Run(ctx context.Context, db database.DB) error {
	if err := requireColumns(ctx, db, "profiles", "id", "user_id", "name", "template_id", "color_scheme_id", "is_default"); err != nil {
		return err
	}

	var userID string
	if err := db.QueryRow(ctx, `SELECT id FROM users WHERE LOWER(email) = LOWER($1)`, DemoEmail).Scan(&userID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return errUserMissing
		}
		return err
	}

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1 AND name = $2)`,
		userID, demoProfileName,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	tpl, _ := catalog.TemplateByID(catalog.DefaultTemplateID)

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		var profileID string
		if err := tx.QueryRow(ctx,
			`INSERT INTO profiles (user_id, name, template_id, color_scheme_id, is_default,
				first_name, last_name, job_title, email, city, country, summary)
			 VALUES ($1, $2, $3, $4, NOT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1 AND is_default),
				'Demo', 'User', 'Backend Engineer', $5, 'Jakarta', 'Indonesia',
				'Backend engineer building APIs and data pipelines in Go.')
			 RETURNING id`,
			userID, demoProfileName, tpl.ID, tpl.DefaultColorScheme, DemoEmail,
		).Scan(&profileID); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}

		stmts := []struct {
			name  string
			query string
		}{
			{"experience", `INSERT INTO experiences (profile_id, order_index, project_title, position, company, employment_type, start_date, is_current, description)
				VALUES ($1, 0, 'Payments platform', 'Backend Engineer', 'Acme', 'full_time', '2021-03-01', TRUE, 'Owns the settlement services.')`},
			{"education", `INSERT INTO educations (profile_id, order_index, institution, degree, field_of_study, degree_level, start_date, end_date)
				VALUES ($1, 0, 'Universitas Indonesia', 'B.Sc.', 'Computer Science', 'bachelor', '2014-08-01', '2018-07-01')`},
			{"skills", `INSERT INTO skills (profile_id, order_index, name, category, level, years_of_experience)
				VALUES ($1, 0, 'Go', 'programming_languages', 'expert', 5),
				       ($1, 1, 'PostgreSQL', 'databases', 'advanced', 5)`},
			{"languages", `INSERT INTO languages (profile_id, order_index, name, level)
				VALUES ($1, 0, 'English', 'C1'), ($1, 1, 'Indonesian', 'native')`},
			{"social networks", `INSERT INTO social_networks (profile_id, order_index, platform, url, username)
				VALUES ($1, 0, 'github', 'https://github.com/demo', 'demo')`},
		}
		for _, s := range stmts {
			if _, err := tx.Exec(ctx, s.query, profileID); err != nil {
				return fmt.Errorf("insert %s: %w", s.name, err)
			}
		}
		return nil
	})
}
