package seeder

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"cv-builder/internal/database"
)

const (
	DemoEmail        = "demo@cvbuilder.local"
	DemoPremiumEmail = "premium@cvbuilder.local"
)

type DemoUsersSeeder struct{}

func (DemoUsersSeeder) Name() string { return "demo_users" }

func (DemoUsersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := requireColumns(ctx, db, "users", "id", "email", "password_hash", "first_name", "last_name", "is_verified", "is_premium"); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	items := []struct {
		Email     string
		FirstName string
		LastName  string
		Premium   bool
	}{
		{Email: DemoEmail, FirstName: "Demo", LastName: "User"},
		{Email: DemoPremiumEmail, FirstName: "Premium", LastName: "User", Premium: true},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO users (email, password_hash, first_name, last_name, is_verified, is_premium)
				 VALUES ($1, $2, $3, $4, TRUE, $5)
				 ON CONFLICT (LOWER(email)) DO NOTHING`,
				it.Email, string(hash), it.FirstName, it.LastName, it.Premium,
			); err != nil {
				return fmt.Errorf("insert %s: %w", it.Email, err)
			}
		}
		return nil
	})
}
