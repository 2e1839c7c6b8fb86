// Package seeder fills a migrated database with demo accounts and a sample
// CV so the API can be explored right after `cvbuilder seed`.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"cv-builder/internal/database"
	"cv-builder/internal/pkg/logger"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "DemoPass123!"

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

// Defaults is the seed order; profiles need their owner to exist.
func Defaults() []Seeder {
	return []Seeder{DemoUsersSeeder{}, DemoProfileSeeder{}}
}

// Runner applies seeders in order and stops at the first failure. Only, when
// set, restricts the run to the named seeders.
type Runner struct {
	Seeders []Seeder
	Only    []string
	Log     *logger.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("seed: nil db")
	}
	log := r.Log
	if log == nil {
		log = logger.Nop()
	}

	for _, s := range r.Seeders {
		if s == nil || (len(r.Only) > 0 && !slices.Contains(r.Only, s.Name())) {
			continue
		}
		start := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Info("seeded", "seeder", s.Name(), "took", time.Since(start).String())
	}
	return nil
}
