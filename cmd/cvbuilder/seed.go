package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"cv-builder/internal/database/postgres"
	"cv-builder/internal/database/seeder"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo accounts and profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		db, err := postgres.Connect(ctx, cfg.Database, postgres.WithLogger(log))
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		only, _ := cmd.Flags().GetStringSlice("only")
		runner := seeder.Runner{Seeders: seeder.Defaults(), Only: only, Log: log.Named("seed")}
		if err := runner.Run(ctx, db); err != nil {
			return err
		}
		log.Info("seed finished", "email", seeder.DemoEmail, "premium_email", seeder.DemoPremiumEmail)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringSlice("only", nil, "run only the named seeders (demo_users, demo_profile)")
	rootCmd.AddCommand(seedCmd)
}
