package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cv-builder/internal/app"
	"cv-builder/internal/database/migration"
)

const shutdownTimeout = 10 * time.Second

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the HTTP API, websocket hub and PDF export worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		a, err := app.New(ctx, cfg, app.WithLogger(log))
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}

		if serveMigrate && a.Container.DB != nil {
			if err := migration.NewRunner(a.Container.DB.SQLDB()).Up(); err != nil {
				_ = a.Container.Close()
				return err
			}
			log.Info("migrations applied")
		}

		addr, err := app.ListenAddr(cfg.App.HTTPPort)
		if err != nil {
			_ = a.Container.Close()
			return fmt.Errorf("invalid HTTP port: %w", err)
		}

		a.Start(ctx)

		errCh := make(chan error, 1)
		go func() {
			log.Info("http server listening", "addr", addr, "env", cfg.App.Environment)
			errCh <- a.Fiber.Listen(addr)
		}()

		var serveErr error
		select {
		case serveErr = <-errCh:
		case <-ctx.Done():
			log.Info("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
		return serveErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
}
