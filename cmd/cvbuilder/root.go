package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cv-builder/internal/config"
	"cv-builder/internal/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "cvbuilder",
	Short:         "CV builder API server and maintenance tasks",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// loadConfig reads the environment and builds the process logger.
func loadConfig() (config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
