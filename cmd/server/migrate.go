package main

import (
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/anonto42/blog-api/backend/pkg/config"
	"github.com/anonto42/blog-api/backend/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		log := logger.New(cfg.LogLevel, cfg.LogFormat)

		db, err := config.InitDB(cfg, log)
		if err != nil {
			return err
		}
		defer config.CloseDB(db, log)

		if err := repositories.AutoMigrate(db); err != nil {
			return err
		}
		log.WithField("driver", cfg.DatabaseDriver).Info("schema migrated")
		return nil
	},
}
