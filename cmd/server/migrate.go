package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"umarket/internal/app/di"
	"umarket/internal/platform/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the Postgres tables used by STORE_DRIVER=postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dbCfg := cfg.Database()
			if dbCfg.URL == "" && dbCfg.Host == "" {
				return errors.New("DATABASE_URL or DB_HOST is required to migrate")
			}
			if _, err := db.Open(dbCfg, true, di.Models()...); err != nil {
				return err
			}
			slog.Info("migration complete")
			return nil
		},
	}
}
