package main

import (
	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/event-nexus/internal/database"
	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the Postgres schema and seed catalog",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := database.Migrate(cfg.Database); err != nil {
			return err
		}
		log.Info(log.CatDB, "migrations applied", "host", cfg.Database.Host, "db", cfg.Database.DBName)
		return nil
	},
}
