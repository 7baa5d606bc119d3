package main

import (
	"github.com/spf13/cobra"

	"roleradar/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		dbConn, err := db.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close(dbConn)

		if err := db.AutoMigrate(dbConn); err != nil {
			return err
		}
		log.Info("schema up to date")
		return nil
	},
}
