package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Spok95/matbase/internal/infra/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlDB, dialect, err := openSQL()
		if err != nil {
			return err
		}
		defer func() { _ = sqlDB.Close() }()

		if err := db.Migrate(sqlDB, dialect, log); err != nil {
			log.Error("migrations failed", "err", err)
			return err
		}
		version, err := db.MigrationVersion(sqlDB, dialect)
		if err != nil {
			return err
		}
		log.Info("migrations applied", "driver", cfg.Store.Driver, "version", version)
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
