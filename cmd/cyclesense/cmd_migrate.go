package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclesense/internal/db"
	"go.uber.org/zap"
)

func newMigrateCommand(options *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Apply pending migrations and list every applied one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := options.loadConfig()
			if err != nil {
				return err
			}

			database, err := db.OpenSQLite(cfg.Database.Path, zap.NewNop())
			if err != nil {
				return fmt.Errorf("database init failed: %w", err)
			}
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			applied, err := db.AppliedMigrations(cmd.Context(), database)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), options.output, applied)
		},
	})
	return cmd
}
