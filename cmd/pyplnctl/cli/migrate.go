package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pypln-web/internal/model"
	"pypln-web/internal/platform/database"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := model.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database.\n", cfg.Database.Driver)
			return nil
		},
	}
}
