package commands

import (
	"github.com/Ramsey-B/dahlia/internal/app"
	"github.com/Ramsey-B/dahlia/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var (
		version uint
		force   int
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("version") {
				cfg.DatabaseMigrationVersion = version
			}
			if cmd.Flags().Changed("force") {
				cfg.DatabaseMigrationForce = force
			}

			ctx := cmd.Context()
			db, err := database.Open(ctx, app.DatabaseConfig(cfg), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return database.NewMigrationService(logger, app.MigrationConfig(cfg)).Migrate(cfg.DatabaseName, db)
		},
	}

	cmd.Flags().UintVar(&version, "version", 0, "Migrate to this version instead of the latest")
	cmd.Flags().IntVar(&force, "force", 0, "Force the recorded version before migrating")
	return cmd
}
