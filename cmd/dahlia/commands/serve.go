package commands

import (
	"context"

	"github.com/Ramsey-B/dahlia/internal/app"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a := app.New(cfg, logger, app.Options{Migrate: cfg.DatabaseMigrateOnStart})
			if err := a.Start(ctx); err != nil {
				logger.WithError(err).Error("Failed to start dependencies")
				return err
			}
			defer func() {
				if err := a.Stop(context.Background()); err != nil {
					logger.WithError(err).Error("Failed to stop dependencies")
				}
			}()

			return a.Serve(ctx)
		},
	}
}
