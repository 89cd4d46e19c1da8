package commands

import (
	"context"
	"fmt"

	"github.com/Ramsey-B/dahlia/internal/app"
	"github.com/spf13/cobra"
)

func newIngestCmd(root *rootOptions) *cobra.Command {
	var sources []string

	cmd := &cobra.Command{
		Use:     "ingest",
		Short:   "Ingest order CSV exports from URLs or local files",
		Example: "  dahlia ingest --source https://example.com/amazon.csv --source ./exports/flipkart.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a := app.New(cfg, logger, app.Options{
				Migrate:         cfg.DatabaseMigrateOnStart,
				AllowLocalFiles: true,
			})
			if err := a.Start(ctx); err != nil {
				return err
			}
			defer a.Stop(context.Background())

			result, err := a.Ingestion.Ingest(ctx, append(sources, args...))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d records from %d sources\n", result.Records, len(result.Sources))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sources, "source", nil, "CSV URL or file path, may be repeated")
	return cmd
}
