// Package commands holds the dahlia command line.
package commands

import (
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/dahlia/config"
	"github.com/Ramsey-B/dahlia/internal/app"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "dahlia",
		Short:        "Ingest e-commerce order exports and serve sales analytics",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newIngestCmd(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, ectologger.Logger, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := app.NewLogger(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
