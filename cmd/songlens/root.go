package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/songlens/enricher/config"
	"github.com/songlens/enricher/internal/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:   "songlens",
		Short: "Enrich a folder of audio files into a song catalog",
		Long: "songlens turns audio filenames into title guesses, resolves them against a music\n" +
			"catalog, attaches audio features and writes the result as one JSON array.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFlag, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, runDeps{
				fs:     afero.NewOsFs(),
				out:    cmd.OutOrStdout(),
				logger: logger,
			})
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.String("input", "", "Directory containing audio files")
	flags.String("output", "", "Path of the JSON catalog to write (locked via <path>.lock during the run)")
	flags.String("catalog", "", "Catalog source: itunes or spotify")
	flags.String("features", "", "Feature source: dataset or api")
	flags.String("dataset", "", "Path of the CSV feature dataset")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	return rootCmd
}
