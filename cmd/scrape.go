package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"catalog-unifier/core/config"
	"catalog-unifier/core/logger"
	"catalog-unifier/feature/scrape"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run the scraper workers",
	Long: `Runs every scraper declared in the sources file in parallel and stores
their output as per-source record files in the results directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		sources, err := scrape.LoadSources(cfg.Run.SourcesFile)
		if err != nil {
			return err
		}

		// Ctrl-C kills every worker's process subtree; finished sources keep
		// their results.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner := scrape.NewRunner(cfg.Run.ResultsDir, cfg.Run.Workers, logg)
		ok, err := runner.Run(ctx, sources)
		if err != nil {
			return err
		}
		logg.Info("Scrape finished",
			zap.Int("sources", len(sources)),
			zap.Int("succeeded", ok))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(scrapeCmd)
}
