package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"catalog-unifier/core/arbiter"
	"catalog-unifier/core/catalog"
	"catalog-unifier/core/config"
	"catalog-unifier/core/logger"
	"catalog-unifier/core/memory"
	"catalog-unifier/core/oracle"
	"catalog-unifier/core/storage"
	"catalog-unifier/feature/export"
	"catalog-unifier/feature/scrape"
	"catalog-unifier/feature/unify"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// unifyCmd represents the unify command
var unifyCmd = &cobra.Command{
	Use:   "unify",
	Short: "Unify scraped records into the canonical catalog",
	Long: `Reads the scraped record files, resolves every attribute through the
tiered engine, merges duplicates, allocates codes, and writes the catalog
snapshot, the run report, and the updated memory tables.`,
	RunE: runUnify,
}

func runUnify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()
	logg = logger.WithRun(logg, uuid.NewString())
	zap.ReplaceGlobals(logg)

	store, err := memory.NewStore(cfg.Memory, logg)
	if err != nil {
		return err
	}

	// The prior catalog is optional: without it every product is new.
	var db *gorm.DB
	var prior []catalog.Product
	if conn, err := catalog.Connect(cfg.Database); err != nil {
		logg.Warn("Prior-catalog database unavailable, treating the catalog as empty", zap.Error(err))
	} else {
		db = conn
		prior, err = catalog.NewRepository(db).LoadAll(cmd.Context())
		if err != nil {
			return err
		}
		logg.Info("Prior catalog loaded", zap.Int("products", len(prior)))
	}

	var orc oracle.Oracle
	if cfg.Oracle.Enabled() {
		client, err := oracle.NewAnthropic(cfg.Oracle)
		if err != nil {
			return err
		}
		orc = client
	} else {
		logg.Info("Oracle disabled, unresolved attributes go straight to the operator")
	}

	records, err := scrape.LoadResults(cfg.Run.ResultsDir)
	if err != nil {
		return err
	}
	logg.Info("Records loaded", zap.Int("records", len(records)))

	resolver := unify.NewResolver(unify.ResolverOptions{
		Store:       store,
		Oracle:      orc,
		Arbiter:     arbiter.NewConsole(),
		Language:    cfg.Memory.Language,
		HouseBrand:  cfg.Run.HouseBrand,
		AutoConfirm: cfg.Run.AutoConfirm,
		Logger:      logg,
	})
	merger := unify.NewMergeEngine(store, arbiter.NewConsole(), cfg.Memory.Language, cfg.Run.HouseBrand, logg)
	pipeline := unify.NewPipeline(resolver, merger, store, logg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	products, runErr := pipeline.Run(ctx, records, prior)
	if runErr != nil {
		// Learned answers are kept even when the run fails halfway; losing
		// them would mean asking the operator the same questions again.
		if err := store.FlushAll(); err != nil {
			logg.Error("Failed to flush memory tables", zap.Error(err))
		}
		return runErr
	}
	logg.Info("Catalog unified",
		zap.Int("records", len(records)),
		zap.Int("products", len(products)))

	exporter := export.NewExporter(cfg.Run.ExportDir, logg)
	if _, err := exporter.WriteSnapshot(products); err != nil {
		return err
	}
	report := export.BuildReport(prior, products)
	if _, err := exporter.WriteReport(report); err != nil {
		return err
	}
	if report.Empty() {
		logg.Info("No changes against the prior catalog")
	}

	if err := store.FlushAll(); err != nil {
		return err
	}

	if db != nil {
		repo := catalog.NewRepository(db)
		if err := repo.ReplaceAll(ctx, unify.ToCatalog(products)); err != nil {
			return err
		}
		if codes, err := repo.CodesInUse(ctx); err == nil {
			logg.Info("Catalog stored", zap.Int("codes", len(codes)))
		}
	}

	if cfg.Storage.Enabled() {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return err
		}
		archiver := export.NewArchiver(client, cfg.Storage.Bucket, logg)
		if err := archiver.Archive(ctx, export.RunID(time.Now()), cfg.Run.ExportDir, store.Root()); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	RootCmd.AddCommand(unifyCmd)
}
