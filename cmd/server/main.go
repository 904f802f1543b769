package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"smartkheti_backend/internal/app"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/marketplace"
	"smartkheti_backend/internal/platform/database"
	platformes "smartkheti_backend/internal/platform/elasticsearch"
	"smartkheti_backend/internal/platform/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "server",
		Short:        "SmartKheti API server",
		SilenceUsage: true,
		RunE:         func(cmd *cobra.Command, _ []string) error { return runServer(cmd.Context()) },
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the database and start the HTTP server",
			RunE:  func(cmd *cobra.Command, _ []string) error { return runServer(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply schema migrations and load the disease catalog",
			RunE:  func(cmd *cobra.Command, _ []string) error { return runMigrate(cmd.Context()) },
		},
		newSyncListingsCmd(),
	)
	return root
}

func newSyncListingsCmd() *cobra.Command {
	var batchSize int
	cmd := &cobra.Command{
		Use:   "sync-listings",
		Short: "Reindex every crop listing into Elasticsearch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListingSync(cmd.Context(), batchSize)
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "Number of listings per bulk request")
	return cmd
}

func provideMaxUploadBytes(cfg *config.Config) int64 {
	return cfg.MaxUploadBytes()
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err)
		return err
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Printf("FATAL: Failed to initialize server: %v", err)
		return err
	}
	defer cleanup()
	defer func() { _ = server.AppLogger.Sync() }()

	if err := server.Migrate(ctx); err != nil {
		server.AppLogger.Error("Database migration failed", zap.Error(err))
		return err
	}

	if server.ESClient != nil {
		if err := platformes.CreateCropListingsIndexIfNotExists(ctx, server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch listings index", zap.Error(err))
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		server.AppLogger.Info("Shutting down server", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		server.AppLogger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	server.AppLogger.Info("Server shutdown complete")
	return nil
}

func runMigrate(ctx context.Context) error {
	cfg, appLogger, err := loadBasics()
	if err != nil {
		return err
	}
	defer func() { _ = appLogger.Sync() }()

	db, cleanup, err := database.NewGORM(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize database", zap.Error(err))
		return err
	}
	defer cleanup()
	return app.Migrate(ctx, db, cfg, appLogger)
}

// runListingSync performs the batch synchronization of listings to Elasticsearch.
func runListingSync(ctx context.Context, batchSize int) error {
	cfg, appLogger, err := loadBasics()
	if err != nil {
		return err
	}
	defer func() { _ = appLogger.Sync() }()

	db, cleanup, err := database.NewGORM(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize database for sync", zap.Error(err))
		return err
	}
	defer cleanup()

	esClient, err := platformes.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize Elasticsearch client for sync", zap.Error(err))
		return err
	}
	if esClient == nil {
		return errors.New("ELASTICSEARCH_URL must be set to sync listings")
	}
	if err := platformes.CreateCropListingsIndexIfNotExists(ctx, esClient, appLogger); err != nil {
		return err
	}

	synced, failed, err := marketplace.SyncAll(ctx, marketplace.NewGORMRepository(db), marketplace.NewSearchIndex(esClient, appLogger), batchSize, appLogger)
	if err != nil {
		appLogger.Error("Listing synchronization failed", zap.Error(err))
		return err
	}
	appLogger.Info("Listing synchronization completed", zap.Int("synced", synced), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d listings failed to sync", failed)
	}
	return nil
}

func loadBasics() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err)
		return nil, nil, err
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Printf("FATAL: Failed to initialize logger: %v", err)
		return nil, nil, err
	}
	return cfg, appLogger, nil
}
