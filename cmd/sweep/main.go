// Command sweep scans the asset catalog for assets no content
// references anymore and reports them, optionally deleting their blobs
// from the configured asset store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/course-assets/pkg/courseassets"
	repopg "github.com/tendant/course-assets/pkg/courseassets/repo/postgres"
	fsstore "github.com/tendant/course-assets/pkg/courseassets/storage/fs"
	memorystore "github.com/tendant/course-assets/pkg/courseassets/storage/memory"
	s3store "github.com/tendant/course-assets/pkg/courseassets/storage/s3"
	"github.com/tendant/course-assets/pkg/courseassets/sweep"
)

// Config holds environment configuration for the sweep run
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	StorageURL  string `env:"STORAGE_URL" env-default:"memory://"`
	BatchSize   int    `env:"SWEEP_BATCH_SIZE" env-default:"100"`
	DryRun      bool   `env:"SWEEP_DRY_RUN" env-default:"true"`

	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

func main() {
	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}
	if config.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, config.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	ledger := repopg.NewLedgerWithPool(pool)
	catalog := repopg.NewAssetCatalogWithPool(pool)

	store, err := buildStore(config)
	if err != nil {
		slog.Error("Failed to initialize asset store", "err", err)
		os.Exit(1)
	}

	sweeper := sweep.New(catalog, ledger, store, slog.Default())
	result, err := sweeper.Sweep(ctx, sweep.Options{
		BatchSize: config.BatchSize,
		DryRun:    config.DryRun,
		OnProgress: func(scanned int64) {
			slog.Info("Sweep progress", "scanned", scanned)
		},
	})
	if err != nil {
		slog.Error("Sweep failed", "err", err)
		os.Exit(1)
	}

	slog.Info("Sweep complete",
		"scanned", result.TotalScanned,
		"orphans", len(result.Orphans),
		"deleted", result.TotalDeleted,
		"failed", result.TotalFailed,
		"dry_run", config.DryRun)
	for _, orphan := range result.Orphans {
		slog.Info("Orphan asset", "asset_id", orphan.ID, "path", orphan.Path)
	}
}

// buildStore constructs the asset store from STORAGE_URL:
//
//	memory://                      - in-memory store (testing)
//	file:///var/data/assets        - filesystem store
//	s3://bucket?region=us-east-1   - S3 store (endpoint= for MinIO)
func buildStore(config Config) (courseassets.AssetStore, error) {
	u, err := url.Parse(config.StorageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_URL: %w", err)
	}

	switch u.Scheme {
	case "memory":
		return memorystore.New(), nil
	case "file":
		return fsstore.New(fsstore.Config{BaseDir: u.Path})
	case "s3":
		q := u.Query()
		return s3store.New(s3store.Config{
			Bucket:          u.Host,
			Region:          q.Get("region"),
			Endpoint:        q.Get("endpoint"),
			UsePathStyle:    q.Get("path_style") == "true",
			AccessKeyID:     config.S3AccessKeyID,
			SecretAccessKey: config.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", strings.ToLower(u.Scheme))
	}
}
