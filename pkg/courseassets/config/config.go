package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/course-assets/pkg/courseassets"
	repomemory "github.com/tendant/course-assets/pkg/courseassets/repo/memory"
	repopg "github.com/tendant/course-assets/pkg/courseassets/repo/postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
	}
}

// ServerConfig represents server configuration for the course-assets service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
}

// Validate checks the configuration for consistency.
func (c *ServerConfig) Validate() error {
	switch c.DatabaseType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres database type")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	return nil
}

// BuildService constructs the courseassets service with the configured
// ledger and asset catalog.
func (c *ServerConfig) BuildService(ctx context.Context) (courseassets.Service, error) {
	ledger, catalog, err := c.buildRepositories(ctx)
	if err != nil {
		return nil, err
	}

	return courseassets.New(
		courseassets.WithLedger(ledger),
		courseassets.WithAssetCatalog(catalog),
	)
}

func (c *ServerConfig) buildRepositories(ctx context.Context) (courseassets.Ledger, courseassets.AssetCatalog, error) {
	switch c.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repopg.NewLedgerWithPool(pool), repopg.NewAssetCatalogWithPool(pool), nil
	default:
		return repomemory.NewLedger(), repomemory.NewAssetCatalog(), nil
	}
}

// IsPostgresURL reports whether the URL uses a postgres scheme.
func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}
