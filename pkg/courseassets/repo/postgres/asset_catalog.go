package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/course-assets/pkg/courseassets"
)

// AssetCatalog implements courseassets.AssetCatalog against the asset
// subsystem's table:
//
//	CREATE TABLE asset (
//	    id   UUID PRIMARY KEY,
//	    path TEXT NOT NULL
//	);
//
// The catalog only reads; asset rows are owned by the asset-storage
// collaborator.
type AssetCatalog struct {
	db DBTX
}

// NewAssetCatalog creates a new PostgreSQL asset catalog
func NewAssetCatalog(db DBTX) *AssetCatalog {
	return &AssetCatalog{db: db}
}

// NewAssetCatalogWithPool creates a new PostgreSQL asset catalog with connection pool
func NewAssetCatalogWithPool(pool *pgxpool.Pool) *AssetCatalog {
	return &AssetCatalog{db: pool}
}

func (c *AssetCatalog) FindByFileName(ctx context.Context, fileName string) ([]*courseassets.Asset, error) {
	// Stored paths are usually bare file names; tolerate full paths by
	// matching the trailing segment too.
	query := `
		SELECT id, path FROM asset
		WHERE path = $1 OR path LIKE '%/' || $1
		ORDER BY path`

	rows, err := c.db.Query(ctx, query, fileName)
	if err != nil {
		return nil, handlePostgresError("find asset by file name", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

func (c *AssetCatalog) ListAssets(ctx context.Context, limit, offset int) ([]*courseassets.Asset, error) {
	query := `SELECT id, path FROM asset ORDER BY path LIMIT $1 OFFSET $2`

	rows, err := c.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, handlePostgresError("list assets", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

func scanAssets(rows pgx.Rows) ([]*courseassets.Asset, error) {
	var assets []*courseassets.Asset
	for rows.Next() {
		var asset courseassets.Asset
		if err := rows.Scan(&asset.ID, &asset.Path); err != nil {
			return nil, err
		}
		assets = append(assets, &asset)
	}
	return assets, rows.Err()
}
