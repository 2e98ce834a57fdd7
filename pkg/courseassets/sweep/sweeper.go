// Package sweep finds assets no content references anymore and
// optionally removes their blobs from the asset store.
package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/course-assets/pkg/courseassets"
)

// Sweeper pages through the asset catalog and checks each asset's
// reference count in the ledger.
type Sweeper struct {
	catalog courseassets.AssetCatalog
	ledger  courseassets.Ledger
	store   courseassets.AssetStore
	logger  *slog.Logger
}

// New creates a new Sweeper instance. The store may be nil when only
// reporting orphans; deletion then requires DryRun.
func New(catalog courseassets.AssetCatalog, ledger courseassets.Ledger, store courseassets.AssetStore, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{catalog: catalog, ledger: ledger, store: store, logger: logger}
}

// Options configures the sweep operation.
type Options struct {
	// BatchSize controls how many assets to query at once (default: 100)
	BatchSize int

	// DryRun if true, reports orphans without deleting their blobs
	DryRun bool

	// OnProgress is called after each batch is processed (optional)
	OnProgress func(scanned int64)
}

// Result contains statistics about the sweep operation.
type Result struct {
	// TotalScanned is the number of assets examined
	TotalScanned int64

	// Orphans lists assets with no remaining references
	Orphans []courseassets.Asset

	// TotalDeleted is the number of orphan blobs removed
	TotalDeleted int64

	// TotalFailed is the number of assets whose check or delete failed
	TotalFailed int64

	// FailedPaths contains the paths of assets that failed processing
	FailedPaths []string
}

// Sweep scans the catalog and reports every asset with zero ledger
// references. Orphan blobs still present in the store are deleted
// unless DryRun is set. If an asset fails its usage check, blob check,
// or delete, the error is recorded and the sweep continues with the
// next asset.
func (s *Sweeper) Sweep(ctx context.Context, opts Options) (*Result, error) {
	if !opts.DryRun && s.store == nil {
		return nil, fmt.Errorf("asset store is required unless DryRun is true")
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = 100
	}

	result := &Result{}
	offset := 0
	for {
		assets, err := s.catalog.ListAssets(ctx, opts.BatchSize, offset)
		if err != nil {
			return result, fmt.Errorf("failed to list assets: %w", err)
		}
		if len(assets) == 0 {
			break
		}

		for _, asset := range assets {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.TotalScanned++

			places, err := s.ledger.CountByAsset(ctx, asset.ID)
			if err != nil {
				s.logger.Error("asset usage check failed", "asset_id", asset.ID, "path", asset.Path, "error", err)
				result.TotalFailed++
				result.FailedPaths = append(result.FailedPaths, asset.Path)
				continue
			}
			if places > 0 {
				continue
			}

			result.Orphans = append(result.Orphans, *asset)
			if opts.DryRun {
				continue
			}

			exists, err := s.store.Exists(ctx, asset.Path)
			if err != nil {
				s.logger.Error("orphan blob check failed", "asset_id", asset.ID, "path", asset.Path, "error", err)
				result.TotalFailed++
				result.FailedPaths = append(result.FailedPaths, asset.Path)
				continue
			}
			if !exists {
				// Already gone; counting it as deleted would overstate
				// the sweep's work.
				s.logger.Info("orphan blob already absent", "asset_id", asset.ID, "path", asset.Path)
				continue
			}

			if err := s.store.Delete(ctx, asset.Path); err != nil {
				s.logger.Error("orphan blob delete failed", "asset_id", asset.ID, "path", asset.Path, "error", err)
				result.TotalFailed++
				result.FailedPaths = append(result.FailedPaths, asset.Path)
				continue
			}
			result.TotalDeleted++
		}

		offset += len(assets)
		if opts.OnProgress != nil {
			opts.OnProgress(result.TotalScanned)
		}
	}

	return result, nil
}
