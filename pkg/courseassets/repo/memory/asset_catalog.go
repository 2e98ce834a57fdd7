package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tendant/course-assets/pkg/courseassets"
)

// AssetCatalog implements courseassets.AssetCatalog using in-memory
// storage. Useful for tests and for wiring the service without the
// external asset subsystem.
type AssetCatalog struct {
	mu     sync.RWMutex
	assets []courseassets.Asset
}

// NewAssetCatalog creates an in-memory catalog seeded with the given assets
func NewAssetCatalog(assets ...courseassets.Asset) *AssetCatalog {
	c := &AssetCatalog{}
	c.assets = append(c.assets, assets...)
	return c
}

// Add registers an asset in the catalog
func (c *AssetCatalog) Add(asset courseassets.Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets = append(c.assets, asset)
}

func (c *AssetCatalog) FindByFileName(ctx context.Context, fileName string) ([]*courseassets.Asset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*courseassets.Asset
	for i := range c.assets {
		if courseassets.FileName(c.assets[i].Path) == fileName {
			assetCopy := c.assets[i]
			result = append(result, &assetCopy)
		}
	}
	return result, nil
}

func (c *AssetCatalog) ListAssets(ctx context.Context, limit, offset int) ([]*courseassets.Asset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sorted := make([]courseassets.Asset, len(c.assets))
	copy(sorted, c.assets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	if offset >= len(sorted) {
		return nil, nil
	}
	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	var result []*courseassets.Asset
	for i := offset; i < end; i++ {
		assetCopy := sorted[i]
		result = append(result, &assetCopy)
	}
	return result, nil
}
