package courseassets_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-assets/pkg/courseassets"
	"github.com/tendant/course-assets/pkg/courseassets/repo/memory"
)

// countingCatalog records how often each file name is looked up.
type countingCatalog struct {
	*memory.AssetCatalog
	lookups map[string]int
}

func newCountingCatalog(assets ...courseassets.Asset) *countingCatalog {
	return &countingCatalog{
		AssetCatalog: memory.NewAssetCatalog(assets...),
		lookups:      make(map[string]int),
	}
}

func (c *countingCatalog) FindByFileName(ctx context.Context, fileName string) ([]*courseassets.Asset, error) {
	c.lookups[fileName]++
	return c.AssetCatalog.FindByFileName(ctx, fileName)
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	img1 := courseassets.Asset{ID: uuid.New(), Path: "img1.jpg"}
	img2 := courseassets.Asset{ID: uuid.New(), Path: "img2.png"}

	t.Run("ResolvesByFileName", func(t *testing.T) {
		resolver := courseassets.NewResolver(newCountingCatalog(img1, img2))

		res, err := resolver.Resolve(ctx, []string{
			"course/c1/assets/img1.jpg",
			"course/c1/assets/img2.png",
		})
		require.NoError(t, err)
		assert.Empty(t, res.Unresolved)
		assert.Equal(t, img1.ID, res.Assets["course/c1/assets/img1.jpg"])
		assert.Equal(t, img2.ID, res.Assets["course/c1/assets/img2.png"])
	})

	t.Run("DeduplicatesLookups", func(t *testing.T) {
		catalog := newCountingCatalog(img1)
		resolver := courseassets.NewResolver(catalog)

		res, err := resolver.Resolve(ctx, []string{
			"course/c1/assets/img1.jpg",
			"course/c1/assets/img1.jpg",
			"course/c1/assets/img1.jpg",
		})
		require.NoError(t, err)
		assert.Len(t, res.Assets, 1)
		assert.Equal(t, 1, catalog.lookups["img1.jpg"])
	})

	t.Run("MissingAssetUnresolved", func(t *testing.T) {
		resolver := courseassets.NewResolver(newCountingCatalog(img1))

		res, err := resolver.Resolve(ctx, []string{"course/c1/assets/unknown.jpg"})
		require.NoError(t, err)
		assert.Empty(t, res.Assets)
		assert.Equal(t, []string{"course/c1/assets/unknown.jpg"}, res.Unresolved)
	})

	t.Run("AmbiguousAssetUnresolved", func(t *testing.T) {
		dupA := courseassets.Asset{ID: uuid.New(), Path: "a/img1.jpg"}
		dupB := courseassets.Asset{ID: uuid.New(), Path: "b/img1.jpg"}
		resolver := courseassets.NewResolver(newCountingCatalog(dupA, dupB))

		res, err := resolver.Resolve(ctx, []string{"course/c1/assets/img1.jpg"})
		require.NoError(t, err)
		assert.Empty(t, res.Assets)
		assert.Equal(t, []string{"course/c1/assets/img1.jpg"}, res.Unresolved)
	})

	t.Run("PartialFailureDoesNotAbortBatch", func(t *testing.T) {
		resolver := courseassets.NewResolver(newCountingCatalog(img1))

		res, err := resolver.Resolve(ctx, []string{
			"course/c1/assets/unknown.jpg",
			"course/c1/assets/img1.jpg",
		})
		require.NoError(t, err)
		assert.Equal(t, img1.ID, res.Assets["course/c1/assets/img1.jpg"])
		assert.Equal(t, []string{"course/c1/assets/unknown.jpg"}, res.Unresolved)
	})
}
