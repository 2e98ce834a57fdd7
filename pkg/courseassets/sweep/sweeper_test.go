package sweep_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-assets/pkg/courseassets"
	"github.com/tendant/course-assets/pkg/courseassets/repo/memory"
	memorystore "github.com/tendant/course-assets/pkg/courseassets/storage/memory"
	"github.com/tendant/course-assets/pkg/courseassets/sweep"
)

func TestSweeper(t *testing.T) {
	ctx := context.Background()

	used := courseassets.Asset{ID: uuid.New(), Path: "used.jpg"}
	orphan := courseassets.Asset{ID: uuid.New(), Path: "orphan.png"}

	setup := func(t *testing.T) (*memory.Ledger, *memory.AssetCatalog, *memorystore.Store) {
		t.Helper()
		ledger := memory.NewLedger()
		catalog := memory.NewAssetCatalog(used, orphan)

		store := memorystore.New()
		store.Put(used.Path, []byte("used"))
		store.Put(orphan.Path, []byte("orphan"))

		key := courseassets.ReferenceKey{CourseID: uuid.New(), ContentID: uuid.New(), AssetID: used.ID}
		require.NoError(t, ledger.SetReferenceCount(ctx, key, 2))

		return ledger, catalog, store
	}

	t.Run("DryRunReportsWithoutDeleting", func(t *testing.T) {
		ledger, catalog, store := setup(t)
		sweeper := sweep.New(catalog, ledger, store, nil)

		result, err := sweeper.Sweep(ctx, sweep.Options{DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalScanned)
		require.Len(t, result.Orphans, 1)
		assert.Equal(t, orphan.ID, result.Orphans[0].ID)
		assert.Zero(t, result.TotalDeleted)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("DeletesOrphanBlobs", func(t *testing.T) {
		ledger, catalog, store := setup(t)
		sweeper := sweep.New(catalog, ledger, store, nil)

		result, err := sweeper.Sweep(ctx, sweep.Options{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.TotalDeleted)

		exists, err := store.Exists(ctx, orphan.Path)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = store.Exists(ctx, used.Path)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("AbsentBlobNotCountedDeleted", func(t *testing.T) {
		ledger, catalog, store := setup(t)
		require.NoError(t, store.Delete(ctx, orphan.Path))
		sweeper := sweep.New(catalog, ledger, store, nil)

		result, err := sweeper.Sweep(ctx, sweep.Options{})
		require.NoError(t, err)
		require.Len(t, result.Orphans, 1)
		assert.Zero(t, result.TotalDeleted)
		assert.Zero(t, result.TotalFailed)
	})

	t.Run("PagesThroughCatalog", func(t *testing.T) {
		ledger, catalog, store := setup(t)
		sweeper := sweep.New(catalog, ledger, store, nil)

		var progress []int64
		result, err := sweeper.Sweep(ctx, sweep.Options{
			BatchSize:  1,
			DryRun:     true,
			OnProgress: func(scanned int64) { progress = append(progress, scanned) },
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalScanned)
		assert.Equal(t, []int64{1, 2}, progress)
	})

	t.Run("StoreRequiredUnlessDryRun", func(t *testing.T) {
		ledger, catalog, _ := setup(t)
		sweeper := sweep.New(catalog, ledger, nil, nil)

		_, err := sweeper.Sweep(ctx, sweep.Options{})
		assert.Error(t, err)

		_, err = sweeper.Sweep(ctx, sweep.Options{DryRun: true})
		assert.NoError(t, err)
	})
}
