package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-assets/pkg/courseassets/storage/fs"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()

	store, err := fs.New(fs.Config{BaseDir: baseDir})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "assets", "img1.jpg"), []byte("jpeg"), 0644))

	t.Run("Exists", func(t *testing.T) {
		ok, err := store.Exists(ctx, "assets/img1.jpg")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Exists(ctx, "assets/missing.jpg")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "assets/img1.jpg"))

		ok, err := store.Exists(ctx, "assets/img1.jpg")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DeleteAbsentKeyIsNoOp", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "assets/missing.jpg"))
	})

	t.Run("RejectsEscapingKeys", func(t *testing.T) {
		_, err := store.Exists(ctx, "../outside.txt")
		assert.Error(t, err)

		err = store.Delete(ctx, "/etc/passwd")
		assert.Error(t, err)
	})

	t.Run("RequiresBaseDir", func(t *testing.T) {
		_, err := fs.New(fs.Config{})
		assert.Error(t, err)
	})
}
