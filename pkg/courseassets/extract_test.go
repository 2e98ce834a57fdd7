package courseassets_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-assets/pkg/courseassets"
)

func collect(payload map[string]any) []string {
	var out []string
	for p := range courseassets.ExtractPaths(payload) {
		out = append(out, p)
	}
	return out
}

func TestExtractPaths(t *testing.T) {
	t.Run("EmptyPayload", func(t *testing.T) {
		assert.Empty(t, collect(map[string]any{}))
		assert.Empty(t, collect(nil))
	})

	t.Run("NoAssetLikeStrings", func(t *testing.T) {
		payload := map[string]any{
			"title": "Introduction",
			"body":  "plain text without references",
			"count": 3,
			"flag":  true,
			"extra": nil,
		}
		assert.Empty(t, collect(payload))
	})

	t.Run("PathInsideMarkup", func(t *testing.T) {
		payload := map[string]any{
			"body": "<img src='course/course1/assets/img1.jpg'>",
		}
		assert.Equal(t, []string{"course/course1/assets/img1.jpg"}, collect(payload))
	})

	t.Run("DuplicatesPreserved", func(t *testing.T) {
		payload := map[string]any{
			"body": "<img src='course/course1/assets/img1.jpg'><img src='course/course1/assets/img1.jpg'>",
		}
		assert.Equal(t, []string{
			"course/course1/assets/img1.jpg",
			"course/course1/assets/img1.jpg",
		}, collect(payload))
	})

	t.Run("DeterministicDepthFirstOrder", func(t *testing.T) {
		payload := map[string]any{
			"b": []any{
				"course/c1/second.png",
				map[string]any{"inner": "course/c1/third.gif"},
			},
			"a": "course/c1/first.jpg",
		}
		assert.Equal(t, []string{
			"course/c1/first.jpg",
			"course/c1/second.png",
			"course/c1/third.gif",
		}, collect(payload))
	})

	t.Run("MultiplePathsInOneScalar", func(t *testing.T) {
		payload := map[string]any{
			"body": "see course/c1/a.jpg and course/c1/b.jpg",
		}
		assert.Equal(t, []string{"course/c1/a.jpg", "course/c1/b.jpg"}, collect(payload))
	})

	t.Run("RootSegmentRequired", func(t *testing.T) {
		payload := map[string]any{
			"a": "assets/img1.jpg",
			"b": "img1.jpg",
			"c": "no-extension/course",
			"d": "discourse/topics/img1.jpg",
			"e": "xcourse/c1/img1.jpg",
		}
		assert.Empty(t, collect(payload))
	})

	t.Run("DeeplyNestedPayload", func(t *testing.T) {
		payload := map[string]any{"leaf": "course/c1/deep.jpg"}
		for i := 0; i < 20000; i++ {
			payload = map[string]any{"level": payload}
		}
		require.Equal(t, []string{"course/c1/deep.jpg"}, collect(payload))
	})

	t.Run("LazyStopsEarly", func(t *testing.T) {
		payload := map[string]any{}
		for i := 0; i < 100; i++ {
			payload[fmt.Sprintf("k%03d", i)] = fmt.Sprintf("course/c1/file%03d.jpg", i)
		}

		var got []string
		for p := range courseassets.ExtractPaths(payload) {
			got = append(got, p)
			if len(got) == 3 {
				break
			}
		}
		assert.Len(t, got, 3)
	})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "img1.jpg", courseassets.FileName("course/course1/assets/img1.jpg"))
	assert.Equal(t, "img1.jpg", courseassets.FileName("img1.jpg"))
}
