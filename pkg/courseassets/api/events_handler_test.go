package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-assets/pkg/courseassets"
	"github.com/tendant/course-assets/pkg/courseassets/api"
)

func TestEventsHandler(t *testing.T) {
	ctx := context.Background()
	img1 := courseassets.Asset{ID: uuid.New(), Path: "img1.jpg"}

	t.Run("InsertEventLinksAssets", func(t *testing.T) {
		server, ledger := newTestServer(t, img1)
		courseID := uuid.New()
		contentID := uuid.New()

		resp := postJSON(t, server.URL+"/content-events/", api.ContentEventRequest{
			Event: api.EventInsert,
			Item: &api.ContentItemPayload{
				ID:       contentID.String(),
				CourseID: courseID.String(),
				Type:     "page",
				Payload: map[string]any{
					"body": "<img src='course/c1/assets/img1.jpg'><img src='course/c1/assets/img1.jpg'>",
				},
			},
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result courseassets.ReconcileResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, 1, result.Linked)

		link, err := ledger.GetReference(ctx, courseassets.ReferenceKey{
			CourseID: courseID, ContentID: contentID, AssetID: img1.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, link.ReferenceCount)
	})

	t.Run("UpdateEventAppliesDiff", func(t *testing.T) {
		server, ledger := newTestServer(t, img1)
		courseID := uuid.New()
		contentID := uuid.New()

		insert := postJSON(t, server.URL+"/content-events/", api.ContentEventRequest{
			Event: api.EventInsert,
			Item: &api.ContentItemPayload{
				ID:       contentID.String(),
				CourseID: courseID.String(),
				Type:     "page",
				Payload:  map[string]any{"body": "<img src='course/c1/assets/img1.jpg'>"},
			},
		})
		insert.Body.Close()
		require.Equal(t, http.StatusOK, insert.StatusCode)

		update := postJSON(t, server.URL+"/content-events/", api.ContentEventRequest{
			Event: api.EventUpdate,
			Item: &api.ContentItemPayload{
				ID:       contentID.String(),
				CourseID: courseID.String(),
				Type:     "page",
				Payload:  map[string]any{"body": "no references left"},
			},
		})
		update.Body.Close()
		require.Equal(t, http.StatusOK, update.StatusCode)

		links, err := ledger.ListByContent(ctx, courseID, contentID)
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("CourseDeleteEventCascades", func(t *testing.T) {
		server, ledger := newTestServer(t, img1)
		courseID := uuid.New()

		insert := postJSON(t, server.URL+"/content-events/", api.ContentEventRequest{
			Event: api.EventInsert,
			Item: &api.ContentItemPayload{
				ID:       uuid.New().String(),
				CourseID: courseID.String(),
				Type:     "page",
				Payload:  map[string]any{"body": "<img src='course/c1/assets/img1.jpg'>"},
			},
		})
		insert.Body.Close()
		require.Equal(t, http.StatusOK, insert.StatusCode)

		del := postJSON(t, server.URL+"/content-events/", api.ContentEventRequest{
			Event: api.EventDelete,
			Items: []api.ContentItemPayload{
				{ID: courseID.String(), Type: "course"},
			},
		})
		del.Body.Close()
		require.Equal(t, http.StatusNoContent, del.StatusCode)

		links, err := ledger.ListByCourse(ctx, courseID)
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("UnknownEventRejected", func(t *testing.T) {
		server, _ := newTestServer(t)
		resp := postJSON(t, server.URL+"/content-events/", api.ContentEventRequest{Event: "upsert"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("MissingItemRejected", func(t *testing.T) {
		server, _ := newTestServer(t)
		resp := postJSON(t, server.URL+"/content-events/", api.ContentEventRequest{Event: api.EventInsert})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("MissingCourseIDRejected", func(t *testing.T) {
		server, _ := newTestServer(t)
		resp := postJSON(t, server.URL+"/content-events/", api.ContentEventRequest{
			Event: api.EventInsert,
			Item: &api.ContentItemPayload{
				ID:   uuid.New().String(),
				Type: "page",
			},
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
