package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/course-assets/pkg/courseassets"
)

// ReferenceHandler handles HTTP requests for the legacy courseassets
// reference routes.
type ReferenceHandler struct {
	service courseassets.Service
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(service courseassets.Service) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

// Routes returns the routes for reference links
func (h *ReferenceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.InsertReference)
	r.Delete("/", h.DeleteReference)
	r.Get("/course/{courseID}", h.ListCourseReferences)
	r.Get("/content/{courseID}/{contentID}", h.GetReferences)
	r.Get("/usage/{assetID}", h.AssetUsage)

	return r
}

// ReferenceRequest is the request body for direct insert/delete of a reference
type ReferenceRequest struct {
	CourseID  string `json:"course_id"`
	ContentID string `json:"content_id"`
	AssetID   string `json:"asset_id"`
}

// ReferenceResponse is the response body for a reference link
type ReferenceResponse struct {
	ID             string    `json:"id"`
	CourseID       string    `json:"course_id"`
	ContentID      string    `json:"content_id"`
	AssetID        string    `json:"asset_id"`
	ReferenceCount int       `json:"reference_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toReferenceResponse(link *courseassets.ReferenceLink) ReferenceResponse {
	return ReferenceResponse{
		ID:             link.ID.String(),
		CourseID:       link.CourseID.String(),
		ContentID:      link.ContentID.String(),
		AssetID:        link.AssetID.String(),
		ReferenceCount: link.ReferenceCount,
		CreatedAt:      link.CreatedAt,
		UpdatedAt:      link.UpdatedAt,
	}
}

func (r ReferenceRequest) key() (courseassets.ReferenceKey, error) {
	var key courseassets.ReferenceKey
	var err error

	if key.CourseID, err = parseID(r.CourseID, "course_id"); err != nil {
		return key, err
	}
	if key.ContentID, err = parseID(r.ContentID, "content_id"); err != nil {
		return key, err
	}
	if key.AssetID, err = parseID(r.AssetID, "asset_id"); err != nil {
		return key, err
	}
	return key, nil
}

func parseID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, &courseassets.ValidationError{Field: field}
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &courseassets.ValidationError{Field: field}
	}
	return id, nil
}

// InsertReference creates or increments a single reference link
func (h *ReferenceHandler) InsertReference(w http.ResponseWriter, r *http.Request) {
	var req ReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key, err := req.key()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	link, err := h.service.InsertReference(r.Context(), courseassets.InsertReferenceRequest(key))
	if err != nil {
		slog.Error("Failed to insert reference", "course_id", key.CourseID, "content_id", key.ContentID, "asset_id", key.AssetID, "error", err)
		http.Error(w, "Failed to insert reference", http.StatusInternalServerError)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toReferenceResponse(link))
}

// DeleteReference decrements a single reference link, removing it at zero
func (h *ReferenceHandler) DeleteReference(w http.ResponseWriter, r *http.Request) {
	var req ReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key, err := req.key()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.service.DeleteReference(r.Context(), courseassets.DeleteReferenceRequest(key))
	if err != nil {
		if errors.Is(err, courseassets.ErrReferenceNotFound) {
			http.Error(w, "Reference not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete reference", "course_id", key.CourseID, "content_id", key.ContentID, "asset_id", key.AssetID, "error", err)
		http.Error(w, "Failed to delete reference", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCourseReferences returns all reference links for a course
func (h *ReferenceHandler) ListCourseReferences(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseID(chi.URLParam(r, "courseID"), "course_id")
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	links, err := h.service.ListCourseReferences(r.Context(), courseID)
	if err != nil {
		slog.Error("Failed to list course references", "course_id", courseID, "error", err)
		http.Error(w, "Failed to list course references", http.StatusInternalServerError)
		return
	}

	resp := make([]ReferenceResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, toReferenceResponse(link))
	}
	render.JSON(w, r, resp)
}

// GetReferences returns all reference links for a content item
func (h *ReferenceHandler) GetReferences(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseID(chi.URLParam(r, "courseID"), "course_id")
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	contentID, err := parseID(chi.URLParam(r, "contentID"), "content_id")
	if err != nil {
		http.Error(w, "Invalid content ID", http.StatusBadRequest)
		return
	}

	links, err := h.service.GetReferences(r.Context(), courseID, contentID)
	if err != nil {
		slog.Error("Failed to get references", "course_id", courseID, "content_id", contentID, "error", err)
		http.Error(w, "Failed to get references", http.StatusInternalServerError)
		return
	}

	resp := make([]ReferenceResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, toReferenceResponse(link))
	}
	render.JSON(w, r, resp)
}

// AssetUsage returns the usage summary for an asset
func (h *ReferenceHandler) AssetUsage(w http.ResponseWriter, r *http.Request) {
	assetID, err := parseID(chi.URLParam(r, "assetID"), "asset_id")
	if err != nil {
		http.Error(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	usage, err := h.service.AssetUsage(r.Context(), assetID)
	if err != nil {
		slog.Error("Failed to get asset usage", "asset_id", assetID, "error", err)
		http.Error(w, "Failed to get asset usage", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, usage)
}
