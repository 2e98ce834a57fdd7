package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/course-assets/pkg/courseassets"
)

// Content event names accepted by the events route.
const (
	EventInsert  = "insert"
	EventUpdate  = "update"
	EventReplace = "replace"
	EventDelete  = "delete"
)

// EventsHandler receives content lifecycle events from the
// content-management collaborator and feeds them to the reconciliation
// engine. Schema validation and permissions stay with the sender; this
// handler checks identifying fields only.
type EventsHandler struct {
	service courseassets.Service
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(service courseassets.Service) *EventsHandler {
	return &EventsHandler{service: service}
}

// Routes returns the routes for content events
func (h *EventsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleEvent)
	return r
}

// ContentItemPayload is the wire form of a content item in an event
type ContentItemPayload struct {
	ID       string         `json:"id"`
	CourseID string         `json:"course_id"`
	Type     string         `json:"type"`
	Payload  map[string]any `json:"payload"`
}

// ContentEventRequest is the request body for a content lifecycle event
type ContentEventRequest struct {
	Event    string               `json:"event"`
	Item     *ContentItemPayload  `json:"item,omitempty"`
	Previous *ContentItemPayload  `json:"previous,omitempty"`
	Items    []ContentItemPayload `json:"items,omitempty"`
}

func (p *ContentItemPayload) toItem() (courseassets.ContentItem, error) {
	item := courseassets.ContentItem{Type: p.Type, Payload: p.Payload}

	id, err := parseID(p.ID, "id")
	if err != nil {
		return item, err
	}
	item.ID = id

	// Course-typed items are their own course; course_id may be absent.
	if p.CourseID != "" {
		courseID, err := uuid.Parse(p.CourseID)
		if err != nil {
			return item, &courseassets.ValidationError{Field: "course_id"}
		}
		item.CourseID = courseID
	}
	return item, nil
}

// HandleEvent dispatches one content lifecycle event to the engine
func (h *EventsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var req ContentEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Event {
	case EventInsert:
		h.handleInsert(w, r, req)
	case EventUpdate, EventReplace:
		h.handleUpdate(w, r, req)
	case EventDelete:
		h.handleDelete(w, r, req)
	default:
		http.Error(w, "Unknown event type", http.StatusBadRequest)
	}
}

func (h *EventsHandler) handleInsert(w http.ResponseWriter, r *http.Request, req ContentEventRequest) {
	if req.Item == nil {
		http.Error(w, "Missing item", http.StatusBadRequest)
		return
	}
	item, err := req.Item.toItem()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.ContentInserted(r.Context(), item)
	if err != nil {
		h.writeEngineError(w, "insert", item, err)
		return
	}
	render.JSON(w, r, result)
}

func (h *EventsHandler) handleUpdate(w http.ResponseWriter, r *http.Request, req ContentEventRequest) {
	if req.Item == nil {
		http.Error(w, "Missing item", http.StatusBadRequest)
		return
	}
	item, err := req.Item.toItem()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var previous courseassets.ContentItem
	if req.Previous != nil {
		if previous, err = req.Previous.toItem(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var result *courseassets.ReconcileResult
	if req.Event == EventReplace {
		result, err = h.service.ContentReplaced(r.Context(), previous, item)
	} else {
		result, err = h.service.ContentUpdated(r.Context(), previous, item)
	}
	if err != nil {
		h.writeEngineError(w, req.Event, item, err)
		return
	}
	render.JSON(w, r, result)
}

func (h *EventsHandler) handleDelete(w http.ResponseWriter, r *http.Request, req ContentEventRequest) {
	if len(req.Items) == 0 {
		http.Error(w, "Missing items", http.StatusBadRequest)
		return
	}

	items := make([]courseassets.ContentItem, 0, len(req.Items))
	for i := range req.Items {
		item, err := req.Items[i].toItem()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		items = append(items, item)
	}

	if err := h.service.ContentDeleted(r.Context(), items); err != nil {
		if courseassets.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Content delete event failed", "error", err)
		http.Error(w, "Failed to process delete event", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventsHandler) writeEngineError(w http.ResponseWriter, event string, item courseassets.ContentItem, err error) {
	if courseassets.IsValidationError(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Error("Content event reconciliation failed",
		"event", event,
		"course_id", item.EffectiveCourseID(),
		"content_id", item.ID,
		"error", err)
	http.Error(w, "Failed to reconcile content event", http.StatusInternalServerError)
}
