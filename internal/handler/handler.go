// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
	"github.com/Shivanand-hulikatti/event-nexus/internal/repository"
	"github.com/Shivanand-hulikatti/event-nexus/internal/service"
)

// EventHandler serves the catalog and registration endpoints.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain errors to status codes. Anything unexpected
// is logged and reported as a 500 with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, model.ErrEventFull):
		writeError(w, http.StatusConflict, model.ErrEventFull.Error())
	case errors.Is(err, service.ErrInvalidProfile), errors.Is(err, service.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.ErrorErr(log.CatHTTP, fallback, err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListEventsResponse is the body of GET /events.
type ListEventsResponse struct {
	Events []service.Card `json:"events"`
	Count  int            `json:"count"`
}

// ListEvents handles GET /events?q=&category=
// Returns the cards matching the query and category for the current viewer.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	criteria := model.FilterCriteria{
		Query:    r.URL.Query().Get("q"),
		Category: model.Category(r.URL.Query().Get("category")),
	}
	if criteria.Category == "" {
		criteria.Category = model.CategoryAll
	}

	cards, err := h.svc.ListCards(r.Context(), ViewerID(r.Context()), criteria)
	if err != nil {
		writeServiceError(w, r, err, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, ListEventsResponse{Events: cards, Count: len(cards)})
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	card, err := h.svc.GetCard(r.Context(), ViewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get event")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Register handles POST /events/{id}/register
// Returns 409 when the event is fully booked.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Register(r.Context(), ViewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to register")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Unregister handles DELETE /events/{id}/register
func (h *EventHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Unregister(r.Context(), ViewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to unregister")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Toggle handles POST /events/{id}/toggle
func (h *EventHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Toggle(r.Context(), ViewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to toggle registration")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Like handles POST /events/{id}/like
func (h *EventHandler) Like(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ToggleLike(r.Context(), ViewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to update favorites")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Categories handles GET /categories
func (h *EventHandler) Categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Categories())
}

// ─── Static endpoints ─────────────────────────────────────────────────────────

// Roles handles GET /roles
// Returns where each role's entry point leads.
func Roles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.Roles)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
