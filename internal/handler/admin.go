package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
	"github.com/Shivanand-hulikatti/event-nexus/internal/service"
)

// AdminHandler serves the organizer dashboard.
type AdminHandler struct {
	svc *service.AdminService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// ActionResponse is the body of POST /admin/events/{id}/{action}.
type ActionResponse struct {
	Notice *model.Notice `json:"notice"`
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Events handles GET /admin/events
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Overview(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// EventAction handles POST /admin/events/{id}/{action}
// view, edit and delete are acknowledged but never change the catalog.
func (h *AdminHandler) EventAction(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.EventAction(r.Context(), ViewerID(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "action"))
	if err != nil {
		writeServiceError(w, r, err, "failed to apply action")
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Notice: n})
}
