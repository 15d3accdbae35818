package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
	"github.com/Shivanand-hulikatti/event-nexus/internal/service"
)

// ProfileHandler serves the viewer's profile page.
type ProfileHandler struct {
	svc *service.ProfileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// UpdateProfileResponse is the body of PUT /profile.
type UpdateProfileResponse struct {
	Profile model.Profile `json:"profile"`
	Notice  *model.Notice `json:"notice,omitempty"`
}

// Get handles GET /profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), ViewerID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update handles PUT /profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, notice, err := h.svc.Update(r.Context(), ViewerID(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, UpdateProfileResponse{Profile: p, Notice: notice})
}

// Registrations handles GET /profile/registrations
func (h *ProfileHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.Registrations(r.Context(), ViewerID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "failed to list registrations")
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// EndSession handles DELETE /session
func (h *ProfileHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	h.svc.EndSession(r.Context(), ViewerID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
