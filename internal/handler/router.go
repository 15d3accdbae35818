package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/event-nexus/internal/service"
)

// RouterConfig is what the router needs beyond the services.
type RouterConfig struct {
	CORSOrigins   []string
	DefaultViewer string
}

// Services groups the handlers' dependencies.
type Services struct {
	Events   *service.EventService
	Profiles *service.ProfileService
	Admin    *service.AdminService
	Notices  NoticeSource
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig, svc Services) http.Handler {
	events := NewEventHandler(svc.Events)
	profiles := NewProfileHandler(svc.Profiles)
	admin := NewAdminHandler(svc.Admin)
	notifications := NewNotificationHandler(svc.Notices, 0)

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(Viewer(cfg.DefaultViewer))
	r.Use(Logger)

	r.Get("/health", HealthCheck)
	r.Get("/roles", Roles)
	r.Get("/categories", events.Categories)
	r.Get("/notifications", notifications.Stream)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", events.ListEvents)
		r.Get("/{id}", events.GetEvent)
		r.Post("/{id}/register", events.Register)
		r.Delete("/{id}/register", events.Unregister)
		r.Post("/{id}/toggle", events.Toggle)
		r.Post("/{id}/like", events.Like)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Get("/", profiles.Get)
		r.Put("/", profiles.Update)
		r.Get("/registrations", profiles.Registrations)
	})
	r.Delete("/session", profiles.EndSession)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/stats", admin.Stats)
		r.Get("/events", admin.Events)
		r.Post("/events/{id}/{action}", admin.EventAction)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
