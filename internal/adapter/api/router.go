package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/V4T54L/udp-logview/internal/adapter/api/handler"
	"github.com/V4T54L/udp-logview/internal/adapter/api/middleware"
)

// RouterDeps are the collaborators mounted by NewRouter. Metrics and Events
// are optional.
type RouterDeps struct {
	Loop    handler.Loop
	Events  http.Handler
	Metrics http.Handler
	APIKey  string
	Logger  *slog.Logger
}

// NewRouter creates the control API router.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(chimw.Recoverer)

	control := handler.NewControlHandler(deps.Loop, deps.Logger)

	r.Get("/health", control.HealthCheck)
	r.Get("/stats", control.GetStats)
	r.Get("/records", control.GetRecords)
	if deps.Events != nil {
		r.Method(http.MethodGet, "/events", deps.Events)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKey(deps.APIKey, deps.Logger))
		r.Put("/filter", control.SetFilter)
		r.Post("/pause", control.Pause)
		r.Post("/resume", control.Resume)
		r.Post("/clear", control.Clear)
		r.Post("/export", control.Export)
	})

	return r
}
