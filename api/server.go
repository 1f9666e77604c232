/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the upload/reporting frontend

ROUTE GROUPS:
  /api/reservations/*   Dataset load, list, reset
  /api/conflicts/*      Detection and resolution
  /api/statistics/*     Statistics and cache control
  /api/health           Liveness

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", h.ListDataset)
			r.Post("/batch", h.LoadBatch)
			r.Post("/reset", h.ResetDataset)
		})

		r.Route("/conflicts", func(r chi.Router) {
			r.Post("/detect", h.DetectConflicts)
		})

		r.Route("/statistics", func(r chi.Router) {
			r.Get("/", h.GetStatistics)
			r.Post("/cache/clear", h.ClearStatsCache)
		})

		r.Get("/health", h.Health)
	})

	return r
}
