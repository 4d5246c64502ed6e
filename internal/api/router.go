// Package api exposes the solver over HTTP.
package api

import (
	"log"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/joshharrison/critpath/internal/cpm"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(config cpm.Config, logger *log.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(Recovery(logger))
	r.Use(Logging(logger))
	r.Use(chimiddleware.RealIP)

	scheduleHandler := NewScheduleHandler(config)

	r.Get("/v1/health", scheduleHandler.Health)
	r.Post("/v1/schedule", scheduleHandler.Schedule)

	return r
}
