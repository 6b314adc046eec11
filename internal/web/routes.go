package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/yp-ac/album-maker/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	pipelineHandler := handlers.NewPipelineHandler(s.config)
	runsHandler := handlers.NewRunsHandler(s.config, s.store)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Stateless execution: compute and return without persisting.
		r.Post("/pipeline", pipelineHandler.Run)

		// Persisted runs.
		r.Post("/runs", runsHandler.Create)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)
		r.Delete("/runs/{id}", runsHandler.Delete)
	})
}
