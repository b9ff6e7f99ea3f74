package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Post("/users", apiHandler.CreateUserHandler)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", apiHandler.GetUserHandler)
			r.Post("/goals", apiHandler.AddGoalHandler)
			r.Get("/goals", apiHandler.ListGoalsHandler)
			r.Post("/plans", apiHandler.GeneratePlanHandler)
			r.Post("/chat", apiHandler.ChatHandler)
			r.Get("/chat", apiHandler.ChatHistoryHandler)
		})
	})

	return r
}
