package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taskboard/taskboard-api/internal/api"
	"github.com/taskboard/taskboard-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace)

	authHandler := app.authHandler()
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Public authentication endpoints.
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Everything else requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(app.authMiddleware.Authenticate)

			r.Get("/auth/profile", authHandler.Profile)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Patch("/{id}/status", taskHandler.UpdateStatus)
				r.Patch("/{id}/priority", taskHandler.UpdatePriority)
				r.Delete("/{id}", taskHandler.Delete)
			})

			// Admin-only user management.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/", userHandler.List)
				r.Put("/{id}/role", userHandler.SetRole)
				r.Put("/{id}/active", userHandler.SetActive)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
