package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/taskboard-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskboard-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	errorDetail := !app.config.Server.IsProduction()

	authHandler := api.NewAuthHandler(app.authService, app.logger, errorDetail)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger, errorDetail)
	userTaskHandler := api.NewUserTaskHandler(app.userTaskService, app.logger, errorDetail)
	subTaskHandler := api.NewSubTaskHandler(app.subTaskService, app.logger, errorDetail)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			// Task endpoints
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
			r.Get("/tasks/{id}/subtasks", taskHandler.ListSubtasks)

			// User task endpoints
			r.Post("/user-tasks", userTaskHandler.Create)
			r.Get("/user-tasks", userTaskHandler.List)
			r.Get("/user-tasks/{id}", userTaskHandler.Get)
			r.Put("/user-tasks/{id}", userTaskHandler.Update)
			r.Patch("/user-tasks/{id}", userTaskHandler.Update)
			r.Delete("/user-tasks/{id}", userTaskHandler.Delete)
			r.Get("/user-tasks/{id}/subtasks", userTaskHandler.ListSubtasks)
			r.Post("/user-tasks/{id}/subtasks", userTaskHandler.AddSubtask)

			// Subtask endpoints
			r.Post("/subtasks", subTaskHandler.Create)
			r.Get("/subtasks/{id}", subTaskHandler.Get)
			r.Put("/subtasks/{id}", subTaskHandler.Update)
			r.Patch("/subtasks/{id}/{status}", subTaskHandler.UpdateStatus)
			r.Delete("/subtasks/{id}", subTaskHandler.Delete)
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
