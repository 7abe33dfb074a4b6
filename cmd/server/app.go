package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// application holds the wired dependency graph: one database handle passed
// explicitly into every store, services composed over the stores, and the
// token service shared between the auth endpoints and the middleware.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService      auth.JWTService
	authService     service.AuthService
	taskService     service.TaskService
	userTaskService service.UserTaskService
	subTaskService  service.SubTaskService
}

// newApplication wires stores and services from the configuration and the
// open database handle.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, logger, cfg.Auth.BcryptCost)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	userTaskStore := postgres.NewPostgresUserTaskStore(db, logger)
	subTaskStore := postgres.NewPostgresSubTaskStore(db, logger)

	return &application{
		config:     cfg,
		logger:     logger,
		db:         db,
		jwtService: jwtService,
		authService: service.NewAuthService(
			db, userStore, jwtService, auth.NewBcryptVerifier(), logger),
		taskService: service.NewTaskService(
			db, taskStore, userTaskStore, subTaskStore, userStore, logger),
		userTaskService: service.NewUserTaskService(
			db, taskStore, userTaskStore, subTaskStore, userStore, logger),
		subTaskService: service.NewSubTaskService(
			db, taskStore, userTaskStore, subTaskStore, logger),
	}, nil
}
