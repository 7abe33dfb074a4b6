package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// UserTaskStore defines the interface for user task data persistence.
type UserTaskStore interface {
	// Create saves a new user task. It handles domain validation internally.
	// Returns ErrMemberAlreadyAssigned if a user task already exists for the
	// (task, member) pair, and ErrInvalidEntity if the base task or assignee
	// does not exist.
	Create(ctx context.Context, userTask *domain.UserTask) error

	// GetByID retrieves a user task by its unique ID.
	// Returns ErrUserTaskNotFound if the user task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserTask, error)

	// ListAll retrieves every user task, newest first. Admin-only callers.
	ListAll(ctx context.Context) ([]*domain.UserTask, error)

	// ListForUser retrieves the user tasks the given user is assigned to or
	// whose base task the user created, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserTask, error)

	// ListByTask retrieves all user tasks belonging to the given base task,
	// oldest first (creation order).
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.UserTask, error)

	// Update saves changes to an existing user task's mutable fields
	// (status, deadline). BaseTaskID and AssignedTo are never updated.
	// Returns ErrUserTaskNotFound if the user task does not exist.
	Update(ctx context.Context, userTask *domain.UserTask) error

	// Delete removes the user task row. Callers delete its personal subtasks
	// first within the same transaction.
	// Returns ErrUserTaskNotFound if the user task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserTaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) UserTaskStore
}
