package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task together with its assigned-member rows.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if the creator or a member does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID, including its
	// assigned-member set. Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListAll retrieves every task, newest first. Admin-only callers.
	ListAll(ctx context.Context) ([]*domain.Task, error)

	// ListForUser retrieves the tasks the given user created or is assigned
	// to, newest first. Returns an empty slice when none match.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update saves changes to an existing task's mutable fields. The creator
	// and assigned-member set are not touched by this method.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// AddMember adds a user to the task's assigned-member set. Adding a
	// member that is already assigned is a no-op.
	AddMember(ctx context.Context, taskID, userID uuid.UUID) error

	// Delete removes the task row. Callers are responsible for deleting the
	// task's user tasks and subtasks first within the same transaction; the
	// schema's ON DELETE CASCADE constraints act as a backstop.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service via RunInTransaction).
	WithTx(tx *sql.Tx) TaskStore
}
