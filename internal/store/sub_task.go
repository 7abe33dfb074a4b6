package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// SubTaskStore defines the interface for subtask data persistence.
type SubTaskStore interface {
	// Create saves a new subtask under its parent task or user task.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if the parent does not exist.
	Create(ctx context.Context, subTask *domain.SubTask) error

	// GetByID retrieves a subtask by its unique ID, including its stored
	// parent reference. Returns ErrSubTaskNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SubTask, error)

	// ListByParent retrieves all subtasks under the given parent in
	// creation order. Returns an empty slice when the parent has none.
	ListByParent(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) ([]*domain.SubTask, error)

	// UpdateStatus persists only the status field of an existing subtask.
	// Returns ErrSubTaskNotFound if the subtask does not exist and a
	// validation error if the status is not a valid enum value.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error

	// Update saves changes to a subtask's mutable fields (title, status,
	// deadline, attachments). The parent reference is never updated.
	// Returns ErrSubTaskNotFound if the subtask does not exist.
	Update(ctx context.Context, subTask *domain.SubTask) error

	// Delete removes a single subtask.
	// Returns ErrSubTaskNotFound if the subtask does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByParent removes every subtask under the given parent and
	// returns the number deleted. Used by cascading deletes.
	DeleteByParent(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) (int64, error)

	// WithTx returns a new SubTaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) SubTaskStore
}
