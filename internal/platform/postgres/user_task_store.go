package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgresUserTaskStore implements the store.UserTaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserTaskStore creates a new PostgreSQL implementation of the
// UserTaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresUserTaskStore(db store.DBTX, logger *slog.Logger) *PostgresUserTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_task_store")),
	}
}

// Ensure PostgresUserTaskStore implements store.UserTaskStore interface
var _ store.UserTaskStore = (*PostgresUserTaskStore)(nil)

// WithTx implements store.UserTaskStore.WithTx
func (s *PostgresUserTaskStore) WithTx(tx *sql.Tx) store.UserTaskStore {
	return &PostgresUserTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.UserTaskStore.Create
// Returns store.ErrMemberAlreadyAssigned when a user task already exists for
// the (task, member) pair and store.ErrInvalidEntity when the base task or
// assignee does not exist.
func (s *PostgresUserTaskStore) Create(ctx context.Context, userTask *domain.UserTask) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := userTask.Validate(); err != nil {
		log.Warn("user task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_task_id", userTask.ID.String()))
		return err
	}

	query := `
		INSERT INTO user_tasks (id, task_id, assigned_to, status, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		userTask.ID,
		userTask.BaseTaskID,
		userTask.AssignedTo,
		userTask.Status,
		userTask.Deadline,
		userTask.CreatedAt,
		userTask.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("member already has a user task for this base task",
				slog.String("task_id", userTask.BaseTaskID.String()),
				slog.String("assigned_to", userTask.AssignedTo.String()))
			return fmt.Errorf("%w: %v", store.ErrMemberAlreadyAssigned, err)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during user task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", userTask.BaseTaskID.String()))
			return fmt.Errorf("%w: base task or assignee not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create user task",
			slog.String("error", err.Error()),
			slog.String("user_task_id", userTask.ID.String()))
		return MapError(err)
	}

	log.Info("user task created successfully",
		slog.String("user_task_id", userTask.ID.String()),
		slog.String("task_id", userTask.BaseTaskID.String()),
		slog.String("assigned_to", userTask.AssignedTo.String()))
	return nil
}

// GetByID implements store.UserTaskStore.GetByID
// Returns store.ErrUserTaskNotFound if the user task does not exist.
func (s *PostgresUserTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := userTaskSelect + ` WHERE ut.id = $1`

	userTask, err := scanUserTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user task not found", slog.String("user_task_id", id.String()))
			return nil, store.ErrUserTaskNotFound
		}
		log.Error("failed to get user task by ID",
			slog.String("error", err.Error()),
			slog.String("user_task_id", id.String()))
		return nil, MapError(err)
	}
	return userTask, nil
}

// ListAll implements store.UserTaskStore.ListAll
func (s *PostgresUserTaskStore) ListAll(ctx context.Context) ([]*domain.UserTask, error) {
	query := userTaskSelect + ` ORDER BY ut.created_at DESC`
	return s.queryUserTasks(ctx, query)
}

// ListForUser implements store.UserTaskStore.ListForUser
// A user task is visible to a user when they are the assignee or created the
// base task.
func (s *PostgresUserTaskStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserTask, error) {
	query := userTaskSelect + `
		JOIN tasks t ON t.id = ut.task_id
		WHERE ut.assigned_to = $1 OR t.creator_id = $1
		ORDER BY ut.created_at DESC`
	return s.queryUserTasks(ctx, query, userID)
}

// ListByTask implements store.UserTaskStore.ListByTask
func (s *PostgresUserTaskStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.UserTask, error) {
	query := userTaskSelect + `
		WHERE ut.task_id = $1
		ORDER BY ut.created_at ASC`
	return s.queryUserTasks(ctx, query, taskID)
}

// Update implements store.UserTaskStore.Update
// Only status and deadline are written; the base task and assignee are
// immutable. Returns store.ErrUserTaskNotFound if the user task does not
// exist.
func (s *PostgresUserTaskStore) Update(ctx context.Context, userTask *domain.UserTask) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := userTask.Validate(); err != nil {
		log.Warn("user task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_task_id", userTask.ID.String()))
		return err
	}

	query := `
		UPDATE user_tasks
		SET status = $1, deadline = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		userTask.Status,
		userTask.Deadline,
		userTask.UpdatedAt,
		userTask.ID,
	)
	if err != nil {
		log.Error("failed to update user task",
			slog.String("error", err.Error()),
			slog.String("user_task_id", userTask.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrUserTaskNotFound)
}

// Delete implements store.UserTaskStore.Delete
// Returns store.ErrUserTaskNotFound if the user task does not exist.
func (s *PostgresUserTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM user_tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user task",
			slog.String("error", err.Error()),
			slog.String("user_task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserTaskNotFound); err != nil {
		return err
	}

	log.Info("user task deleted", slog.String("user_task_id", id.String()))
	return nil
}

const userTaskSelect = `
	SELECT ut.id, ut.task_id, ut.assigned_to, ut.status, ut.deadline,
	       ut.created_at, ut.updated_at
	FROM user_tasks ut`

func scanUserTask(row rowScanner) (*domain.UserTask, error) {
	var userTask domain.UserTask
	var deadline sql.NullTime

	err := row.Scan(
		&userTask.ID,
		&userTask.BaseTaskID,
		&userTask.AssignedTo,
		&userTask.Status,
		&deadline,
		&userTask.CreatedAt,
		&userTask.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		t := deadline.Time
		userTask.Deadline = &t
	}
	return &userTask, nil
}

func (s *PostgresUserTaskStore) queryUserTasks(ctx context.Context, query string, args ...any) ([]*domain.UserTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query user tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	userTasks := []*domain.UserTask{}
	for rows.Next() {
		userTask, err := scanUserTask(rows)
		if err != nil {
			log.Error("failed to scan user task row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		userTasks = append(userTasks, userTask)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating user task rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return userTasks, nil
}
