package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgresSubTaskStore implements the store.SubTaskStore interface
// using a PostgreSQL database as the storage backend.
//
// A subtask's parent reference is stored as two nullable foreign key columns
// (task_id, user_task_id) of which exactly one is set, enforced by a CHECK
// constraint. The store translates between that representation and the
// domain's (ParentType, ParentID) pair.
type PostgresSubTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubTaskStore creates a new PostgreSQL implementation of the
// SubTaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresSubTaskStore(db store.DBTX, logger *slog.Logger) *PostgresSubTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "sub_task_store")),
	}
}

// Ensure PostgresSubTaskStore implements store.SubTaskStore interface
var _ store.SubTaskStore = (*PostgresSubTaskStore)(nil)

// WithTx implements store.SubTaskStore.WithTx
func (s *PostgresSubTaskStore) WithTx(tx *sql.Tx) store.SubTaskStore {
	return &PostgresSubTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// parentColumns splits the domain parent reference into the two nullable
// foreign key columns.
func parentColumns(parentType domain.ParentType, parentID uuid.UUID) (taskID, userTaskID uuid.NullUUID) {
	switch parentType {
	case domain.ParentTask:
		taskID = uuid.NullUUID{UUID: parentID, Valid: true}
	case domain.ParentUserTask:
		userTaskID = uuid.NullUUID{UUID: parentID, Valid: true}
	}
	return taskID, userTaskID
}

// parentColumn returns the column name holding the given parent type.
func parentColumn(parentType domain.ParentType) string {
	if parentType == domain.ParentTask {
		return "task_id"
	}
	return "user_task_id"
}

// Create implements store.SubTaskStore.Create
// Returns store.ErrInvalidEntity if the parent does not exist.
func (s *PostgresSubTaskStore) Create(ctx context.Context, subTask *domain.SubTask) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subTask.Validate(); err != nil {
		log.Warn("subtask validation failed during create",
			slog.String("error", err.Error()),
			slog.String("sub_task_id", subTask.ID.String()))
		return err
	}

	attachments, err := json.Marshal(subTask.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	taskID, userTaskID := parentColumns(subTask.ParentType, subTask.ParentID)

	query := `
		INSERT INTO sub_tasks (id, task_id, user_task_id, title, status,
		                       deadline, attachments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		subTask.ID,
		taskID,
		userTaskID,
		subTask.Title,
		subTask.Status,
		subTask.Deadline,
		attachments,
		subTask.CreatedAt,
		subTask.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during subtask creation",
				slog.String("error", err.Error()),
				slog.String("parent_type", string(subTask.ParentType)),
				slog.String("parent_id", subTask.ParentID.String()))
			return fmt.Errorf("%w: parent %s %s not found",
				store.ErrInvalidEntity, subTask.ParentType, subTask.ParentID)
		}
		log.Error("failed to create subtask",
			slog.String("error", err.Error()),
			slog.String("sub_task_id", subTask.ID.String()))
		return MapError(err)
	}

	log.Info("subtask created successfully",
		slog.String("sub_task_id", subTask.ID.String()),
		slog.String("parent_type", string(subTask.ParentType)),
		slog.String("parent_id", subTask.ParentID.String()))
	return nil
}

// GetByID implements store.SubTaskStore.GetByID
// Returns store.ErrSubTaskNotFound if the subtask does not exist.
func (s *PostgresSubTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SubTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := subTaskSelect + ` WHERE st.id = $1`

	subTask, err := scanSubTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subtask not found", slog.String("sub_task_id", id.String()))
			return nil, store.ErrSubTaskNotFound
		}
		log.Error("failed to get subtask by ID",
			slog.String("error", err.Error()),
			slog.String("sub_task_id", id.String()))
		return nil, MapError(err)
	}
	return subTask, nil
}

// ListByParent implements store.SubTaskStore.ListByParent
func (s *PostgresSubTaskStore) ListByParent(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) ([]*domain.SubTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := subTaskSelect + ` WHERE st.` + parentColumn(parentType) + ` = $1
		ORDER BY st.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		log.Error("failed to query subtasks by parent",
			slog.String("error", err.Error()),
			slog.String("parent_type", string(parentType)),
			slog.String("parent_id", parentID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	subTasks := []*domain.SubTask{}
	for rows.Next() {
		subTask, err := scanSubTask(rows)
		if err != nil {
			log.Error("failed to scan subtask row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		subTasks = append(subTasks, subTask)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating subtask rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return subTasks, nil
}

// UpdateStatus implements store.SubTaskStore.UpdateStatus
// Returns store.ErrSubTaskNotFound if the subtask does not exist.
func (s *PostgresSubTaskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid status: %s", status))
	}

	query := `
		UPDATE sub_tasks
		SET status = $1, updated_at = now()
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		log.Error("failed to update subtask status",
			slog.String("error", err.Error()),
			slog.String("sub_task_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrSubTaskNotFound)
}

// Update implements store.SubTaskStore.Update
// The parent reference is never written. Returns store.ErrSubTaskNotFound if
// the subtask does not exist.
func (s *PostgresSubTaskStore) Update(ctx context.Context, subTask *domain.SubTask) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subTask.Validate(); err != nil {
		log.Warn("subtask validation failed during update",
			slog.String("error", err.Error()),
			slog.String("sub_task_id", subTask.ID.String()))
		return err
	}

	attachments, err := json.Marshal(subTask.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	query := `
		UPDATE sub_tasks
		SET title = $1, status = $2, deadline = $3, attachments = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		subTask.Title,
		subTask.Status,
		subTask.Deadline,
		attachments,
		subTask.UpdatedAt,
		subTask.ID,
	)
	if err != nil {
		log.Error("failed to update subtask",
			slog.String("error", err.Error()),
			slog.String("sub_task_id", subTask.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrSubTaskNotFound)
}

// Delete implements store.SubTaskStore.Delete
// Returns store.ErrSubTaskNotFound if the subtask does not exist.
func (s *PostgresSubTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM sub_tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete subtask",
			slog.String("error", err.Error()),
			slog.String("sub_task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrSubTaskNotFound); err != nil {
		return err
	}

	log.Info("subtask deleted", slog.String("sub_task_id", id.String()))
	return nil
}

// DeleteByParent implements store.SubTaskStore.DeleteByParent
// It removes every subtask under the parent and returns the number deleted.
func (s *PostgresSubTaskStore) DeleteByParent(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM sub_tasks WHERE ` + parentColumn(parentType) + ` = $1`
	result, err := s.db.ExecContext(ctx, query, parentID)
	if err != nil {
		log.Error("failed to delete subtasks by parent",
			slog.String("error", err.Error()),
			slog.String("parent_type", string(parentType)),
			slog.String("parent_id", parentID.String()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("subtasks deleted by parent",
		slog.String("parent_type", string(parentType)),
		slog.String("parent_id", parentID.String()),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

const subTaskSelect = `
	SELECT st.id, st.task_id, st.user_task_id, st.title, st.status,
	       st.deadline, st.attachments, st.created_at, st.updated_at
	FROM sub_tasks st`

func scanSubTask(row rowScanner) (*domain.SubTask, error) {
	var subTask domain.SubTask
	var taskID, userTaskID uuid.NullUUID
	var deadline sql.NullTime
	var attachments []byte

	err := row.Scan(
		&subTask.ID,
		&taskID,
		&userTaskID,
		&subTask.Title,
		&subTask.Status,
		&deadline,
		&attachments,
		&subTask.CreatedAt,
		&subTask.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch {
	case taskID.Valid:
		subTask.ParentType = domain.ParentTask
		subTask.ParentID = taskID.UUID
	case userTaskID.Valid:
		subTask.ParentType = domain.ParentUserTask
		subTask.ParentID = userTaskID.UUID
	}

	if deadline.Valid {
		t := deadline.Time
		subTask.Deadline = &t
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &subTask.Attachments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
	}
	if subTask.Attachments == nil {
		subTask.Attachments = []string{}
	}
	return &subTask, nil
}
