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

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It inserts the task row together with one task_members row per assigned
// member. Returns store.ErrInvalidEntity if the creator or a member does not
// exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	attachments, err := json.Marshal(task.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	query := `
		INSERT INTO tasks (id, creator_id, title, description, priority, status,
		                   deadline, attachments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.CreatorID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.Deadline,
		attachments,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("creator_id", task.CreatorID.String()))
			return fmt.Errorf("%w: creator with ID %s not found",
				store.ErrInvalidEntity, task.CreatorID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	for _, memberID := range task.AssignedMemberIDs {
		if err := s.AddMember(ctx, task.ID, memberID); err != nil {
			return err
		}
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.Int("member_count", len(task.AssignedMemberIDs)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := taskSelect + ` WHERE t.id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	if err := s.loadMembers(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListAll implements store.TaskStore.ListAll
func (s *PostgresTaskStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	query := taskSelect + ` ORDER BY t.created_at DESC`
	return s.queryTasks(ctx, query)
}

// ListForUser implements store.TaskStore.ListForUser
// A task is visible to a user when they created it or appear in its
// assigned-member set.
func (s *PostgresTaskStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := taskSelect + `
		WHERE t.creator_id = $1
		   OR EXISTS (
		        SELECT 1 FROM task_members tm
		        WHERE tm.task_id = t.id AND tm.user_id = $1
		   )
		ORDER BY t.created_at DESC`
	return s.queryTasks(ctx, query, userID)
}

// Update implements store.TaskStore.Update
// Only mutable fields are written; creator_id is never touched.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	attachments, err := json.Marshal(task.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4,
		    deadline = $5, attachments = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.Deadline,
		attachments,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// AddMember implements store.TaskStore.AddMember
// Adding a member that is already assigned is a no-op.
func (s *PostgresTaskStore) AddMember(ctx context.Context, taskID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO task_members (task_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, user_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation adding task member",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", userID.String()))
			return fmt.Errorf("%w: member with ID %s not found",
				store.ErrInvalidEntity, userID)
		}
		log.Error("failed to add task member",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

const taskSelect = `
	SELECT t.id, t.creator_id, t.title, t.description, t.priority, t.status,
	       t.deadline, t.attachments, t.created_at, t.updated_at
	FROM tasks t`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var deadline sql.NullTime
	var attachments []byte

	err := row.Scan(
		&task.ID,
		&task.CreatorID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&deadline,
		&attachments,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		t := deadline.Time
		task.Deadline = &t
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &task.Attachments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
	}
	if task.Attachments == nil {
		task.Attachments = []string{}
	}
	return &task, nil
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	for _, task := range tasks {
		if err := s.loadMembers(ctx, task); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// loadMembers populates the task's assigned-member set from task_members.
func (s *PostgresTaskStore) loadMembers(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id FROM task_members
		WHERE task_id = $1
		ORDER BY user_id
	`
	rows, err := s.db.QueryContext(ctx, query, task.ID)
	if err != nil {
		log.Error("failed to query task members",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	members := []uuid.UUID{}
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			log.Error("failed to scan task member row",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return MapError(err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return MapError(err)
	}

	task.AssignedMemberIDs = members
	return nil
}
