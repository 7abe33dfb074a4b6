package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// CreateSubTaskInput carries the fields for creating a global subtask on a
// task's shared checklist.
type CreateSubTaskInput struct {
	TaskID      uuid.UUID
	Title       string
	Status      domain.TaskStatus
	Deadline    *time.Time
	Attachments []string
}

// UpdateSubTaskInput is a partial update of a subtask's mutable fields. The
// parent reference is never updatable.
type UpdateSubTaskInput struct {
	Title       *string
	Status      *domain.TaskStatus
	Deadline    *time.Time
	DeadlineSet bool
	Attachments []string
}

// SubTaskService manages the checklist items hanging off tasks and user
// tasks. Every operation resolves the subtask's stored parent reference
// first; the parent decides who may see or change the subtask.
type SubTaskService interface {
	// Create adds a global subtask to a task's shared checklist. A zero
	// TaskID is a validation error. Admin, creator or any assigned member
	// may create; status defaults to pending and the deadline to the
	// task's.
	Create(ctx context.Context, principal domain.Principal, input CreateSubTaskInput) (*domain.SubTask, error)

	// GetByID returns the subtask. Viewing follows the parent: a task-owned
	// subtask is visible to admin, creator or any assigned member; a user
	// task-owned one to admin, the assignee or the base task's creator. A
	// subtask whose parent no longer exists is denied outright.
	GetByID(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID) (*domain.SubTask, error)

	// UpdateStatus persists only the subtask's status. For a user task-owned
	// subtask the assignee, the base task's creator or an admin may update;
	// for a task-owned subtask only the task's creator or an admin may.
	UpdateStatus(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID, status domain.TaskStatus) (*domain.SubTask, error)

	// Update applies a partial update of title, status, deadline and
	// attachments under the same permission rule as UpdateStatus.
	Update(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID, input UpdateSubTaskInput) (*domain.SubTask, error)

	// Delete removes the subtask. Only the owning task's creator (base
	// task's creator for personal subtasks) may delete; the assignee alone
	// may not.
	Delete(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID) error
}

// SubTaskServiceImpl implements the SubTaskService interface.
type SubTaskServiceImpl struct {
	db            *sql.DB
	taskStore     store.TaskStore
	userTaskStore store.UserTaskStore
	subTaskStore  store.SubTaskStore
	logger        *slog.Logger
}

// NewSubTaskService creates a new SubTaskService.
func NewSubTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	userTaskStore store.UserTaskStore,
	subTaskStore store.SubTaskStore,
	logger *slog.Logger,
) SubTaskService {
	return &SubTaskServiceImpl{
		db:            db,
		taskStore:     taskStore,
		userTaskStore: userTaskStore,
		subTaskStore:  subTaskStore,
		logger:        logger.With("component", "sub_task_service"),
	}
}

// subTaskParent is the resolved owner of a subtask. For a task-owned subtask
// userTask is nil and task is the owner; for a user task-owned subtask both
// are set, task being the base task.
type subTaskParent struct {
	task     *domain.Task
	userTask *domain.UserTask
}

// canView reports the read permission the parent grants.
func (p *subTaskParent) canView(principal domain.Principal) bool {
	if p.userTask != nil {
		return principal.IsAdmin() || p.userTask.IsAssignee(principal.ID) || p.task.IsCreator(principal.ID)
	}
	return p.task.CanBeViewedBy(principal)
}

// canUpdate reports the write permission the parent grants. Task-owned
// subtasks are writable by the creator only; plain membership grants no
// write access.
func (p *subTaskParent) canUpdate(principal domain.Principal) bool {
	if p.userTask != nil {
		return principal.IsAdmin() || p.userTask.IsAssignee(principal.ID) || p.task.IsCreator(principal.ID)
	}
	return p.task.CanBeManagedBy(principal)
}

// canDelete reports the delete permission the parent grants: the creator of
// the owning (base) task only.
func (p *subTaskParent) canDelete(principal domain.Principal) bool {
	return p.task.IsCreator(principal.ID)
}

// resolveParent loads the subtask's parent chain. A missing parent means the
// subtask is orphaned; access is denied rather than erroring, a defensive
// default for a state the schema should prevent.
func (s *SubTaskServiceImpl) resolveParent(ctx context.Context, subTask *domain.SubTask) (*subTaskParent, error) {
	switch subTask.ParentType {
	case domain.ParentTask:
		task, err := s.taskStore.GetByID(ctx, subTask.ParentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domain.ErrForbidden
			}
			return nil, fmt.Errorf("failed to resolve subtask parent: %w", err)
		}
		return &subTaskParent{task: task}, nil
	case domain.ParentUserTask:
		userTask, err := s.userTaskStore.GetByID(ctx, subTask.ParentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domain.ErrForbidden
			}
			return nil, fmt.Errorf("failed to resolve subtask parent: %w", err)
		}
		task, err := s.taskStore.GetByID(ctx, userTask.BaseTaskID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domain.ErrForbidden
			}
			return nil, fmt.Errorf("failed to resolve subtask base task: %w", err)
		}
		return &subTaskParent{task: task, userTask: userTask}, nil
	default:
		s.logger.Warn("subtask has no resolvable parent",
			"sub_task_id", subTask.ID,
			"parent_type", string(subTask.ParentType))
		return nil, domain.ErrForbidden
	}
}

// Create implements SubTaskService.Create
func (s *SubTaskServiceImpl) Create(ctx context.Context, principal domain.Principal, input CreateSubTaskInput) (*domain.SubTask, error) {
	if input.TaskID == uuid.Nil {
		return nil, domain.NewValidationError("taskId is required")
	}

	task, err := s.taskStore.GetByID(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.CanBeViewedBy(principal) {
		s.logger.Warn("subtask creation denied",
			"task_id", input.TaskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}

	deadline := input.Deadline
	if deadline == nil {
		deadline = task.Deadline
	}
	subTask, err := domain.NewSubTask(
		domain.ParentTask, task.ID, input.Title, input.Status, deadline, input.Attachments)
	if err != nil {
		return nil, err
	}

	if err := s.subTaskStore.Create(ctx, subTask); err != nil {
		s.logger.Error("failed to create subtask",
			"error", err,
			"task_id", input.TaskID)
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}

	s.logger.Info("subtask created",
		"sub_task_id", subTask.ID,
		"task_id", task.ID,
		"principal_id", principal.ID)
	return subTask, nil
}

// GetByID implements SubTaskService.GetByID
func (s *SubTaskServiceImpl) GetByID(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID) (*domain.SubTask, error) {
	subTask, err := s.subTaskStore.GetByID(ctx, subTaskID)
	if err != nil {
		return nil, err
	}
	parent, err := s.resolveParent(ctx, subTask)
	if err != nil {
		return nil, err
	}
	if !parent.canView(principal) {
		s.logger.Warn("subtask view denied",
			"sub_task_id", subTaskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}
	return subTask, nil
}

// UpdateStatus implements SubTaskService.UpdateStatus
func (s *SubTaskServiceImpl) UpdateStatus(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID, status domain.TaskStatus) (*domain.SubTask, error) {
	if !status.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid status: %s", status))
	}

	subTask, err := s.subTaskStore.GetByID(ctx, subTaskID)
	if err != nil {
		return nil, err
	}
	parent, err := s.resolveParent(ctx, subTask)
	if err != nil {
		return nil, err
	}
	if !parent.canUpdate(principal) {
		s.logger.Warn("subtask status update denied",
			"sub_task_id", subTaskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}

	if err := s.subTaskStore.UpdateStatus(ctx, subTaskID, status); err != nil {
		s.logger.Error("failed to update subtask status",
			"error", err,
			"sub_task_id", subTaskID)
		return nil, fmt.Errorf("failed to update subtask status: %w", err)
	}

	subTask.Status = status
	subTask.UpdatedAt = time.Now().UTC()

	s.logger.Info("subtask status updated",
		"sub_task_id", subTaskID,
		"status", string(status),
		"principal_id", principal.ID)
	return subTask, nil
}

// Update implements SubTaskService.Update
func (s *SubTaskServiceImpl) Update(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID, input UpdateSubTaskInput) (*domain.SubTask, error) {
	subTask, err := s.subTaskStore.GetByID(ctx, subTaskID)
	if err != nil {
		return nil, err
	}
	parent, err := s.resolveParent(ctx, subTask)
	if err != nil {
		return nil, err
	}
	if !parent.canUpdate(principal) {
		s.logger.Warn("subtask update denied",
			"sub_task_id", subTaskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}

	if input.Title != nil {
		subTask.Title = *input.Title
	}
	if input.Status != nil {
		subTask.Status = *input.Status
	}
	if input.DeadlineSet {
		subTask.Deadline = input.Deadline
	}
	if input.Attachments != nil {
		subTask.Attachments = input.Attachments
	}
	subTask.UpdatedAt = time.Now().UTC()

	if err := subTask.Validate(); err != nil {
		return nil, err
	}
	if err := s.subTaskStore.Update(ctx, subTask); err != nil {
		s.logger.Error("failed to update subtask",
			"error", err,
			"sub_task_id", subTaskID)
		return nil, fmt.Errorf("failed to update subtask: %w", err)
	}

	s.logger.Info("subtask updated",
		"sub_task_id", subTaskID,
		"principal_id", principal.ID)
	return subTask, nil
}

// Delete implements SubTaskService.Delete
func (s *SubTaskServiceImpl) Delete(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID) error {
	subTask, err := s.subTaskStore.GetByID(ctx, subTaskID)
	if err != nil {
		return err
	}
	parent, err := s.resolveParent(ctx, subTask)
	if err != nil {
		return err
	}
	if !parent.canDelete(principal) {
		s.logger.Warn("subtask delete denied",
			"sub_task_id", subTaskID,
			"principal_id", principal.ID)
		return domain.ErrForbidden
	}

	if err := s.subTaskStore.Delete(ctx, subTaskID); err != nil {
		s.logger.Error("failed to delete subtask",
			"error", err,
			"sub_task_id", subTaskID)
		return fmt.Errorf("failed to delete subtask: %w", err)
	}

	s.logger.Info("subtask deleted",
		"sub_task_id", subTaskID,
		"principal_id", principal.ID)
	return nil
}
