package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// CreateUserTaskInput carries the fields for assigning a task to a member
// after the task already exists.
type CreateUserTaskInput struct {
	BaseTaskID uuid.UUID
	AssignedTo uuid.UUID
	Deadline   *time.Time
	SubTasks   []SubTaskInput
}

// UpdateUserTaskInput is a partial update of a user task. BaseTaskID and
// AssignedTo are present only so the service can reject attempts to change
// them.
type UpdateUserTaskInput struct {
	Status      *domain.TaskStatus
	Deadline    *time.Time
	DeadlineSet bool
	BaseTaskID  *uuid.UUID
	AssignedTo  *uuid.UUID
}

// UserTaskDetail is the populated view of a user task: its assignee, the
// base task, and the assignee's personal subtasks.
type UserTaskDetail struct {
	UserTask   *domain.UserTask  `json:"user_task"`
	AssignedTo domain.UserRef    `json:"assigned_to"`
	BaseTask   *domain.Task      `json:"base_task"`
	SubTasks   []*domain.SubTask `json:"subtasks"`
}

// UserTaskService orchestrates permission-aware CRUD over the per-member
// projections of a task.
type UserTaskService interface {
	// Create assigns the base task to a member: it creates the user task
	// with its personal subtasks and adds the member to the task's
	// assigned-member set, atomically. Only an admin or the base task's
	// creator may assign.
	Create(ctx context.Context, principal domain.Principal, input CreateUserTaskInput) (*UserTaskDetail, error)

	// List returns every user task for admins; otherwise the ones where the
	// principal is the assignee or created the base task.
	List(ctx context.Context, principal domain.Principal) ([]*UserTaskView, error)

	// GetByID returns the populated user task. Fails with
	// store.ErrUserTaskNotFound if absent and domain.ErrForbidden unless the
	// principal is admin, the assignee or the base task's creator.
	GetByID(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID) (*UserTaskDetail, error)

	// Update applies a partial update (status, deadline). The base task and
	// assignee are immutable; attempts to change them are rejected with a
	// validation error.
	Update(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID, input UpdateUserTaskInput) (*domain.UserTask, error)

	// Delete removes the user task and its personal subtasks atomically.
	// Only an admin or the base task's creator may delete; the assignee
	// alone cannot.
	Delete(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID) error

	// ListSubtasks returns the user task's personal subtasks. Admin, base
	// task creator or assignee only.
	ListSubtasks(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID) ([]*domain.SubTask, error)

	// AddSubtask appends a personal subtask to the user task, defaulting
	// status to pending and deadline to the user task's deadline. Admin,
	// base task creator or assignee only.
	AddSubtask(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID, input SubTaskInput) (*domain.SubTask, error)
}

// UserTaskServiceImpl implements the UserTaskService interface.
type UserTaskServiceImpl struct {
	db            *sql.DB
	taskStore     store.TaskStore
	userTaskStore store.UserTaskStore
	subTaskStore  store.SubTaskStore
	userStore     store.UserStore
	logger        *slog.Logger
}

// NewUserTaskService creates a new UserTaskService.
func NewUserTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	userTaskStore store.UserTaskStore,
	subTaskStore store.SubTaskStore,
	userStore store.UserStore,
	logger *slog.Logger,
) UserTaskService {
	return &UserTaskServiceImpl{
		db:            db,
		taskStore:     taskStore,
		userTaskStore: userTaskStore,
		subTaskStore:  subTaskStore,
		userStore:     userStore,
		logger:        logger.With("component", "user_task_service"),
	}
}

// canBeSeenBy reports whether the principal may view or update the user
// task: admin, the assignee, or the base task's creator.
func canBeSeenBy(p domain.Principal, userTask *domain.UserTask, baseTask *domain.Task) bool {
	return p.IsAdmin() || userTask.IsAssignee(p.ID) || baseTask.IsCreator(p.ID)
}

// Create implements UserTaskService.Create
func (s *UserTaskServiceImpl) Create(ctx context.Context, principal domain.Principal, input CreateUserTaskInput) (*UserTaskDetail, error) {
	baseTask, err := s.taskStore.GetByID(ctx, input.BaseTaskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userStore.GetByID(ctx, input.AssignedTo); err != nil {
		return nil, err
	}
	if !baseTask.CanBeManagedBy(principal) {
		s.logger.Warn("user task creation denied",
			"task_id", input.BaseTaskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}

	deadline := input.Deadline
	if deadline == nil {
		deadline = baseTask.Deadline
	}
	userTask, err := domain.NewUserTask(baseTask.ID, input.AssignedTo, domain.StatusPending, deadline)
	if err != nil {
		return nil, err
	}

	subTasks := make([]*domain.SubTask, 0, len(input.SubTasks))
	for _, in := range input.SubTasks {
		subDeadline := in.Deadline
		if subDeadline == nil {
			subDeadline = userTask.Deadline
		}
		subTask, err := domain.NewSubTask(
			domain.ParentUserTask, userTask.ID, in.Title, in.Status, subDeadline, in.Attachments)
		if err != nil {
			return nil, err
		}
		subTasks = append(subTasks, subTask)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.userTaskStore.WithTx(tx).Create(ctx, userTask); err != nil {
			return err
		}
		if err := s.taskStore.WithTx(tx).AddMember(ctx, baseTask.ID, input.AssignedTo); err != nil {
			return err
		}
		subTaskStore := s.subTaskStore.WithTx(tx)
		for _, subTask := range subTasks {
			if err := subTaskStore.Create(ctx, subTask); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("user task creation transaction failed",
			"error", err,
			"task_id", baseTask.ID,
			"assigned_to", input.AssignedTo)
		return nil, fmt.Errorf("failed to create user task: %w", err)
	}

	s.logger.Info("user task created",
		"user_task_id", userTask.ID,
		"task_id", baseTask.ID,
		"assigned_to", input.AssignedTo)

	return s.loadDetail(ctx, userTask, baseTask)
}

// List implements UserTaskService.List
func (s *UserTaskServiceImpl) List(ctx context.Context, principal domain.Principal) ([]*UserTaskView, error) {
	var userTasks []*domain.UserTask
	var err error
	if principal.IsAdmin() {
		userTasks, err = s.userTaskStore.ListAll(ctx)
	} else {
		userTasks, err = s.userTaskStore.ListForUser(ctx, principal.ID)
	}
	if err != nil {
		s.logger.Error("failed to list user tasks",
			"error", err,
			"principal_id", principal.ID)
		return nil, fmt.Errorf("failed to list user tasks: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(userTasks))
	for _, userTask := range userTasks {
		ids = append(ids, userTask.AssignedTo)
	}
	refs, err := s.userStore.GetRefs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load user references: %w", err)
	}
	byID := make(map[uuid.UUID]domain.UserRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	views := make([]*UserTaskView, 0, len(userTasks))
	for _, userTask := range userTasks {
		views = append(views, &UserTaskView{
			UserTask:   userTask,
			AssignedTo: byID[userTask.AssignedTo],
		})
	}
	return views, nil
}

// GetByID implements UserTaskService.GetByID
func (s *UserTaskServiceImpl) GetByID(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID) (*UserTaskDetail, error) {
	userTask, baseTask, err := s.load(ctx, userTaskID)
	if err != nil {
		return nil, err
	}
	if !canBeSeenBy(principal, userTask, baseTask) {
		s.logger.Warn("user task view denied",
			"user_task_id", userTaskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}
	return s.loadDetail(ctx, userTask, baseTask)
}

// Update implements UserTaskService.Update
func (s *UserTaskServiceImpl) Update(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID, input UpdateUserTaskInput) (*domain.UserTask, error) {
	userTask, baseTask, err := s.load(ctx, userTaskID)
	if err != nil {
		return nil, err
	}
	if !canBeSeenBy(principal, userTask, baseTask) {
		s.logger.Warn("user task update denied",
			"user_task_id", userTaskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}
	if input.BaseTaskID != nil {
		return nil, fmt.Errorf("%w: base task", domain.ErrImmutableField)
	}
	if input.AssignedTo != nil {
		return nil, fmt.Errorf("%w: assigned user", domain.ErrImmutableField)
	}

	if input.Status != nil {
		userTask.Status = *input.Status
	}
	if input.DeadlineSet {
		userTask.Deadline = input.Deadline
	}
	userTask.UpdatedAt = time.Now().UTC()

	if err := userTask.Validate(); err != nil {
		return nil, err
	}
	if err := s.userTaskStore.Update(ctx, userTask); err != nil {
		s.logger.Error("failed to update user task",
			"error", err,
			"user_task_id", userTaskID)
		return nil, fmt.Errorf("failed to update user task: %w", err)
	}

	s.logger.Info("user task updated",
		"user_task_id", userTaskID,
		"principal_id", principal.ID)
	return userTask, nil
}

// Delete implements UserTaskService.Delete
func (s *UserTaskServiceImpl) Delete(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID) error {
	userTask, baseTask, err := s.load(ctx, userTaskID)
	if err != nil {
		return err
	}
	// Stricter than view: the assignee alone may not delete their projection.
	if !baseTask.CanBeManagedBy(principal) {
		s.logger.Warn("user task delete denied",
			"user_task_id", userTaskID,
			"principal_id", principal.ID)
		return domain.ErrForbidden
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.subTaskStore.WithTx(tx).DeleteByParent(ctx, domain.ParentUserTask, userTaskID); err != nil {
			return err
		}
		return s.userTaskStore.WithTx(tx).Delete(ctx, userTaskID)
	})
	if err != nil {
		s.logger.Error("user task delete transaction failed",
			"error", err,
			"user_task_id", userTaskID)
		return fmt.Errorf("failed to delete user task: %w", err)
	}

	s.logger.Info("user task deleted",
		"user_task_id", userTaskID,
		"task_id", userTask.BaseTaskID,
		"principal_id", principal.ID)
	return nil
}

// ListSubtasks implements UserTaskService.ListSubtasks
func (s *UserTaskServiceImpl) ListSubtasks(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID) ([]*domain.SubTask, error) {
	userTask, baseTask, err := s.load(ctx, userTaskID)
	if err != nil {
		return nil, err
	}
	if !canBeSeenBy(principal, userTask, baseTask) {
		return nil, domain.ErrForbidden
	}
	return s.subTaskStore.ListByParent(ctx, domain.ParentUserTask, userTaskID)
}

// AddSubtask implements UserTaskService.AddSubtask
func (s *UserTaskServiceImpl) AddSubtask(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID, input SubTaskInput) (*domain.SubTask, error) {
	userTask, baseTask, err := s.load(ctx, userTaskID)
	if err != nil {
		return nil, err
	}
	if !canBeSeenBy(principal, userTask, baseTask) {
		s.logger.Warn("subtask creation on user task denied",
			"user_task_id", userTaskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}

	deadline := input.Deadline
	if deadline == nil {
		deadline = userTask.Deadline
	}
	subTask, err := domain.NewSubTask(
		domain.ParentUserTask, userTaskID, input.Title, input.Status, deadline, input.Attachments)
	if err != nil {
		return nil, err
	}

	if err := s.subTaskStore.Create(ctx, subTask); err != nil {
		s.logger.Error("failed to add subtask to user task",
			"error", err,
			"user_task_id", userTaskID)
		return nil, fmt.Errorf("failed to add subtask: %w", err)
	}

	s.logger.Info("subtask added to user task",
		"sub_task_id", subTask.ID,
		"user_task_id", userTaskID)
	return subTask, nil
}

// load fetches the user task and its base task together; permission checks
// need both.
func (s *UserTaskServiceImpl) load(ctx context.Context, userTaskID uuid.UUID) (*domain.UserTask, *domain.Task, error) {
	userTask, err := s.userTaskStore.GetByID(ctx, userTaskID)
	if err != nil {
		return nil, nil, err
	}
	baseTask, err := s.taskStore.GetByID(ctx, userTask.BaseTaskID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load base task: %w", err)
	}
	return userTask, baseTask, nil
}

// loadDetail populates the composed view of a user task.
func (s *UserTaskServiceImpl) loadDetail(ctx context.Context, userTask *domain.UserTask, baseTask *domain.Task) (*UserTaskDetail, error) {
	subTasks, err := s.subTaskStore.ListByParent(ctx, domain.ParentUserTask, userTask.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load personal subtasks: %w", err)
	}

	refs, err := s.userStore.GetRefs(ctx, []uuid.UUID{userTask.AssignedTo})
	if err != nil {
		return nil, fmt.Errorf("failed to load user references: %w", err)
	}
	var assignedTo domain.UserRef
	if len(refs) > 0 {
		assignedTo = refs[0]
	}

	return &UserTaskDetail{
		UserTask:   userTask,
		AssignedTo: assignedTo,
		BaseTask:   baseTask,
		SubTasks:   subTasks,
	}, nil
}
