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

// SubTaskInput carries the fields a caller may set when creating a subtask,
// either standalone or nested inside a task creation request.
type SubTaskInput struct {
	Title       string
	Status      domain.TaskStatus
	Deadline    *time.Time
	Attachments []string
}

// MemberPlan is one member's entry in the member task map supplied at task
// creation: plain titles become that member's personal subtasks and each
// attachment URL becomes an "Attachment" subtask carrying the URL.
type MemberPlan struct {
	Tasks       []string
	Attachments []string
}

// CreateTaskInput carries everything a task creation fans out over: the task
// fields, the global subtasks shared by all assignees, and the per-member
// plans keyed by member ID.
type CreateTaskInput struct {
	Title             string
	Description       string
	Priority          domain.TaskPriority
	Status            domain.TaskStatus
	Deadline          *time.Time
	Attachments       []string
	AssignedMemberIDs []uuid.UUID
	SubTasks          []SubTaskInput
	MemberPlans       map[uuid.UUID]MemberPlan
}

// UpdateTaskInput is a partial update of a task's mutable fields. Nil fields
// are left unchanged. CreatorID is present only so the service can reject
// attempts to change it.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *domain.TaskPriority
	Status      *domain.TaskStatus
	Deadline    *time.Time
	DeadlineSet bool
	Attachments []string
	CreatorID   *uuid.UUID
}

// UserTaskView is a user task populated with its assignee's reference and,
// where loaded, the assignee's personal subtasks.
type UserTaskView struct {
	UserTask   *domain.UserTask  `json:"user_task"`
	AssignedTo domain.UserRef    `json:"assigned_to"`
	SubTasks   []*domain.SubTask `json:"subtasks,omitempty"`
}

// TaskSummary is a task populated with user references, the shape returned
// by list operations.
type TaskSummary struct {
	Task            *domain.Task     `json:"task"`
	Creator         domain.UserRef   `json:"creator"`
	AssignedMembers []domain.UserRef `json:"assigned_members"`
}

// TaskDetail is the fully populated composed view of a task: creator and
// member references, global subtasks, and one populated view per user task.
type TaskDetail struct {
	Task            *domain.Task      `json:"task"`
	Creator         domain.UserRef    `json:"creator"`
	AssignedMembers []domain.UserRef  `json:"assigned_members"`
	SubTasks        []*domain.SubTask `json:"subtasks"`
	UserTasks       []*UserTaskView   `json:"user_tasks"`
}

// TaskService orchestrates permission-aware CRUD over tasks and the fan-out
// to user tasks and subtasks that task creation and deletion imply.
type TaskService interface {
	// Create creates a task together with its global subtasks and one user
	// task per assigned member, all inside a single transaction. Entries in
	// the member task map become the members' personal subtasks. Returns the
	// populated task detail.
	Create(ctx context.Context, principal domain.Principal, input CreateTaskInput) (*TaskDetail, error)

	// List returns every task for admins, and the tasks the principal
	// created or is assigned to otherwise.
	List(ctx context.Context, principal domain.Principal) ([]*TaskSummary, error)

	// GetByID returns the populated task detail. Fails with
	// store.ErrTaskNotFound if absent and domain.ErrForbidden if the
	// principal is neither admin, creator nor assigned member.
	GetByID(ctx context.Context, principal domain.Principal, taskID uuid.UUID) (*TaskDetail, error)

	// Update applies a partial update to the task's mutable fields. Only the
	// creator or an admin may update; changing the creator is rejected with
	// a validation error. Updates never cascade to user tasks or subtasks.
	Update(ctx context.Context, principal domain.Principal, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)

	// Delete removes the task, its global subtasks and all of its user
	// tasks with their personal subtasks, atomically. Creator or admin only.
	Delete(ctx context.Context, principal domain.Principal, taskID uuid.UUID) error

	// ListSubtasks returns the task's global subtasks under the same
	// permission rule as GetByID.
	ListSubtasks(ctx context.Context, principal domain.Principal, taskID uuid.UUID) ([]*domain.SubTask, error)
}

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	db            *sql.DB
	taskStore     store.TaskStore
	userTaskStore store.UserTaskStore
	subTaskStore  store.SubTaskStore
	userStore     store.UserStore
	logger        *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	userTaskStore store.UserTaskStore,
	subTaskStore store.SubTaskStore,
	userStore store.UserStore,
	logger *slog.Logger,
) TaskService {
	return &TaskServiceImpl{
		db:            db,
		taskStore:     taskStore,
		userTaskStore: userTaskStore,
		subTaskStore:  subTaskStore,
		userStore:     userStore,
		logger:        logger.With("component", "task_service"),
	}
}

// userTaskPlan pairs a user task with the personal subtasks created with it.
type userTaskPlan struct {
	userTask *domain.UserTask
	subTasks []*domain.SubTask
}

// taskCreationPlan holds every entity a task creation writes, built and
// validated up front so the transaction only performs inserts.
type taskCreationPlan struct {
	task           *domain.Task
	globalSubTasks []*domain.SubTask
	userTasks      []*userTaskPlan
}

// buildTaskCreationPlan validates the input and expands it into the full set
// of entities task creation writes: the task, its global subtasks, and one
// user task per assigned member carrying the personal subtasks derived from
// that member's plan. Subtask deadlines default to the enclosing deadline.
func buildTaskCreationPlan(creatorID uuid.UUID, input CreateTaskInput) (*taskCreationPlan, error) {
	task, err := domain.NewTask(
		creatorID,
		input.Title,
		input.Description,
		input.Priority,
		input.Status,
		input.Deadline,
		input.Attachments,
		input.AssignedMemberIDs,
	)
	if err != nil {
		return nil, err
	}

	plan := &taskCreationPlan{task: task}

	for _, in := range input.SubTasks {
		deadline := in.Deadline
		if deadline == nil {
			deadline = task.Deadline
		}
		subTask, err := domain.NewSubTask(domain.ParentTask, task.ID, in.Title, in.Status, deadline, in.Attachments)
		if err != nil {
			return nil, err
		}
		plan.globalSubTasks = append(plan.globalSubTasks, subTask)
	}

	for _, memberID := range task.AssignedMemberIDs {
		userTask, err := domain.NewUserTask(task.ID, memberID, domain.StatusPending, task.Deadline)
		if err != nil {
			return nil, err
		}

		utPlan := &userTaskPlan{userTask: userTask}
		memberPlan := input.MemberPlans[memberID]
		for _, title := range memberPlan.Tasks {
			subTask, err := domain.NewSubTask(
				domain.ParentUserTask, userTask.ID, title, domain.StatusPending, userTask.Deadline, nil)
			if err != nil {
				return nil, err
			}
			utPlan.subTasks = append(utPlan.subTasks, subTask)
		}
		for _, url := range memberPlan.Attachments {
			subTask, err := domain.NewAttachmentSubTask(domain.ParentUserTask, userTask.ID, url, userTask.Deadline)
			if err != nil {
				return nil, err
			}
			utPlan.subTasks = append(utPlan.subTasks, subTask)
		}
		plan.userTasks = append(plan.userTasks, utPlan)
	}

	return plan, nil
}

// Create implements TaskService.Create
func (s *TaskServiceImpl) Create(ctx context.Context, principal domain.Principal, input CreateTaskInput) (*TaskDetail, error) {
	plan, err := buildTaskCreationPlan(principal.ID, input)
	if err != nil {
		s.logger.Warn("task creation plan rejected",
			"error", err,
			"creator_id", principal.ID)
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		taskStore := s.taskStore.WithTx(tx)
		userTaskStore := s.userTaskStore.WithTx(tx)
		subTaskStore := s.subTaskStore.WithTx(tx)

		if err := taskStore.Create(ctx, plan.task); err != nil {
			return err
		}
		for _, subTask := range plan.globalSubTasks {
			if err := subTaskStore.Create(ctx, subTask); err != nil {
				return err
			}
		}
		for _, utPlan := range plan.userTasks {
			if err := userTaskStore.Create(ctx, utPlan.userTask); err != nil {
				return err
			}
			for _, subTask := range utPlan.subTasks {
				if err := subTaskStore.Create(ctx, subTask); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("task creation transaction failed",
			"error", err,
			"task_id", plan.task.ID,
			"creator_id", principal.ID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created",
		"task_id", plan.task.ID,
		"creator_id", principal.ID,
		"member_count", len(plan.userTasks),
		"global_subtask_count", len(plan.globalSubTasks))

	return s.loadDetail(ctx, plan.task)
}

// List implements TaskService.List
func (s *TaskServiceImpl) List(ctx context.Context, principal domain.Principal) ([]*TaskSummary, error) {
	var tasks []*domain.Task
	var err error
	if principal.IsAdmin() {
		tasks, err = s.taskStore.ListAll(ctx)
	} else {
		tasks, err = s.taskStore.ListForUser(ctx, principal.ID)
	}
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err,
			"principal_id", principal.ID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	// One ref lookup covers every creator and member in the result set.
	idSet := map[uuid.UUID]struct{}{}
	ids := []uuid.UUID{}
	for _, task := range tasks {
		for _, id := range append([]uuid.UUID{task.CreatorID}, task.AssignedMemberIDs...) {
			if _, ok := idSet[id]; !ok {
				idSet[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	refs, err := s.userRefMap(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]*TaskSummary, 0, len(tasks))
	for _, task := range tasks {
		summaries = append(summaries, &TaskSummary{
			Task:            task,
			Creator:         refs[task.CreatorID],
			AssignedMembers: pickRefs(refs, task.AssignedMemberIDs),
		})
	}
	return summaries, nil
}

// GetByID implements TaskService.GetByID
func (s *TaskServiceImpl) GetByID(ctx context.Context, principal domain.Principal, taskID uuid.UUID) (*TaskDetail, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.CanBeViewedBy(principal) {
		s.logger.Warn("task view denied",
			"task_id", taskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}
	return s.loadDetail(ctx, task)
}

// Update implements TaskService.Update
func (s *TaskServiceImpl) Update(ctx context.Context, principal domain.Principal, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.CanBeManagedBy(principal) {
		s.logger.Warn("task update denied",
			"task_id", taskID,
			"principal_id", principal.ID)
		return nil, domain.ErrForbidden
	}
	if input.CreatorID != nil {
		return nil, fmt.Errorf("%w: creator", domain.ErrImmutableField)
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.DeadlineSet {
		task.Deadline = input.Deadline
	}
	if input.Attachments != nil {
		task.Attachments = input.Attachments
	}
	task.UpdatedAt = time.Now().UTC()

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.taskStore.Update(ctx, task); err != nil {
		s.logger.Error("failed to update task",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("task updated", "task_id", taskID, "principal_id", principal.ID)
	return task, nil
}

// Delete implements TaskService.Delete
// The cascade is explicit: personal subtasks, user tasks and global subtasks
// go first, then the task row, all in one transaction.
func (s *TaskServiceImpl) Delete(ctx context.Context, principal domain.Principal, taskID uuid.UUID) error {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !task.CanBeManagedBy(principal) {
		s.logger.Warn("task delete denied",
			"task_id", taskID,
			"principal_id", principal.ID)
		return domain.ErrForbidden
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		taskStore := s.taskStore.WithTx(tx)
		userTaskStore := s.userTaskStore.WithTx(tx)
		subTaskStore := s.subTaskStore.WithTx(tx)

		userTasks, err := userTaskStore.ListByTask(ctx, taskID)
		if err != nil {
			return err
		}
		for _, userTask := range userTasks {
			if _, err := subTaskStore.DeleteByParent(ctx, domain.ParentUserTask, userTask.ID); err != nil {
				return err
			}
			if err := userTaskStore.Delete(ctx, userTask.ID); err != nil {
				return err
			}
		}
		if _, err := subTaskStore.DeleteByParent(ctx, domain.ParentTask, taskID); err != nil {
			return err
		}
		return taskStore.Delete(ctx, taskID)
	})
	if err != nil {
		s.logger.Error("task delete transaction failed",
			"error", err,
			"task_id", taskID)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("task deleted with cascade",
		"task_id", taskID,
		"principal_id", principal.ID)
	return nil
}

// ListSubtasks implements TaskService.ListSubtasks
func (s *TaskServiceImpl) ListSubtasks(ctx context.Context, principal domain.Principal, taskID uuid.UUID) ([]*domain.SubTask, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.CanBeViewedBy(principal) {
		return nil, domain.ErrForbidden
	}
	return s.subTaskStore.ListByParent(ctx, domain.ParentTask, taskID)
}

// loadDetail populates the composed view of a task: creator and member
// references, global subtasks, and each user task with its assignee and
// personal subtasks.
func (s *TaskServiceImpl) loadDetail(ctx context.Context, task *domain.Task) (*TaskDetail, error) {
	userTasks, err := s.userTaskStore.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user tasks: %w", err)
	}
	subTasks, err := s.subTaskStore.ListByParent(ctx, domain.ParentTask, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subtasks: %w", err)
	}

	ids := []uuid.UUID{task.CreatorID}
	ids = append(ids, task.AssignedMemberIDs...)
	for _, userTask := range userTasks {
		ids = append(ids, userTask.AssignedTo)
	}
	refs, err := s.userRefMap(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*UserTaskView, 0, len(userTasks))
	for _, userTask := range userTasks {
		personal, err := s.subTaskStore.ListByParent(ctx, domain.ParentUserTask, userTask.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load personal subtasks: %w", err)
		}
		views = append(views, &UserTaskView{
			UserTask:   userTask,
			AssignedTo: refs[userTask.AssignedTo],
			SubTasks:   personal,
		})
	}

	return &TaskDetail{
		Task:            task,
		Creator:         refs[task.CreatorID],
		AssignedMembers: pickRefs(refs, task.AssignedMemberIDs),
		SubTasks:        subTasks,
		UserTasks:       views,
	}, nil
}

// userRefMap fetches user references for the given IDs, deduplicated, keyed
// by user ID.
func (s *TaskServiceImpl) userRefMap(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.UserRef, error) {
	seen := map[uuid.UUID]struct{}{}
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	refs, err := s.userStore.GetRefs(ctx, unique)
	if err != nil {
		s.logger.Error("failed to load user refs", "error", err)
		return nil, fmt.Errorf("failed to load user references: %w", err)
	}

	byID := make(map[uuid.UUID]domain.UserRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}
	return byID, nil
}

// pickRefs projects the ref map over an ID list, skipping missing entries.
func pickRefs(refs map[uuid.UUID]domain.UserRef, ids []uuid.UUID) []domain.UserRef {
	out := make([]domain.UserRef, 0, len(ids))
	for _, id := range ids {
		if ref, ok := refs[id]; ok {
			out = append(out, ref)
		}
	}
	return out
}
