package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)

	// ErrTaskCreatorEmpty is returned when a task's creator ID is empty or nil.
	ErrTaskCreatorEmpty = fmt.Errorf("%w: task creator cannot be empty", ErrValidation)

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = fmt.Errorf("%w: task title is required", ErrValidation)

	// ErrTaskNoMembers is returned when a task ends up with no assigned
	// members. This should never happen: creation auto-assigns the creator
	// when the caller provides no assignees.
	ErrTaskNoMembers = fmt.Errorf("%w: task must have at least one assigned member", ErrValidation)
)

// TaskStatus is the lifecycle state shared by tasks, user tasks and subtasks.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusOverdue    TaskStatus = "overdue"
)

// IsValid reports whether the status is one of the allowed enum values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// IsValid reports whether the priority is one of the allowed enum values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the unit of work created by a user. The creator is fixed at
// creation time; the assigned-member set is never empty. The task's user
// tasks and global subtasks are separate entities that reference the task.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	CreatorID   uuid.UUID    `json:"creator"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	Attachments []string     `json:"attachments"`

	// AssignedMemberIDs is the set of users the task is assigned to,
	// loaded together with the task row.
	AssignedMemberIDs []uuid.UUID `json:"assigned_members"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a new Task for the given creator. Priority defaults to low
// and status to pending when unset. If assignedMembers is empty the creator
// is auto-assigned so the member set is never empty.
// Returns an error if validation fails.
func NewTask(
	creatorID uuid.UUID,
	title, description string,
	priority TaskPriority,
	status TaskStatus,
	deadline *time.Time,
	attachments []string,
	assignedMembers []uuid.UUID,
) (*Task, error) {
	if priority == "" {
		priority = PriorityLow
	}
	if status == "" {
		status = StatusPending
	}
	if attachments == nil {
		attachments = []string{}
	}
	if len(assignedMembers) == 0 {
		assignedMembers = []uuid.UUID{creatorID}
	}

	task := &Task{
		ID:                uuid.New(),
		CreatorID:         creatorID,
		Title:             strings.TrimSpace(title),
		Description:       description,
		Priority:          priority,
		Status:            status,
		Deadline:          deadline,
		Attachments:       attachments,
		AssignedMemberIDs: assignedMembers,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.CreatorID == uuid.Nil {
		return ErrTaskCreatorEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	if len(t.AssignedMemberIDs) == 0 {
		return ErrTaskNoMembers
	}

	return nil
}

// IsCreator reports whether the given user created the task.
func (t *Task) IsCreator(userID uuid.UUID) bool {
	return t.CreatorID == userID
}

// IsAssigned reports whether the given user is in the assigned-member set.
func (t *Task) IsAssigned(userID uuid.UUID) bool {
	for _, id := range t.AssignedMemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanBeViewedBy reports whether the principal may read the task: admins,
// the creator, and assigned members.
func (t *Task) CanBeViewedBy(p Principal) bool {
	return p.IsAdmin() || t.IsCreator(p.ID) || t.IsAssigned(p.ID)
}

// CanBeManagedBy reports whether the principal may update or delete the
// task: admins and the creator only.
func (t *Task) CanBeManagedBy(p Principal) bool {
	return p.IsAdmin() || t.IsCreator(p.ID)
}
