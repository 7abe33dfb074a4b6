package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserTask-specific validation errors
var (
	// ErrUserTaskIDEmpty is returned when a user task ID is empty or nil.
	ErrUserTaskIDEmpty = fmt.Errorf("%w: user task ID cannot be empty", ErrValidation)

	// ErrUserTaskBaseEmpty is returned when a user task has no base task.
	ErrUserTaskBaseEmpty = fmt.Errorf("%w: user task base task cannot be empty", ErrValidation)

	// ErrUserTaskAssigneeEmpty is returned when a user task has no assignee.
	ErrUserTaskAssigneeEmpty = fmt.Errorf("%w: user task assignee cannot be empty", ErrValidation)
)

// UserTask is the per-member projection of a Task: exactly one exists per
// (task, assigned member) pair. It has its own status lifecycle, its own
// deadline (defaulting to the base task's at creation) and its own personal
// subtasks, distinct from the task's global subtasks. BaseTaskID and
// AssignedTo are immutable after creation.
type UserTask struct {
	ID         uuid.UUID  `json:"id"`
	BaseTaskID uuid.UUID  `json:"base_task"`
	AssignedTo uuid.UUID  `json:"assigned_to"`
	Status     TaskStatus `json:"status"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewUserTask creates a new UserTask linking a base task to an assignee.
// Status defaults to pending; a nil deadline falls back to the base task's
// deadline at the call site. Returns an error if validation fails.
func NewUserTask(
	baseTaskID, assignedTo uuid.UUID,
	status TaskStatus,
	deadline *time.Time,
) (*UserTask, error) {
	if status == "" {
		status = StatusPending
	}

	userTask := &UserTask{
		ID:         uuid.New(),
		BaseTaskID: baseTaskID,
		AssignedTo: assignedTo,
		Status:     status,
		Deadline:   deadline,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := userTask.Validate(); err != nil {
		return nil, err
	}

	return userTask, nil
}

// Validate checks if the UserTask has valid data.
// Returns an error if any field fails validation.
func (ut *UserTask) Validate() error {
	if ut.ID == uuid.Nil {
		return ErrUserTaskIDEmpty
	}

	if ut.BaseTaskID == uuid.Nil {
		return ErrUserTaskBaseEmpty
	}

	if ut.AssignedTo == uuid.Nil {
		return ErrUserTaskAssigneeEmpty
	}

	if !ut.Status.IsValid() {
		return ErrInvalidStatus
	}

	return nil
}

// IsAssignee reports whether the given user is the user task's assignee.
func (ut *UserTask) IsAssignee(userID uuid.UUID) bool {
	return ut.AssignedTo == userID
}
