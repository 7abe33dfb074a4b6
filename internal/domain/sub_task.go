package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubTask-specific validation errors
var (
	// ErrSubTaskIDEmpty is returned when a subtask ID is empty or nil.
	ErrSubTaskIDEmpty = fmt.Errorf("%w: subtask ID cannot be empty", ErrValidation)

	// ErrSubTaskTitleEmpty is returned when a subtask's title is empty.
	ErrSubTaskTitleEmpty = fmt.Errorf("%w: subtask title is required", ErrValidation)

	// ErrSubTaskParentEmpty is returned when a subtask has no parent
	// reference. Every subtask belongs to exactly one task or user task.
	ErrSubTaskParentEmpty = fmt.Errorf("%w: subtask parent cannot be empty", ErrValidation)

	// ErrSubTaskParentInvalid is returned when the parent type is not one
	// of the known values.
	ErrSubTaskParentInvalid = fmt.Errorf("%w: subtask parent type must be task or user_task", ErrValidation)
)

// AttachmentTitle is the title given to subtasks synthesized from a bare
// attachment URL during task creation.
const AttachmentTitle = "Attachment"

// ParentType discriminates the owner of a subtask: a task's global checklist
// or a user task's personal checklist.
type ParentType string

const (
	// ParentTask marks a subtask on a task's shared, global list.
	ParentTask ParentType = "task"

	// ParentUserTask marks a subtask on a single assignee's personal list.
	ParentUserTask ParentType = "user_task"
)

// IsValid reports whether the parent type is one of the known values.
func (p ParentType) IsValid() bool {
	return p == ParentTask || p == ParentUserTask
}

// SubTask is an atomic checklist item. It belongs either to a task's global
// list or to exactly one user task's personal list, never both; the parent
// reference is stored on the subtask itself so ownership never requires a
// reverse scan of the parent collections.
type SubTask struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Attachments []string   `json:"attachments"`
	ParentType  ParentType `json:"parent_type"`
	ParentID    uuid.UUID  `json:"parent_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewSubTask creates a new SubTask under the given parent. Status defaults
// to pending; the caller supplies the deadline, typically defaulted from the
// parent. Returns an error if validation fails.
func NewSubTask(
	parentType ParentType,
	parentID uuid.UUID,
	title string,
	status TaskStatus,
	deadline *time.Time,
	attachments []string,
) (*SubTask, error) {
	if status == "" {
		status = StatusPending
	}
	if attachments == nil {
		attachments = []string{}
	}

	subtask := &SubTask{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Status:      status,
		Deadline:    deadline,
		Attachments: attachments,
		ParentType:  parentType,
		ParentID:    parentID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := subtask.Validate(); err != nil {
		return nil, err
	}

	return subtask, nil
}

// NewAttachmentSubTask creates the pending "Attachment" subtask synthesized
// from a bare URL in a member's task map during task creation.
func NewAttachmentSubTask(
	parentType ParentType,
	parentID uuid.UUID,
	url string,
	deadline *time.Time,
) (*SubTask, error) {
	return NewSubTask(parentType, parentID, AttachmentTitle, StatusPending, deadline, []string{url})
}

// Validate checks if the SubTask has valid data.
// Returns an error if any field fails validation.
func (st *SubTask) Validate() error {
	if st.ID == uuid.Nil {
		return ErrSubTaskIDEmpty
	}

	if st.Title == "" {
		return ErrSubTaskTitleEmpty
	}

	if !st.Status.IsValid() {
		return ErrInvalidStatus
	}

	if !st.ParentType.IsValid() {
		return ErrSubTaskParentInvalid
	}

	if st.ParentID == uuid.Nil {
		return ErrSubTaskParentEmpty
	}

	return nil
}
