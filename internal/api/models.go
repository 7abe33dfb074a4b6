package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=200"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthData is the data payload returned by the authentication endpoints.
type AuthData struct {
	User         *domain.User `json:"user,omitempty"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
}

// SubTaskPayload is a subtask nested inside a task or user task creation
// request.
type SubTaskPayload struct {
	Title       string     `json:"title"       validate:"required,max=500"`
	Status      string     `json:"status"      validate:"omitempty,oneof=pending in-progress completed overdue"`
	Deadline    *time.Time `json:"deadline"`
	Attachments []string   `json:"attachments"`
}

func (p SubTaskPayload) toInput() service.SubTaskInput {
	return service.SubTaskInput{
		Title:       p.Title,
		Status:      domain.TaskStatus(p.Status),
		Deadline:    p.Deadline,
		Attachments: p.Attachments,
	}
}

// MemberPlanPayload is one member's entry in the member task map: plain
// titles for personal subtasks plus attachment URLs.
type MemberPlanPayload struct {
	Tasks       []string `json:"tasks"`
	Attachments []string `json:"attachments"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Title           string                       `json:"title"            validate:"required,max=500"`
	Description     string                       `json:"description"      validate:"max=5000"`
	Priority        string                       `json:"priority"         validate:"omitempty,oneof=low medium high"`
	Status          string                       `json:"status"           validate:"omitempty,oneof=pending in-progress completed overdue"`
	Deadline        *time.Time                   `json:"deadline"`
	Attachments     []string                     `json:"attachments"`
	AssignedMembers []string                     `json:"assigned_members" validate:"dive,uuid"`
	SubTasks        []SubTaskPayload             `json:"subtasks"         validate:"dive"`
	MemberTaskMap   map[string]MemberPlanPayload `json:"member_task_map"`
}

// ToInput converts the request into the service input, parsing member IDs.
// Malformed IDs produce a validation error before any store access.
func (req CreateTaskRequest) ToInput() (service.CreateTaskInput, error) {
	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		Status:      domain.TaskStatus(req.Status),
		Deadline:    req.Deadline,
		Attachments: req.Attachments,
	}

	for _, raw := range req.AssignedMembers {
		id, err := uuid.Parse(raw)
		if err != nil {
			return service.CreateTaskInput{}, domain.NewValidationError(
				fmt.Sprintf("assigned_members contains an invalid id: %q", raw))
		}
		input.AssignedMemberIDs = append(input.AssignedMemberIDs, id)
	}

	for _, st := range req.SubTasks {
		input.SubTasks = append(input.SubTasks, st.toInput())
	}

	if len(req.MemberTaskMap) > 0 {
		input.MemberPlans = make(map[uuid.UUID]service.MemberPlan, len(req.MemberTaskMap))
		for raw, plan := range req.MemberTaskMap {
			id, err := uuid.Parse(raw)
			if err != nil {
				return service.CreateTaskInput{}, domain.NewValidationError(
					fmt.Sprintf("member_task_map contains an invalid member id: %q", raw))
			}
			input.MemberPlans[id] = service.MemberPlan{
				Tasks:       plan.Tasks,
				Attachments: plan.Attachments,
			}
		}
	}

	return input, nil
}

// UpdateTaskRequest defines the payload for partial and full task updates.
// Absent fields are left unchanged; deadline distinguishes absent from null
// so callers can clear it.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"       validate:"omitempty,min=1,max=500"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
	Priority    *string         `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      *string         `json:"status"      validate:"omitempty,oneof=pending in-progress completed overdue"`
	Deadline    json.RawMessage `json:"deadline"`
	Attachments []string        `json:"attachments"`
	Creator     *string         `json:"creator"`
}

// ToInput converts the request into the service input.
func (req UpdateTaskRequest) ToInput() (service.UpdateTaskInput, error) {
	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Attachments: req.Attachments,
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		input.Priority = &p
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		input.Status = &s
	}

	set, deadline, err := parseOptionalTime(req.Deadline, "deadline")
	if err != nil {
		return service.UpdateTaskInput{}, err
	}
	input.DeadlineSet = set
	input.Deadline = deadline

	if req.Creator != nil {
		id, err := uuid.Parse(*req.Creator)
		if err != nil {
			// Still hand the attempt to the service so it is rejected as an
			// immutable-field change rather than a parse failure.
			id = uuid.Nil
		}
		input.CreatorID = &id
	}

	return input, nil
}

// CreateUserTaskRequest defines the payload for assigning a task to a member.
type CreateUserTaskRequest struct {
	BaseTask   string           `json:"base_task"   validate:"required,uuid"`
	AssignedTo string           `json:"assigned_to" validate:"required,uuid"`
	Deadline   *time.Time       `json:"deadline"`
	SubTasks   []SubTaskPayload `json:"subtasks"    validate:"dive"`
}

// ToInput converts the request into the service input.
func (req CreateUserTaskRequest) ToInput() (service.CreateUserTaskInput, error) {
	baseTask, err := uuid.Parse(req.BaseTask)
	if err != nil {
		return service.CreateUserTaskInput{}, domain.NewValidationError("base_task has invalid format")
	}
	assignedTo, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		return service.CreateUserTaskInput{}, domain.NewValidationError("assigned_to has invalid format")
	}

	input := service.CreateUserTaskInput{
		BaseTaskID: baseTask,
		AssignedTo: assignedTo,
		Deadline:   req.Deadline,
	}
	for _, st := range req.SubTasks {
		input.SubTasks = append(input.SubTasks, st.toInput())
	}
	return input, nil
}

// UpdateUserTaskRequest defines the payload for user task updates. BaseTask
// and AssignedTo are accepted only so attempts to change them are rejected
// explicitly.
type UpdateUserTaskRequest struct {
	Status     *string         `json:"status" validate:"omitempty,oneof=pending in-progress completed overdue"`
	Deadline   json.RawMessage `json:"deadline"`
	BaseTask   *string         `json:"base_task"`
	AssignedTo *string         `json:"assigned_to"`
}

// ToInput converts the request into the service input.
func (req UpdateUserTaskRequest) ToInput() (service.UpdateUserTaskInput, error) {
	input := service.UpdateUserTaskInput{}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		input.Status = &s
	}

	set, deadline, err := parseOptionalTime(req.Deadline, "deadline")
	if err != nil {
		return service.UpdateUserTaskInput{}, err
	}
	input.DeadlineSet = set
	input.Deadline = deadline

	if req.BaseTask != nil {
		id, _ := uuid.Parse(*req.BaseTask)
		input.BaseTaskID = &id
	}
	if req.AssignedTo != nil {
		id, _ := uuid.Parse(*req.AssignedTo)
		input.AssignedTo = &id
	}
	return input, nil
}

// CreateSubTaskRequest defines the payload for creating a global subtask on
// a task's shared checklist.
type CreateSubTaskRequest struct {
	TaskID      string     `json:"task_id"     validate:"required,uuid"`
	Title       string     `json:"title"       validate:"required,max=500"`
	Status      string     `json:"status"      validate:"omitempty,oneof=pending in-progress completed overdue"`
	Deadline    *time.Time `json:"deadline"`
	Attachments []string   `json:"attachments"`
}

// ToInput converts the request into the service input.
func (req CreateSubTaskRequest) ToInput() (service.CreateSubTaskInput, error) {
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		return service.CreateSubTaskInput{}, domain.NewValidationError("task_id has invalid format")
	}
	return service.CreateSubTaskInput{
		TaskID:      taskID,
		Title:       req.Title,
		Status:      domain.TaskStatus(req.Status),
		Deadline:    req.Deadline,
		Attachments: req.Attachments,
	}, nil
}

// UpdateSubTaskRequest defines the payload for full subtask updates.
type UpdateSubTaskRequest struct {
	Title       *string         `json:"title"  validate:"omitempty,min=1,max=500"`
	Status      *string         `json:"status" validate:"omitempty,oneof=pending in-progress completed overdue"`
	Deadline    json.RawMessage `json:"deadline"`
	Attachments []string        `json:"attachments"`
}

// ToInput converts the request into the service input.
func (req UpdateSubTaskRequest) ToInput() (service.UpdateSubTaskInput, error) {
	input := service.UpdateSubTaskInput{
		Title:       req.Title,
		Attachments: req.Attachments,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		input.Status = &s
	}

	set, deadline, err := parseOptionalTime(req.Deadline, "deadline")
	if err != nil {
		return service.UpdateSubTaskInput{}, err
	}
	input.DeadlineSet = set
	input.Deadline = deadline
	return input, nil
}

var jsonNull = []byte("null")

// parseOptionalTime distinguishes an absent field from an explicit null so
// partial updates can clear a deadline. Returns whether the field was
// present, its parsed value (nil for null), or a validation error for
// malformed timestamps.
func parseOptionalTime(raw json.RawMessage, field string) (bool, *time.Time, error) {
	if len(raw) == 0 {
		return false, nil, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return true, nil, nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return false, nil, domain.NewValidationError(field + " must be an RFC 3339 timestamp")
	}
	return true, &t, nil
}
