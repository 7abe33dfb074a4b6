package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// UserTaskHandler handles user task-related API requests.
type UserTaskHandler struct {
	userTaskService service.UserTaskService
	logger          *slog.Logger
	errorDetail     bool
}

// NewUserTaskHandler creates a new UserTaskHandler with the given
// dependencies.
func NewUserTaskHandler(userTaskService service.UserTaskService, logger *slog.Logger, errorDetail bool) *UserTaskHandler {
	return &UserTaskHandler{
		userTaskService: userTaskService,
		logger:          logger.With(slog.String("component", "user_task_handler")),
		errorDetail:     errorDetail,
	}
}

// Create handles POST /api/user-tasks.
func (h *UserTaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	var req CreateUserTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	detail, err := h.userTaskService.Create(r.Context(), principal, input)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	h.logger.Info("user task created",
		"user_task_id", detail.UserTask.ID,
		"base_task_id", input.BaseTaskID,
		"assigned_to", input.AssignedTo,
		"principal_id", principal.ID)
	respondCreated(w, r, detail)
}

// List handles GET /api/user-tasks.
func (h *UserTaskHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	userTasks, err := h.userTaskService.List(r.Context(), principal)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	shared.RespondWithList(w, r, http.StatusOK, len(userTasks), userTasks)
}

// Get handles GET /api/user-tasks/{id}.
func (h *UserTaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	userTaskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	detail, err := h.userTaskService.GetByID(r.Context(), principal, userTaskID)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, detail)
}

// Update handles PUT and PATCH /api/user-tasks/{id}.
func (h *UserTaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	userTaskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	var req UpdateUserTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	userTask, err := h.userTaskService.Update(r.Context(), principal, userTaskID, input)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, userTask)
}

// Delete handles DELETE /api/user-tasks/{id}.
func (h *UserTaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	userTaskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	if err := h.userTaskService.Delete(r.Context(), principal, userTaskID); err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	h.logger.Info("user task deleted", "user_task_id", userTaskID, "principal_id", principal.ID)
	respondOK(w, r, nil)
}

// ListSubtasks handles GET /api/user-tasks/{id}/subtasks.
func (h *UserTaskHandler) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	userTaskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	subTasks, err := h.userTaskService.ListSubtasks(r.Context(), principal, userTaskID)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	shared.RespondWithList(w, r, http.StatusOK, len(subTasks), subTasks)
}

// AddSubtask handles POST /api/user-tasks/{id}/subtasks.
func (h *UserTaskHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	userTaskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	var req SubTaskPayload
	if !decodeAndValidate(w, r, &req) {
		return
	}

	subTask, err := h.userTaskService.AddSubtask(r.Context(), principal, userTaskID, req.toInput())
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondCreated(w, r, subTask)
}
