package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
	errorDetail bool
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger, errorDetail bool) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
		errorDetail: errorDetail,
	}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	detail, err := h.taskService.Create(r.Context(), principal, input)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	h.logger.Info("task created",
		"task_id", detail.Task.ID,
		"principal_id", principal.ID,
		"member_count", len(detail.AssignedMembers))
	respondCreated(w, r, detail)
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(r.Context(), principal)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	shared.RespondWithList(w, r, http.StatusOK, len(tasks), tasks)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	detail, err := h.taskService.GetByID(r.Context(), principal, taskID)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, detail)
}

// Update handles PUT and PATCH /api/tasks/{id}. Both apply the fields
// present in the body and leave the rest unchanged.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	task, err := h.taskService.Update(r.Context(), principal, taskID, input)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	if err := h.taskService.Delete(r.Context(), principal, taskID); err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	h.logger.Info("task deleted", "task_id", taskID, "principal_id", principal.ID)
	respondOK(w, r, nil)
}

// ListSubtasks handles GET /api/tasks/{id}/subtasks.
func (h *TaskHandler) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	subTasks, err := h.taskService.ListSubtasks(r.Context(), principal, taskID)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	shared.RespondWithList(w, r, http.StatusOK, len(subTasks), subTasks)
}
