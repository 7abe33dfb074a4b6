package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// SubTaskHandler handles subtask-related API requests.
type SubTaskHandler struct {
	subTaskService service.SubTaskService
	logger         *slog.Logger
	errorDetail    bool
}

// NewSubTaskHandler creates a new SubTaskHandler with the given dependencies.
func NewSubTaskHandler(subTaskService service.SubTaskService, logger *slog.Logger, errorDetail bool) *SubTaskHandler {
	return &SubTaskHandler{
		subTaskService: subTaskService,
		logger:         logger.With(slog.String("component", "sub_task_handler")),
		errorDetail:    errorDetail,
	}
}

// Create handles POST /api/subtasks.
func (h *SubTaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	var req CreateSubTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	subTask, err := h.subTaskService.Create(r.Context(), principal, input)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondCreated(w, r, subTask)
}

// Get handles GET /api/subtasks/{id}.
func (h *SubTaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	subTaskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	subTask, err := h.subTaskService.GetByID(r.Context(), principal, subTaskID)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, subTask)
}

// Update handles PUT /api/subtasks/{id}: a partial update of title, status,
// deadline and attachments.
func (h *SubTaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	subTaskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	var req UpdateSubTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	subTask, err := h.subTaskService.Update(r.Context(), principal, subTaskID, input)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, subTask)
}

// UpdateStatus handles PATCH /api/subtasks/{id}/{status}. The new status
// rides in the URL rather than the body.
func (h *SubTaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	subTaskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	status := domain.TaskStatus(chi.URLParam(r, "status"))
	if !status.IsValid() {
		shared.RespondWithValidationErrors(w, r,
			[]string{"status must be one of: pending in-progress completed overdue"})
		return
	}

	subTask, err := h.subTaskService.UpdateStatus(r.Context(), principal, subTaskID, status)
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	respondOK(w, r, subTask)
}

// Delete handles DELETE /api/subtasks/{id}.
func (h *SubTaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	subTaskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	if err := h.subTaskService.Delete(r.Context(), principal, subTaskID); err != nil {
		HandleServiceError(w, r, err, h.errorDetail)
		return
	}

	h.logger.Info("subtask deleted", "sub_task_id", subTaskID, "principal_id", principal.ID)
	respondOK(w, r, nil)
}
