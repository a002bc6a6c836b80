package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/taskflow/internal/domain"
	"github.com/msomdec/taskflow/internal/service"
)

// TaskHandler serves the task API. Every route runs behind RequireAuth and
// acts only on the caller's own tasks.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleList returns the caller's tasks, newest first.
// GET /api/tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	tasks, err := h.tasks.List(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, "list tasks", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": toTaskDTOs(tasks)})
}

// HandleCreate adds a task for the caller.
// POST /api/tasks
// Request: {"text":"...","priority":"high","category":"work"}
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	// No owner field: the owner is always the caller.
	var req struct {
		Text     string `json:"text"`
		Priority string `json:"priority"`
		Category string `json:"category"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	task, err := h.tasks.Create(r.Context(), identity.UserID, req.Text,
		domain.Priority(req.Priority), domain.Category(req.Category))
	if err != nil {
		writeServiceError(w, r, "create task", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"task":    toTaskDTO(task),
	})
}

// HandleGet returns one of the caller's tasks.
// GET /api/tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), identity.UserID, id)
	if err != nil {
		writeServiceError(w, r, "get task", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"task": toTaskDTO(task)})
}

// HandleUpdate edits a task. Toggling "completed" awards or withdraws points
// and returns the caller's new totals.
// PUT /api/tasks/{id}
// Request: {"text"?:"...","completed"?:true,"priority"?:"...","category"?:"..."}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req struct {
		Text      *string          `json:"text"`
		Completed *bool            `json:"completed"`
		Priority  *domain.Priority `json:"priority"`
		Category  *domain.Category `json:"category"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	patch := domain.TaskPatch{
		Text:      req.Text,
		Completed: req.Completed,
		Priority:  req.Priority,
		Category:  req.Category,
	}
	task, agg, err := h.tasks.Update(r.Context(), identity.UserID, id, patch)
	if err != nil {
		writeServiceError(w, r, "update task", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Task updated successfully",
		"task":    toTaskDTO(task),
		"user":    toAggregateDTO(agg),
	})
}

// HandleDelete removes one of the caller's tasks.
// DELETE /api/tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), identity.UserID, id); err != nil {
		writeServiceError(w, r, "delete task", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Task deleted successfully"})
}

// taskID parses the {id} path value. An id that cannot name a task is
// reported as not found.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "not_found", "Task not found")
		return 0, false
	}
	return id, true
}
