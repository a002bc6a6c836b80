package handler

import (
	"errors"
	"net/http"

	"github.com/msomdec/taskflow/internal/domain"
	"github.com/msomdec/taskflow/internal/service"
)

// ProfileHandler serves the caller's profile and task statistics.
type ProfileHandler struct {
	auth  *service.AuthService
	tasks *service.TaskService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(auth *service.AuthService, tasks *service.TaskService) *ProfileHandler {
	return &ProfileHandler{auth: auth, tasks: tasks}
}

// HandleProfile returns the caller's account and stats.
// GET /api/user/profile
// Response: {"user":{...},"stats":{"total":0,"active":0,"completed":0,"highPriority":0}}
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	user, err := h.auth.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		// A valid token for a deleted account.
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		writeServiceError(w, r, "get profile", err)
		return
	}

	stats, err := h.tasks.Stats(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, "get task stats", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  toUserDTO(user),
		"stats": toStatsDTO(stats),
	})
}
