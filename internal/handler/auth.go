package handler

import (
	"net/http"

	"github.com/msomdec/taskflow/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleRegister processes a JSON registration request.
// POST /api/auth/register
// Request:  {"name":"...","email":"...","password":"..."}
// Response: {"message":"...","token":"...","user":{...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	session, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"token":   session.Token,
		"user":    toUserDTO(session.User),
	})
}

// HandleLogin processes a JSON login request.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"message":"...","token":"...","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "login user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   session.Token,
		"user":    toUserDTO(session.User),
	})
}
