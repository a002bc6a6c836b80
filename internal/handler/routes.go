package handler

import (
	"net/http"

	"github.com/msomdec/taskflow/internal/service"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Auth        *service.AuthService
	Tokens      TokenVerifier
	Tasks       *service.TaskService
	DB          Pinger
	AuthLimiter Limiter
	Metrics     http.Handler
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	authHandler := NewAuthHandler(d.Auth)
	taskHandler := NewTaskHandler(d.Tasks)
	profileHandler := NewProfileHandler(d.Auth, d.Tasks)

	mux.HandleFunc("GET /healthz", HandleHealthz(d.DB))
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}
	mux.Handle("GET /{$}", HandleHome())

	limited := func(h http.HandlerFunc) http.Handler {
		if d.AuthLimiter == nil {
			return h
		}
		return RateLimit(d.AuthLimiter, h)
	}
	mux.Handle("POST /api/auth/register", limited(authHandler.HandleRegister))
	mux.Handle("POST /api/auth/login", limited(authHandler.HandleLogin))

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(d.Tokens, h)
	}
	mux.Handle("GET /api/tasks", protected(taskHandler.HandleList))
	mux.Handle("POST /api/tasks", protected(taskHandler.HandleCreate))
	mux.Handle("GET /api/tasks/{id}", protected(taskHandler.HandleGet))
	mux.Handle("PUT /api/tasks/{id}", protected(taskHandler.HandleUpdate))
	mux.Handle("DELETE /api/tasks/{id}", protected(taskHandler.HandleDelete))
	mux.Handle("GET /api/user/profile", protected(profileHandler.HandleProfile))
}

// Chain wraps the mux in the server-wide middleware. Metrics instrumentation
// sits directly on the mux so it can read the matched route pattern.
func Chain(mux *http.ServeMux, instrument func(http.Handler) http.Handler, cors *CORS) http.Handler {
	var h http.Handler = mux
	if instrument != nil {
		h = instrument(h)
	}
	h = cors.Handler(h)
	h = SecurityHeaders(h)
	return RequestLogger(h)
}
