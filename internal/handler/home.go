package handler

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/msomdec/taskflow/internal/view"
)

// Endpoints is the API surface listed on the index page.
var Endpoints = []view.Endpoint{
	{Method: "POST", Path: "/api/auth/register", Description: "Create an account and receive a token"},
	{Method: "POST", Path: "/api/auth/login", Description: "Exchange email and password for a token"},
	{Method: "GET", Path: "/api/tasks", Description: "List your tasks, newest first", Auth: true},
	{Method: "POST", Path: "/api/tasks", Description: "Create a task", Auth: true},
	{Method: "GET", Path: "/api/tasks/{id}", Description: "Fetch one task", Auth: true},
	{Method: "PUT", Path: "/api/tasks/{id}", Description: "Edit a task; completing it earns points", Auth: true},
	{Method: "DELETE", Path: "/api/tasks/{id}", Description: "Delete a task", Auth: true},
	{Method: "GET", Path: "/api/user/profile", Description: "Your account, points, streak and task stats", Auth: true},
	{Method: "GET", Path: "/healthz", Description: "Liveness and database check"},
	{Method: "GET", Path: "/metrics", Description: "Prometheus metrics"},
}

// HandleHome renders the index page.
func HandleHome() http.Handler {
	return templ.Handler(view.IndexPage(Endpoints))
}
