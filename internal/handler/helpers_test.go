package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/taskflow/internal/handler"
	"github.com/msomdec/taskflow/internal/repository/sqlite"
	"github.com/msomdec/taskflow/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type testEnv struct {
	db     *sqlite.DB
	tokens *service.TokenService
	url    string
}

type envConfig struct {
	deps       handler.Deps
	instrument func(http.Handler) http.Handler
}

type envOption func(*envConfig)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens := service.NewTokenService(testJWTSecret, service.DefaultTokenTTL)
	cfg := envConfig{deps: handler.Deps{
		Auth:   service.NewAuthService(db.Users(), tokens, 4),
		Tokens: tokens,
		Tasks:  service.NewTaskService(db.Tasks(), nil),
		DB:     db,
	}}
	for _, opt := range opts {
		opt(&cfg)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, cfg.deps)

	srv := httptest.NewServer(handler.Chain(mux, cfg.instrument, handler.NewCORS([]string{"*"})))
	t.Cleanup(srv.Close)

	return &testEnv{db: db, tokens: tokens, url: srv.URL}
}

// do sends body as JSON and decodes the response into out when out is not
// nil. The returned response body is already closed.
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.url+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp
}

// register creates an account through the API and returns its token.
func (e *testEnv) register(t *testing.T, name, email string) (string, userBody) {
	t.Helper()
	var out struct {
		Token string   `json:"token"`
		User  userBody `json:"user"`
	}
	resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	}, &out)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", email, resp.StatusCode)
	}
	return out.Token, out.User
}

func (e *testEnv) createTask(t *testing.T, token, text, priority string) taskBody {
	t.Helper()
	var out struct {
		Task taskBody `json:"task"`
	}
	resp := e.do(t, http.MethodPost, "/api/tasks", token, map[string]string{
		"text":     text,
		"priority": priority,
	}, &out)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d", resp.StatusCode)
	}
	return out.Task
}

type userBody struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TotalPoints int    `json:"totalPoints"`
	StreakCount int    `json:"streakCount"`
}

type taskBody struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"userId"`
	Text        string  `json:"text"`
	Completed   bool    `json:"completed"`
	Priority    string  `json:"priority"`
	Category    string  `json:"category"`
	CompletedAt *string `json:"completedAt"`
}

type updateBody struct {
	Task taskBody `json:"task"`
	User struct {
		TotalPoints int `json:"totalPoints"`
		StreakCount int `json:"streakCount"`
	} `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}
