package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	authdomain "taskboard/internal/auth/domain"
	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginStoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":        "access-1",
			"refreshToken": "refresh-1",
			"user":         map[string]any{"id": "u1", "name": "Ann", "email": "ann@example.com", "role": "user"},
		})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	session, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	c := New(srv.URL, session)
	user, err := c.Login(context.Background(), "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user id = %q", user.ID)
	}

	reloaded, err := LoadSession(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AccessToken() != "access-1" || reloaded.Refresh() != "refresh-1" {
		t.Errorf("session not persisted: %q %q", reloaded.AccessToken(), reloaded.Refresh())
	}
	if u := reloaded.CurrentUser(); u == nil || u.Email != "ann@example.com" {
		t.Errorf("user not persisted: %+v", u)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
	}))
	defer srv.Close()

	session := NewMemorySession()
	_ = session.Set("stale", "refresh", &authdomain.User{ID: "u1"})
	c := New(srv.URL, session)

	_, _, err := c.ListTasks(context.Background(), ListOptions{})
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
	if err.(*APIError).Message != "token expired" {
		t.Errorf("message = %q", err.(*APIError).Message)
	}
	if session.LoggedIn() {
		t.Error("session should be cleared after 401")
	}
}

func TestInitLogsOutSilently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
	}))
	defer srv.Close()

	session := NewMemorySession()
	_ = session.Set("stale", "", nil)
	user, err := New(srv.URL, session).Init(context.Background())
	if err != nil || user != nil {
		t.Fatalf("Init = %v, %v; want nil, nil", user, err)
	}
	if session.LoggedIn() {
		t.Error("session should be cleared")
	}
}

func TestCreateTaskSendsDefaults(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token: %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		writeJSON(w, http.StatusCreated, map[string]any{"id": "t1", "title": got["title"], "status": got["status"], "priority": got["priority"]})
	}))
	defer srv.Close()

	session := NewMemorySession()
	_ = session.Set("tok", "", nil)
	task, err := New(srv.URL, session).CreateTask(context.Background(), dto.CreateTaskRequest{Title: "write report"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if got["status"] != "pending" || got["priority"] != "medium" {
		t.Errorf("defaults not applied: %v", got)
	}
	if task.ID != "t1" || task.Status != domain.TaskStatusPending {
		t.Errorf("task = %+v", task)
	}
}

func TestPatchOnlySendsSetFields(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		writeJSON(w, http.StatusOK, map[string]any{"id": "t1"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.PatchTask(context.Background(), "t1", TaskPatch{}.Title("new").DueDate(""))
	if err != nil {
		t.Fatalf("PatchTask: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("body = %v, want title and dueDate only", got)
	}
	if v, ok := got["dueDate"]; !ok || v != nil {
		t.Errorf("dueDate = %v, want explicit null", v)
	}
}

func TestNetworkFailureIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Stats(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != 0 || apiErr.Message != genericFailure {
		t.Errorf("err = %+v", apiErr)
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	for i := 0; i < 6; i++ {
		_, _ = c.Stats(context.Background())
	}
	if calls != 4 {
		t.Errorf("server saw %d calls, want 4 before the breaker opened", calls)
	}
	_, err := c.Stats(context.Background())
	if !errors.As(err, new(*APIError)) || err.(*APIError).Message != genericFailure {
		t.Errorf("open breaker should surface the generic failure, got %v", err)
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	for i := 0; i < 8; i++ {
		if _, err := c.GetTask(context.Background(), "missing"); !IsStatus(err, http.StatusNotFound) {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if calls != 8 {
		t.Errorf("calls = %d", calls)
	}
}
