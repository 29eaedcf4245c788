package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/taskboard/internal/model"
)

type recordedRequest struct {
	Method    string
	Path      string
	Query     string
	Body      string
	RequestID string
	UserAgent string
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL+"/" {
		t.Fatalf("url = %q, want %q", u.String(), defaultBaseURL+"/")
	}

	u, err = parseBaseURL("example.com:4000/api?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/api/" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_MapsOperationsToRESTCalls(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var got []recordedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, recordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Body:      string(body),
			RequestID: r.Header.Get("X-Request-ID"),
			UserAgent: r.Header.Get("User-Agent"),
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects":
			_, _ = w.Write([]byte(`[{"id":1,"name":"Alpha","taskCount":2,"status":"To Do","createdAt":"2025-01-02"}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects/1":
			_, _ = w.Write([]byte(`{"id":1,"name":"Alpha","taskCount":3}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/projects":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":7,"name":"New","taskCount":0,"status":"To Do","createdAt":"2025-01-02"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/api/projects/7":
			_, _ = w.Write(body)
		case r.Method == http.MethodGet && r.URL.Path == "/api/tasks":
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/tasks":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(body)
		case r.Method == http.MethodPut && r.URL.Path == "/api/tasks/99":
			_, _ = w.Write(body)
		case r.Method == http.MethodDelete:
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/api", nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	projects, err := c.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects returned error: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "1" || projects[0].TaskCount != 2 {
		t.Fatalf("ListProjects = %#v, want one project id=1", projects)
	}

	one, err := c.GetProject(ctx, "1")
	if err != nil || one.TaskCount != 3 {
		t.Fatalf("GetProject = %#v, %v, want taskCount=3", one, err)
	}

	created, err := c.CreateProject(ctx, model.Project{Name: "New", Status: model.StatusToDo, CreatedAt: "2025-01-02"})
	if err != nil || created.ID != "7" {
		t.Fatalf("CreateProject = %#v, %v, want id=7", created, err)
	}

	created.Description = "changed"
	updated, err := c.UpdateProject(ctx, created)
	if err != nil || updated.Description != "changed" {
		t.Fatalf("UpdateProject = %#v, %v, want echoed body", updated, err)
	}

	tasks, err := c.ListTasks(ctx, "7")
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("ListTasks = %#v, want empty non-nil slice", tasks)
	}

	task := model.Task{ID: "99", ProjectID: "7", Title: "Write", Status: model.StatusToDo}
	echoed, err := c.CreateTask(ctx, task)
	if err != nil || echoed != task {
		t.Fatalf("CreateTask = %#v, %v, want echo of %#v", echoed, err, task)
	}
	task.Title = "Rewrite"
	if echoed, err = c.UpdateTask(ctx, task); err != nil || echoed.Title != "Rewrite" {
		t.Fatalf("UpdateTask = %#v, %v", echoed, err)
	}
	if err := c.DeleteTask(ctx, "99"); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	if err := c.DeleteProject(ctx, "7"); err != nil {
		t.Fatalf("DeleteProject returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []struct{ method, path string }{
		{http.MethodGet, "/api/projects"},
		{http.MethodGet, "/api/projects/1"},
		{http.MethodPost, "/api/projects"},
		{http.MethodPut, "/api/projects/7"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/99"},
		{http.MethodDelete, "/api/tasks/99"},
		{http.MethodDelete, "/api/projects/7"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d requests, want %d: %#v", len(got), len(want), got)
	}
	seen := map[string]bool{}
	for i, w := range want {
		if got[i].Method != w.method || got[i].Path != w.path {
			t.Fatalf("request %d = %s %s, want %s %s", i, got[i].Method, got[i].Path, w.method, w.path)
		}
		if got[i].RequestID == "" || seen[got[i].RequestID] {
			t.Fatalf("request %d has missing or repeated X-Request-ID %q", i, got[i].RequestID)
		}
		seen[got[i].RequestID] = true
		if !strings.HasPrefix(got[i].UserAgent, "taskboard/") {
			t.Fatalf("User-Agent = %q, want taskboard/*", got[i].UserAgent)
		}
	}
	if got[4].Query != "projectId=7" {
		t.Fatalf("ListTasks query = %q, want projectId=7", got[4].Query)
	}

	var sent map[string]any
	if err := json.Unmarshal([]byte(got[2].Body), &sent); err != nil {
		t.Fatalf("decode CreateProject body: %v", err)
	}
	if _, ok := sent["id"]; ok {
		t.Fatalf("CreateProject body carries an id: %s", got[2].Body)
	}
	if sent["taskCount"] != float64(0) || sent["status"] != "To Do" {
		t.Fatalf("CreateProject body = %s", got[2].Body)
	}
}

func TestClient_NonSuccessStatusIsStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Project not found"}`, http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.GetProject(context.Background(), "404")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("GetProject error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusNotFound || statusErr.Path != "/projects/404" {
		t.Fatalf("StatusError = %#v, want 404 on /projects/404", statusErr)
	}
	if !strings.Contains(err.Error(), "returned status 404") {
		t.Fatalf("error text = %q", err.Error())
	}
}

func TestClient_DecodeAndTransportErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not-json"))
	}))
	c, err := NewClient(server.URL, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.ListProjects(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("ListProjects error = %v, want decode response error", err)
	}

	server.Close()
	_, err = c.ListProjects(context.Background())
	if err == nil || !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("ListProjects error = %v, want execute request error", err)
	}
}

func TestClient_RejectsMissingIDs(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()
	if _, err := c.UpdateProject(ctx, model.Project{}); err == nil {
		t.Fatalf("UpdateProject without id returned nil error")
	}
	if err := c.DeleteProject(ctx, ""); err == nil {
		t.Fatalf("DeleteProject without id returned nil error")
	}
	if _, err := c.UpdateTask(ctx, model.Task{}); err == nil {
		t.Fatalf("UpdateTask without id returned nil error")
	}
	if err := c.DeleteTask(ctx, ""); err == nil {
		t.Fatalf("DeleteTask without id returned nil error")
	}
}
