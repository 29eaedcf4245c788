// Package remote is the REST client for the /projects and /tasks collections.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/five82/taskboard/internal/model"
)

const (
	defaultBaseURL   = "http://127.0.0.1:3000"
	defaultUserAgent = "taskboard/0.1"
	requestTimeout   = 10 * time.Second
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
}

// Client talks to the projects/tasks REST collections. Every call is a
// single attempt.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       logrus.FieldLogger
}

// NewClient builds a Client for baseURL. A missing scheme defaults to http.
func NewClient(baseURL string, logger logrus.FieldLogger) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		quiet := logrus.New()
		quiet.Out = io.Discard
		logger = quiet
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		log:       logger.WithField("component", "remote"),
	}, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListProjects returns every project.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	projects := []model.Project{}
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "projects"}, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a single project. A missing project is a *StatusError.
func (c *Client) GetProject(ctx context.Context, id model.ID) (model.Project, error) {
	var project model.Project
	if err := c.do(ctx, http.MethodGet, resourcePath("projects", id), nil, &project); err != nil {
		return model.Project{}, err
	}
	return project, nil
}

// CreateProject posts p and returns the stored record.
func (c *Client) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	var created model.Project
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: "projects"}, p, &created); err != nil {
		return model.Project{}, err
	}
	return created, nil
}

// UpdateProject replaces the project identified by p.ID.
func (c *Client) UpdateProject(ctx context.Context, p model.Project) (model.Project, error) {
	if p.ID.IsZero() {
		return model.Project{}, fmt.Errorf("project id required")
	}
	var updated model.Project
	if err := c.do(ctx, http.MethodPut, resourcePath("projects", p.ID), p, &updated); err != nil {
		return model.Project{}, err
	}
	return updated, nil
}

// DeleteProject removes a project. It does not touch the project's tasks.
func (c *Client) DeleteProject(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return fmt.Errorf("project id required")
	}
	return c.do(ctx, http.MethodDelete, resourcePath("projects", id), nil, nil)
}

// ListTasks returns the tasks of one project.
func (c *Client) ListTasks(ctx context.Context, projectID model.ID) ([]model.Task, error) {
	values := url.Values{}
	values.Set("projectId", projectID.String())
	tasks := []model.Task{}
	rel := &url.URL{Path: "tasks", RawQuery: values.Encode()}
	if err := c.do(ctx, http.MethodGet, rel, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask posts t, which already carries its client-assigned ID.
func (c *Client) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	var created model.Task
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: "tasks"}, t, &created); err != nil {
		return model.Task{}, err
	}
	return created, nil
}

// UpdateTask replaces the task identified by t.ID.
func (c *Client) UpdateTask(ctx context.Context, t model.Task) (model.Task, error) {
	if t.ID.IsZero() {
		return model.Task{}, fmt.Errorf("task id required")
	}
	var updated model.Task
	if err := c.do(ctx, http.MethodPut, resourcePath("tasks", t.ID), t, &updated); err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return fmt.Errorf("task id required")
	}
	return c.do(ctx, http.MethodDelete, resourcePath("tasks", id), nil, nil)
}

func resourcePath(collection string, id model.ID) *url.URL {
	return &url.URL{Path: collection + "/" + id.String()}
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       reqURL.Path,
		"request_id": requestID,
	})
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debug("request complete")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: method, Path: reqURL.Path, Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	// A trailing slash lets relative references keep any path prefix.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
