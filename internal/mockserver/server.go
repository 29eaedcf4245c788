package mockserver

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/five82/taskboard/internal/model"
)

// Server serves the projects and tasks collections over REST.
type Server struct {
	echo    *echo.Echo
	db      *DB
	log     *log.Logger
	metrics *metrics
}

type errorBody struct {
	Error string `json:"error"`
}

// New wires routes and middleware around db. A nil logger discards output.
func New(db *DB, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New()
		logger.Out = io.Discard
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, db: db, log: logger, metrics: newMetrics()}
	s.metrics.observeCollections(db)

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))
	e.Use(s.metrics.instrument(logger))
	s.register()
	return s
}

func (s *Server) register() {
	s.echo.GET("/metrics", s.metrics.handler())

	s.echo.GET("/projects", s.listProjects)
	s.echo.POST("/projects", s.createProject)
	s.echo.GET("/projects/:id", s.getProject)
	s.echo.PUT("/projects/:id", s.updateProject)
	s.echo.DELETE("/projects/:id", s.deleteProject)

	s.echo.GET("/tasks", s.listTasks)
	s.echo.POST("/tasks", s.createTask)
	s.echo.GET("/tasks/:id", s.getTask)
	s.echo.PUT("/tasks/:id", s.updateTask)
	s.echo.DELETE("/tasks/:id", s.deleteTask)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("mock server listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) listProjects(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.Projects())
}

func (s *Server) getProject(c echo.Context) error {
	p, ok := s.db.Project(model.ID(c.Param("id")))
	if !ok {
		return c.JSON(http.StatusNotFound, struct{}{})
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) createProject(c echo.Context) error {
	var p model.Project
	if err := c.Bind(&p); err != nil {
		return err
	}
	created, err := s.db.InsertProject(p)
	if err != nil {
		return s.writeFailure(c, err)
	}
	s.metrics.observeCollections(s.db)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateProject(c echo.Context) error {
	var p model.Project
	if err := c.Bind(&p); err != nil {
		return err
	}
	updated, err := s.db.ReplaceProject(model.ID(c.Param("id")), p)
	if err != nil {
		return s.writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProject(c echo.Context) error {
	if err := s.db.RemoveProject(model.ID(c.Param("id"))); err != nil {
		return s.writeFailure(c, err)
	}
	s.metrics.observeCollections(s.db)
	return c.JSON(http.StatusOK, struct{}{})
}

func (s *Server) listTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.Tasks(model.ID(c.QueryParam("projectId"))))
}

func (s *Server) getTask(c echo.Context) error {
	t, ok := s.db.Task(model.ID(c.Param("id")))
	if !ok {
		return c.JSON(http.StatusNotFound, struct{}{})
	}
	return c.JSON(http.StatusOK, t)
}

// createTask rejects tasks without an existing project and keeps the
// project's taskCount in step with the collection.
func (s *Server) createTask(c echo.Context) error {
	var t model.Task
	if err := c.Bind(&t); err != nil {
		return err
	}
	if t.ProjectID.IsZero() {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "projectId is required"})
	}
	if _, ok := s.db.Project(t.ProjectID); !ok {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Project not found"})
	}
	created, err := s.db.InsertTask(t)
	if err != nil {
		return s.writeFailure(c, err)
	}
	s.recount(created.ProjectID, "created")
	s.metrics.observeCollections(s.db)
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTask(c echo.Context) error {
	var t model.Task
	if err := c.Bind(&t); err != nil {
		return err
	}
	updated, err := s.db.ReplaceTask(model.ID(c.Param("id")), t)
	if err != nil {
		return s.writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// deleteTask refuses to delete a task whose project is already gone, and
// recounts the project afterwards.
func (s *Server) deleteTask(c echo.Context) error {
	id := model.ID(c.Param("id"))
	t, ok := s.db.Task(id)
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Task not found"})
	}
	if !t.ProjectID.IsZero() {
		if _, ok := s.db.Project(t.ProjectID); !ok {
			return c.JSON(http.StatusNotFound, errorBody{Error: "Project not found"})
		}
	}
	if err := s.db.RemoveTask(id); err != nil {
		return s.writeFailure(c, err)
	}
	if !t.ProjectID.IsZero() {
		s.recount(t.ProjectID, "deleted")
	}
	s.metrics.observeCollections(s.db)
	return c.JSON(http.StatusOK, struct{}{})
}

func (s *Server) recount(projectID model.ID, after string) {
	count, err := s.db.RecountTasks(projectID)
	entry := s.log.WithFields(log.Fields{"project_id": projectID, "after": after})
	if err != nil {
		entry.WithError(err).Error("task count update failed")
		return
	}
	entry.WithField("task_count", count).Debug("task count updated")
}

func (s *Server) writeFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errNotFound):
		return c.JSON(http.StatusNotFound, struct{}{})
	case errors.Is(err, errDuplicateID):
		return c.JSON(http.StatusConflict, errorBody{Error: err.Error()})
	default:
		s.log.WithError(err).WithField("path", c.Request().URL.Path).Error("db write failed")
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "db write failed"})
	}
}
