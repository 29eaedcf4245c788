package store

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/taskboard/internal/mirror"
	"github.com/five82/taskboard/internal/model"
	"github.com/five82/taskboard/internal/notify"
)

var (
	ErrInvalidDraft     = errors.New("invalid project draft")
	ErrMissingProject   = errors.New("task has no project")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrInvalidSortOrder = errors.New("sort order must be asc or desc")
)

// ProjectAPI is the subset of the remote client the project store needs.
type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id model.ID) (model.Project, error)
	CreateProject(ctx context.Context, p model.Project) (model.Project, error)
	UpdateProject(ctx context.Context, p model.Project) (model.Project, error)
	DeleteProject(ctx context.Context, id model.ID) error
}

// TaskAPI is the subset of the remote client the task store needs.
type TaskAPI interface {
	ListTasks(ctx context.Context, projectID model.ID) ([]model.Task, error)
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, id model.ID) error
}

// TaskCascade is what a project deletion needs from the task store.
type TaskCascade interface {
	ByProject(projectID model.ID) []model.Task
	Delete(ctx context.Context, task model.Task, shouldRefetch bool) error
}

// ProjectRefresher is what task mutations need from the project store.
type ProjectRefresher interface {
	FetchOne(ctx context.Context, id model.ID)
}

// Deps are the collaborators shared by both stores.
type Deps struct {
	Mirror *mirror.Mirror
	Sink   notify.Sink
	Log    logrus.FieldLogger
	Now    func() time.Time
}

func (d Deps) withDefaults(component string) Deps {
	if d.Log == nil {
		quiet := logrus.New()
		quiet.Out = io.Discard
		d.Log = quiet
	}
	d.Log = d.Log.WithField("component", component)
	if d.Mirror == nil {
		d.Mirror = mirror.New(mirror.NewMemory(), d.Log)
	}
	if d.Sink == nil {
		d.Sink = notify.Discard
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// reportFailure logs err and tells the user that action failed.
func reportFailure(log logrus.FieldLogger, sink notify.Sink, action string, err error, fields logrus.Fields) {
	log.WithFields(fields).WithError(err).Error(action + " failed")
	sink.Failure("Failed to " + action)
}
