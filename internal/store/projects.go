package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/taskboard/internal/mirror"
	"github.com/five82/taskboard/internal/model"
	"github.com/five82/taskboard/internal/notify"
)

// ProjectStore owns the in-memory project collection. It is the only writer
// of Project.TaskCount, which it refreshes from the server rather than
// computing locally.
type ProjectStore struct {
	*TableState

	mu       sync.RWMutex
	projects []model.Project
	tasks    TaskCascade

	api    ProjectAPI
	mirror *mirror.Mirror
	sink   notify.Sink
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewProjectStore builds an empty store. Call BindTasks before Delete so the
// cascade can reach the task store.
func NewProjectStore(api ProjectAPI, deps Deps) *ProjectStore {
	deps = deps.withDefaults("projects")
	return &ProjectStore{
		TableState: newTableState(projectTableSlots, deps.Mirror, deps.Log),
		projects:   []model.Project{},
		api:        api,
		mirror:     deps.Mirror,
		sink:       deps.Sink,
		log:        deps.Log,
		now:        deps.Now,
	}
}

// BindTasks connects the task store used by the delete cascade.
func (s *ProjectStore) BindTasks(tasks TaskCascade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
}

// Restore loads the last mirrored collection and table state.
func (s *ProjectStore) Restore() {
	var projects []model.Project
	if s.mirror.Read(mirror.SlotProjects, &projects) && projects != nil {
		s.mu.Lock()
		s.projects = projects
		s.mu.Unlock()
	}
	s.LoadSorting()
	s.LoadFilters()
	s.LoadColumnWidths()
}

// FetchAll replaces the collection with the server's. On failure the
// collection is left as it was and the user is notified.
func (s *ProjectStore) FetchAll(ctx context.Context) {
	if err := s.Sync(ctx); err != nil {
		s.sink.Failure("Failed to load projects")
	}
}

// Sync is FetchAll for background callers: failures are logged and returned
// instead of being shown to the user.
func (s *ProjectStore) Sync(ctx context.Context) error {
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		s.log.WithError(err).Error("load projects failed")
		return fmt.Errorf("load projects: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = slices.Clone(projects)
	if s.projects == nil {
		s.projects = []model.Project{}
	}
	s.persistLocked()
	return nil
}

// FetchOne refreshes a single project, appending it when unknown. Task
// mutations use it to pick up the server-side task count.
func (s *ProjectStore) FetchOne(ctx context.Context, id model.ID) {
	project, err := s.api.GetProject(ctx, id)
	if err != nil {
		reportFailure(s.log, s.sink, "load project", err, logrus.Fields{"project_id": id})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(project.ID); i >= 0 {
		s.projects[i] = project
	} else {
		s.projects = append(s.projects, project)
	}
	s.persistLocked()
}

// Create sends a new project built from draft and adds the server's copy.
func (s *ProjectStore) Create(ctx context.Context, draft model.ProjectDraft) (model.Project, error) {
	if err := draft.Validate(); err != nil {
		s.sink.Failure("Project name is required")
		return model.Project{}, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	candidate := model.Project{
		Name:        draft.Name,
		Description: draft.Description,
		TaskCount:   0,
		Status:      model.StatusToDo,
		CreatedAt:   model.Today(s.now()),
	}
	created, err := s.api.CreateProject(ctx, candidate)
	if err != nil {
		reportFailure(s.log, s.sink, "create project", err, logrus.Fields{"name": draft.Name})
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}

	s.mu.Lock()
	s.projects = append(s.projects, created)
	s.persistLocked()
	s.mu.Unlock()

	s.sink.Success("Project created")
	return created, nil
}

// Update overwrites a project on the server and replaces the local copy.
func (s *ProjectStore) Update(ctx context.Context, project model.Project) (model.Project, error) {
	updated, err := s.api.UpdateProject(ctx, project)
	if err != nil {
		reportFailure(s.log, s.sink, "update project", err, logrus.Fields{"project_id": project.ID})
		return model.Project{}, fmt.Errorf("update project %s: %w", project.ID, err)
	}

	s.mu.Lock()
	if i := s.indexLocked(updated.ID); i >= 0 {
		s.projects[i] = updated
	}
	s.persistLocked()
	s.mu.Unlock()

	s.sink.Success("Project updated")
	return updated, nil
}

// Delete removes a project and, first, every task the task store holds for
// it. Tasks are deleted one at a time; the first failure stops the cascade
// and leaves the project and any remaining tasks in place. Nothing already
// deleted is restored.
func (s *ProjectStore) Delete(ctx context.Context, id model.ID) error {
	s.mu.RLock()
	tasks := s.tasks
	s.mu.RUnlock()

	var dependents []model.Task
	if tasks != nil {
		dependents = tasks.ByProject(id)
	}
	for i, task := range dependents {
		if err := tasks.Delete(ctx, task, false); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"project_id": id,
				"task_id":    task.ID,
				"deleted":    i,
				"remaining":  len(dependents) - i,
			}).Error("project delete cascade aborted")
			return fmt.Errorf("delete task %s of project %s: %w", task.ID, id, err)
		}
	}
	if len(dependents) > 0 {
		s.sink.Success(fmt.Sprintf("Deleted %d tasks", len(dependents)))
	}

	if err := s.api.DeleteProject(ctx, id); err != nil {
		reportFailure(s.log, s.sink, "delete project", err, logrus.Fields{"project_id": id})
		return fmt.Errorf("delete project %s: %w", id, err)
	}

	s.mu.Lock()
	s.projects = slices.DeleteFunc(s.projects, func(p model.Project) bool { return p.ID == id })
	s.persistLocked()
	s.mu.Unlock()

	s.sink.Success("Project deleted")
	return nil
}

// ByID returns the project with id, if present.
func (s *ProjectStore) ByID(id model.ID) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.projects[i], true
	}
	return model.Project{}, false
}

// All returns a copy of the collection in server order.
func (s *ProjectStore) All() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projects)
}

func (s *ProjectStore) indexLocked(id model.ID) int {
	if id.IsZero() {
		return -1
	}
	return slices.IndexFunc(s.projects, func(p model.Project) bool { return p.ID == id })
}

func (s *ProjectStore) persistLocked() {
	s.mirror.Write(mirror.SlotProjects, s.projects)
}
