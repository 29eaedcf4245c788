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

// TaskStore owns one flat, ordered task collection. The order is a client
// concern: Reorder and Sort change it locally and never reach the server.
type TaskStore struct {
	*TableState

	mu       sync.RWMutex
	tasks    []model.Task
	projects ProjectRefresher

	api    TaskAPI
	mirror *mirror.Mirror
	sink   notify.Sink
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewTaskStore builds an empty store. Call BindProjects so task mutations
// can refresh their project's task count.
func NewTaskStore(api TaskAPI, deps Deps) *TaskStore {
	deps = deps.withDefaults("tasks")
	return &TaskStore{
		TableState: newTableState(taskTableSlots, deps.Mirror, deps.Log),
		tasks:      []model.Task{},
		api:        api,
		mirror:     deps.Mirror,
		sink:       deps.Sink,
		log:        deps.Log,
		now:        deps.Now,
	}
}

// BindProjects connects the project store refreshed after task changes.
func (s *TaskStore) BindProjects(projects ProjectRefresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
}

// Restore loads the last mirrored collection and table state.
func (s *TaskStore) Restore() {
	var tasks []model.Task
	if s.mirror.Read(mirror.SlotTasks, &tasks) && tasks != nil {
		s.mu.Lock()
		s.tasks = tasks
		s.mu.Unlock()
	}
	s.LoadSorting()
	s.LoadFilters()
	s.LoadColumnWidths()
}

// FetchAll replaces the collection with the server's tasks for projectID.
func (s *TaskStore) FetchAll(ctx context.Context, projectID model.ID) {
	tasks, err := s.api.ListTasks(ctx, projectID)
	if err != nil {
		reportFailure(s.log, s.sink, "load tasks", err, logrus.Fields{"project_id": projectID})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = slices.Clone(tasks)
	if s.tasks == nil {
		s.tasks = []model.Task{}
	}
	s.persistLocked()
}

// Create assigns task a timestamp ID, sends it and adds the server's copy,
// then refreshes the owning project once.
func (s *TaskStore) Create(ctx context.Context, task model.Task) (model.Task, error) {
	if task.ProjectID.IsZero() {
		s.sink.Failure("Task needs a project")
		return model.Task{}, ErrMissingProject
	}
	task.ID = model.NewTimestampID(s.now())
	if task.Status == "" {
		task.Status = model.StatusToDo
	}

	created, err := s.api.CreateTask(ctx, task)
	if err != nil {
		reportFailure(s.log, s.sink, "create task", err, logrus.Fields{"project_id": task.ProjectID, "task_id": task.ID})
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, created)
	s.persistLocked()
	s.mu.Unlock()

	s.sink.Success("Task created")
	s.refreshProject(ctx, task.ProjectID)
	return created, nil
}

// Update overwrites a task on the server and replaces the local copy.
func (s *TaskStore) Update(ctx context.Context, task model.Task) (model.Task, error) {
	updated, err := s.api.UpdateTask(ctx, task)
	if err != nil {
		reportFailure(s.log, s.sink, "update task", err, logrus.Fields{"task_id": task.ID})
		return model.Task{}, fmt.Errorf("update task %s: %w", task.ID, err)
	}

	s.mu.Lock()
	if i := s.indexLocked(updated.ID); i >= 0 {
		s.tasks[i] = updated
	}
	s.persistLocked()
	s.mu.Unlock()

	s.sink.Success("Task updated")
	return updated, nil
}

// Delete removes a task. With shouldRefetch false, as used by a project
// delete cascade, the success notification and the project refresh are
// skipped because the project is about to go away. Failures are always
// reported.
func (s *TaskStore) Delete(ctx context.Context, task model.Task, shouldRefetch bool) error {
	if err := s.api.DeleteTask(ctx, task.ID); err != nil {
		reportFailure(s.log, s.sink, "delete task", err, logrus.Fields{"task_id": task.ID, "project_id": task.ProjectID})
		return fmt.Errorf("delete task %s: %w", task.ID, err)
	}

	s.mu.Lock()
	s.tasks = slices.DeleteFunc(s.tasks, func(t model.Task) bool { return t.ID == task.ID })
	s.persistLocked()
	s.mu.Unlock()

	if shouldRefetch {
		s.sink.Success("Task deleted")
		s.refreshProject(ctx, task.ProjectID)
	}
	return nil
}

// Reorder moves the task at oldIndex so that it ends up at newIndex.
func (s *TaskStore) Reorder(oldIndex, newIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.tasks)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		return fmt.Errorf("%w: move %d to %d in %d tasks", ErrIndexOutOfRange, oldIndex, newIndex, n)
	}
	moved := s.tasks[oldIndex]
	rest := slices.Delete(slices.Clone(s.tasks), oldIndex, oldIndex+1)
	s.tasks = slices.Insert(rest, newIndex, moved)
	s.persistLocked()
	return nil
}

// Sort orders the collection by a task field. Text fields use locale-aware
// collation; identifiers compare numerically when both sides are numbers.
func (s *TaskStore) Sort(key string, order SortOrder) error {
	if !order.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, order)
	}
	field, ok := taskSortFields[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cmp := newValueComparer()
	slices.SortStableFunc(s.tasks, func(a, b model.Task) int {
		c := cmp.compare(field(a), field(b))
		if order == Descending {
			return -c
		}
		return c
	})
	s.persistLocked()
	return nil
}

// ByProject returns the tasks of one project in collection order.
func (s *TaskStore) ByProject(projectID model.ID) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// ByID returns the task with id, if present.
func (s *TaskStore) ByID(id model.ID) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// All returns a copy of the collection in its current order.
func (s *TaskStore) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

func (s *TaskStore) refreshProject(ctx context.Context, id model.ID) {
	s.mu.RLock()
	projects := s.projects
	s.mu.RUnlock()
	if projects != nil {
		projects.FetchOne(ctx, id)
	}
}

func (s *TaskStore) indexLocked(id model.ID) int {
	if id.IsZero() {
		return -1
	}
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *TaskStore) persistLocked() {
	s.mirror.Write(mirror.SlotTasks, s.tasks)
}
