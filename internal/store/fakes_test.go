package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/five82/taskboard/internal/mirror"
	"github.com/five82/taskboard/internal/model"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type call struct {
	op string
	id model.ID
}

type callLog struct {
	mu    sync.Mutex
	calls []call
}

func (l *callLog) add(op string, id model.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call{op: op, id: id})
}

func (l *callLog) snapshot() []call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

func (l *callLog) count(op string) int {
	n := 0
	for _, c := range l.snapshot() {
		if c.op == op {
			n++
		}
	}
	return n
}

var errBackend = errors.New("backend unavailable")

type fakeProjectAPI struct {
	log       *callLog
	mu        sync.Mutex
	projects  []model.Project
	nextID    int64
	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error
}

func (f *fakeProjectAPI) ListProjects(context.Context) ([]model.Project, error) {
	f.log.add("list-projects", "")
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.projects), nil
}

func (f *fakeProjectAPI) GetProject(_ context.Context, id model.ID) (model.Project, error) {
	f.log.add("get-project", id)
	if f.getErr != nil {
		return model.Project{}, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Project{}, errors.New("project not found")
}

func (f *fakeProjectAPI) CreateProject(_ context.Context, p model.Project) (model.Project, error) {
	f.log.add("create-project", p.ID)
	if f.createErr != nil {
		return model.Project{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = model.IDFromInt(f.nextID)
	f.projects = append(f.projects, p)
	return p, nil
}

func (f *fakeProjectAPI) UpdateProject(_ context.Context, p model.Project) (model.Project, error) {
	f.log.add("update-project", p.ID)
	if f.updateErr != nil {
		return model.Project{}, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == p.ID {
			f.projects[i] = p
		}
	}
	return p, nil
}

func (f *fakeProjectAPI) DeleteProject(_ context.Context, id model.ID) error {
	f.log.add("delete-project", id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = slices.DeleteFunc(f.projects, func(p model.Project) bool { return p.ID == id })
	return nil
}

type fakeTaskAPI struct {
	log        *callLog
	mu         sync.Mutex
	tasks      []model.Task
	listErr    error
	createErr  error
	updateErr  error
	deleteErrs map[model.ID]error
}

func (f *fakeTaskAPI) ListTasks(_ context.Context, projectID model.ID) ([]model.Task, error) {
	f.log.add("list-tasks", projectID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskAPI) CreateTask(_ context.Context, t model.Task) (model.Task, error) {
	f.log.add("create-task", t.ID)
	if f.createErr != nil {
		return model.Task{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeTaskAPI) UpdateTask(_ context.Context, t model.Task) (model.Task, error) {
	f.log.add("update-task", t.ID)
	if f.updateErr != nil {
		return model.Task{}, f.updateErr
	}
	return t, nil
}

func (f *fakeTaskAPI) DeleteTask(_ context.Context, id model.ID) error {
	f.log.add("delete-task", id)
	if err := f.deleteErrs[id]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = slices.DeleteFunc(f.tasks, func(t model.Task) bool { return t.ID == id })
	return nil
}

type recordingSink struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (r *recordingSink) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recordingSink) Failure(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func (r *recordingSink) snapshot() (successes, failures []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.successes), slices.Clone(r.failures)
}

type countingRefresher struct {
	mu  sync.Mutex
	ids []model.ID
}

func (c *countingRefresher) FetchOne(_ context.Context, id model.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
}

func (c *countingRefresher) calls() []model.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.ids)
}

type harness struct {
	calls      *callLog
	projectAPI *fakeProjectAPI
	taskAPI    *fakeTaskAPI
	mirror     *mirror.Mirror
	sink       *recordingSink
	projects   *ProjectStore
	tasks      *TaskStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	calls := &callLog{}
	h := &harness{
		calls:      calls,
		projectAPI: &fakeProjectAPI{log: calls},
		taskAPI:    &fakeTaskAPI{log: calls, deleteErrs: map[model.ID]error{}},
		mirror:     mirror.New(mirror.NewMemory(), nil),
		sink:       &recordingSink{},
	}
	deps := Deps{Mirror: h.mirror, Sink: h.sink, Now: func() time.Time { return fixedNow }}
	h.projects = NewProjectStore(h.projectAPI, deps)
	h.tasks = NewTaskStore(h.taskAPI, deps)
	h.projects.BindTasks(h.tasks)
	h.tasks.BindProjects(h.projects)
	return h
}

// seedTasks places tasks in both the fake server and the task store's mirror
// and restores the store from it.
func (h *harness) seedTasks(t *testing.T, tasks ...model.Task) {
	t.Helper()
	h.taskAPI.tasks = append(h.taskAPI.tasks, tasks...)
	h.mirror.Write(mirror.SlotTasks, tasks)
	h.tasks.Restore()
	if got := len(h.tasks.All()); got != len(tasks) {
		t.Fatalf("seeded %d tasks, store holds %d", len(tasks), got)
	}
}

func (h *harness) seedProjects(t *testing.T, projects ...model.Project) {
	t.Helper()
	h.projectAPI.projects = append(h.projectAPI.projects, projects...)
	h.projects.FetchAll(context.Background())
	if got := len(h.projects.All()); got != len(projects) {
		t.Fatalf("seeded %d projects, store holds %d", len(projects), got)
	}
}

// assertMirrored checks that slot holds exactly the JSON form of want.
func assertMirrored(t *testing.T, m *mirror.Mirror, slot mirror.Slot, want any) {
	t.Helper()
	raw, ok := m.ReadRaw(slot)
	if !ok {
		t.Fatalf("slot %s is empty", slot)
	}
	wantJSON, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal want: %v", err)
	}
	if string(raw) != string(wantJSON) {
		t.Fatalf("slot %s = %s, want %s", slot, raw, wantJSON)
	}
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
