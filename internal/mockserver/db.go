package mockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/five82/taskboard/internal/model"
)

var (
	errNotFound    = errors.New("record not found")
	errDuplicateID = errors.New("duplicate id")
)

// snapshot is the on-disk shape of the database file.
type snapshot struct {
	Projects []model.Project `json:"projects"`
	Tasks    []model.Task    `json:"tasks"`
}

// DB holds both collections and rewrites the backing file after every write.
// An empty path keeps everything in memory.
type DB struct {
	mu   sync.RWMutex
	path string
	data snapshot
}

// OpenDB loads path when it exists and starts empty otherwise.
func OpenDB(path string) (*DB, error) {
	db := &DB{path: path, data: snapshot{Projects: []model.Project{}, Tasks: []model.Task{}}}
	if path == "" {
		return db, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return db, nil
		}
		return nil, fmt.Errorf("read db: %w", err)
	}
	if err := json.Unmarshal(raw, &db.data); err != nil {
		return nil, fmt.Errorf("parse db %s: %w", path, err)
	}
	if db.data.Projects == nil {
		db.data.Projects = []model.Project{}
	}
	if db.data.Tasks == nil {
		db.data.Tasks = []model.Task{}
	}
	return db, nil
}

// Projects returns a copy of the project collection.
func (db *DB) Projects() []model.Project {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return slices.Clone(db.data.Projects)
}

// Project returns one project.
func (db *DB) Project(id model.ID) (model.Project, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if i := db.projectIndex(id); i >= 0 {
		return db.data.Projects[i], true
	}
	return model.Project{}, false
}

// InsertProject stores p, assigning the next numeric id when it has none.
func (db *DB) InsertProject(p model.Project) (model.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = nextID(db.data.Projects, func(p model.Project) model.ID { return p.ID })
	} else if db.projectIndex(p.ID) >= 0 {
		return model.Project{}, fmt.Errorf("%w: project %s", errDuplicateID, p.ID)
	}
	db.data.Projects = append(db.data.Projects, p)
	return p, db.save()
}

// ReplaceProject overwrites the project stored under id.
func (db *DB) ReplaceProject(id model.ID, p model.Project) (model.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	i := db.projectIndex(id)
	if i < 0 {
		return model.Project{}, errNotFound
	}
	p.ID = id
	db.data.Projects[i] = p
	return p, db.save()
}

// RemoveProject deletes a project along with any task that still points at
// it.
func (db *DB) RemoveProject(id model.ID) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	i := db.projectIndex(id)
	if i < 0 {
		return errNotFound
	}
	db.data.Projects = slices.Delete(db.data.Projects, i, i+1)
	db.data.Tasks = slices.DeleteFunc(db.data.Tasks, func(t model.Task) bool { return t.ProjectID == id })
	return db.save()
}

// Tasks returns the tasks of projectID, or all tasks when it is empty.
func (db *DB) Tasks(projectID model.ID) []model.Task {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := []model.Task{}
	for _, t := range db.data.Tasks {
		if projectID.IsZero() || t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// Task returns one task.
func (db *DB) Task(id model.ID) (model.Task, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if i := db.taskIndex(id); i >= 0 {
		return db.data.Tasks[i], true
	}
	return model.Task{}, false
}

// InsertTask stores t, assigning the next numeric id when it has none.
func (db *DB) InsertTask(t model.Task) (model.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = nextID(db.data.Tasks, func(t model.Task) model.ID { return t.ID })
	} else if db.taskIndex(t.ID) >= 0 {
		return model.Task{}, fmt.Errorf("%w: task %s", errDuplicateID, t.ID)
	}
	db.data.Tasks = append(db.data.Tasks, t)
	return t, db.save()
}

// ReplaceTask overwrites the task stored under id.
func (db *DB) ReplaceTask(id model.ID, t model.Task) (model.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	i := db.taskIndex(id)
	if i < 0 {
		return model.Task{}, errNotFound
	}
	t.ID = id
	db.data.Tasks[i] = t
	return t, db.save()
}

// RemoveTask deletes one task.
func (db *DB) RemoveTask(id model.ID) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	i := db.taskIndex(id)
	if i < 0 {
		return errNotFound
	}
	db.data.Tasks = slices.Delete(db.data.Tasks, i, i+1)
	return db.save()
}

// RecountTasks sets the project's taskCount to the number of tasks that
// reference it. Unknown projects are ignored.
func (db *DB) RecountTasks(projectID model.ID) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	i := db.projectIndex(projectID)
	if i < 0 {
		return 0, nil
	}
	count := 0
	for _, t := range db.data.Tasks {
		if t.ProjectID == projectID {
			count++
		}
	}
	db.data.Projects[i].TaskCount = count
	return count, db.save()
}

func (db *DB) projectIndex(id model.ID) int {
	return slices.IndexFunc(db.data.Projects, func(p model.Project) bool { return p.ID == id })
}

func (db *DB) taskIndex(id model.ID) int {
	return slices.IndexFunc(db.data.Tasks, func(t model.Task) bool { return t.ID == id })
}

// save must be called with mu held.
func (db *DB) save() error {
	if db.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(db.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode db: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(db.path), ".db-*.json")
	if err != nil {
		return fmt.Errorf("create temp db: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write db: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	if err := os.Rename(tmp.Name(), db.path); err != nil {
		return fmt.Errorf("replace db: %w", err)
	}
	return nil
}

// nextID returns one more than the largest numeric id in records.
func nextID[T any](records []T, idOf func(T) model.ID) model.ID {
	var maxID int64
	for _, r := range records {
		if n, ok := idOf(r).Int(); ok && n > maxID {
			maxID = n
		}
	}
	return model.IDFromInt(maxID + 1)
}
