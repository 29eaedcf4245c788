// Package mirror persists JSON snapshots of client state in named slots.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Slot names a persisted snapshot.
type Slot string

const (
	SlotProjects             Slot = "projects"
	SlotTasks                Slot = "tasks"
	SlotProjectColumnWidths  Slot = "projectColumnWidths"
	SlotTaskColumnWidths     Slot = "taskColumnWidths"
	SlotProjectsTableSorting Slot = "projectsTableSorting"
	SlotProjectsTableFilters Slot = "projectsTableFilters"
	SlotTasksTableSorting    Slot = "tasksTableSorting"
	SlotTasksTableFilters    Slot = "tasksTableFilters"
)

// ErrNotFound is returned by a Backend when a slot was never written.
var ErrNotFound = errors.New("slot not found")

// Backend stores raw slot payloads.
type Backend interface {
	Get(ctx context.Context, slot Slot) ([]byte, error)
	Put(ctx context.Context, slot Slot, payload []byte) error
	Close() error
}

const defaultTimeout = 2 * time.Second

// Mirror persists JSON snapshots of in-memory state. It never reports
// failures to the caller: the in-memory state stays authoritative and every
// problem is logged instead.
type Mirror struct {
	backend Backend
	log     logrus.FieldLogger
	timeout time.Duration
}

// New wraps backend. A nil logger discards log output.
func New(backend Backend, logger logrus.FieldLogger) *Mirror {
	if backend == nil {
		backend = NewMemory()
	}
	if logger == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		logger = discard
	}
	return &Mirror{
		backend: backend,
		log:     logger.WithField("component", "mirror"),
		timeout: defaultTimeout,
	}
}

// Write serializes value and stores it under slot, replacing the previous
// payload.
func (m *Mirror) Write(slot Slot, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		m.log.WithError(err).WithField("slot", slot).Warn("mirror encode failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.backend.Put(ctx, slot, payload); err != nil {
		m.log.WithError(err).WithField("slot", slot).Warn("mirror write failed")
	}
}

// ReadRaw returns the stored payload for slot. The boolean is false when the
// slot is absent or the backend failed.
func (m *Mirror) ReadRaw(slot Slot) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	payload, err := m.backend.Get(ctx, slot)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.log.WithError(err).WithField("slot", slot).Warn("mirror read failed")
		}
		return nil, false
	}
	return payload, true
}

// Read decodes the payload of slot into dest. Absent slots and unparsable
// payloads both report false.
func (m *Mirror) Read(slot Slot, dest any) bool {
	payload, ok := m.ReadRaw(slot)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		m.log.WithError(err).WithField("slot", slot).Warn("mirror payload unreadable")
		return false
	}
	return true
}

// Close releases the backend.
func (m *Mirror) Close() error {
	return m.backend.Close()
}
