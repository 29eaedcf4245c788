package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/taskboard/internal/mirror"
)

// SortOrder is the direction of a sort entry.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Valid reports whether o is asc or desc.
func (o SortOrder) Valid() bool {
	return o == Ascending || o == Descending
}

// SortEntry is one column of a table's sort state.
type SortEntry struct {
	Key   string    `json:"key"`
	Order SortOrder `json:"order"`
}

// Filters is a table's filter state. Its shape belongs to the view layer and
// is stored without validation.
type Filters map[string]any

// ColumnWidths maps column keys to widths.
type ColumnWidths map[string]int

type tableSlots struct {
	sorting mirror.Slot
	filters mirror.Slot
	widths  mirror.Slot
}

var (
	projectTableSlots = tableSlots{
		sorting: mirror.SlotProjectsTableSorting,
		filters: mirror.SlotProjectsTableFilters,
		widths:  mirror.SlotProjectColumnWidths,
	}
	taskTableSlots = tableSlots{
		sorting: mirror.SlotTasksTableSorting,
		filters: mirror.SlotTasksTableFilters,
		widths:  mirror.SlotTaskColumnWidths,
	}
)

// TableState holds the persisted display preferences of one table.
type TableState struct {
	mu      sync.RWMutex
	slots   tableSlots
	mirror  *mirror.Mirror
	log     logrus.FieldLogger
	sorting []SortEntry
	filters Filters
	widths  ColumnWidths
}

func newTableState(slots tableSlots, m *mirror.Mirror, log logrus.FieldLogger) *TableState {
	return &TableState{
		slots:   slots,
		mirror:  m,
		log:     log,
		sorting: []SortEntry{},
		filters: Filters{},
		widths:  ColumnWidths{},
	}
}

// SaveSorting replaces the sort state and mirrors it.
func (t *TableState) SaveSorting(entries []SortEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sorting = append([]SortEntry{}, entries...)
	t.mirror.Write(t.slots.sorting, t.sorting)
}

// LoadSorting reads the mirrored sort state. A payload with any malformed
// entry is discarded whole and the state becomes empty.
func (t *TableState) LoadSorting() []SortEntry {
	entries := []SortEntry{}
	if raw, ok := t.mirror.ReadRaw(t.slots.sorting); ok {
		parsed, err := ParseSorting(raw)
		if err != nil {
			t.log.WithError(err).WithField("slot", t.slots.sorting).Warn("discarding stored sorting")
		} else {
			entries = parsed
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sorting = entries
	return slices.Clone(entries)
}

// Sorting returns the current sort state.
func (t *TableState) Sorting() []SortEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.sorting)
}

// SaveFilters replaces the filter state and mirrors it.
func (t *TableState) SaveFilters(filters Filters) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filters = maps.Clone(filters)
	if t.filters == nil {
		t.filters = Filters{}
	}
	t.mirror.Write(t.slots.filters, t.filters)
}

// LoadFilters reads the mirrored filter state as-is.
func (t *TableState) LoadFilters() Filters {
	filters := Filters{}
	var stored Filters
	if t.mirror.Read(t.slots.filters, &stored) && stored != nil {
		filters = stored
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filters = filters
	return maps.Clone(filters)
}

// Filters returns the current filter state.
func (t *TableState) Filters() Filters {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.filters)
}

// SaveColumnWidths replaces the column widths and mirrors them.
func (t *TableState) SaveColumnWidths(widths ColumnWidths) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.widths = maps.Clone(widths)
	if t.widths == nil {
		t.widths = ColumnWidths{}
	}
	t.mirror.Write(t.slots.widths, t.widths)
}

// LoadColumnWidths reads the mirrored column widths.
func (t *TableState) LoadColumnWidths() ColumnWidths {
	widths := ColumnWidths{}
	var stored ColumnWidths
	if t.mirror.Read(t.slots.widths, &stored) && stored != nil {
		widths = stored
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.widths = widths
	return maps.Clone(widths)
}

// ColumnWidths returns the current column widths.
func (t *TableState) ColumnWidths() ColumnWidths {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.widths)
}

// ParseSorting decodes a stored sort state. Every element must be an object
// with a string "key" and an "order" of asc or desc; the first element that
// is not fails the whole payload.
func ParseSorting(raw []byte) ([]SortEntry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("sorting is not an array: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("sorting is null")
	}
	entries := make([]SortEntry, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return nil, fmt.Errorf("sorting[%d] is not an object", i)
		}
		key, ok := jsonString(fields["key"])
		if !ok {
			return nil, fmt.Errorf("sorting[%d].key is not a string", i)
		}
		order, ok := jsonString(fields["order"])
		if !ok || !SortOrder(order).Valid() {
			return nil, fmt.Errorf("sorting[%d].order %s is not asc or desc", i, fields["order"])
		}
		entries = append(entries, SortEntry{Key: key, Order: SortOrder(order)})
	}
	return entries, nil
}

func jsonString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}
