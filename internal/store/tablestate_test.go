package store

import (
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/five82/taskboard/internal/mirror"
)

func newTestTableState(t *testing.T) (*TableState, *mirror.Mirror, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	m := mirror.New(mirror.NewMemory(), nil)
	return newTableState(taskTableSlots, m, logger), m, hook
}

func putRaw(t *testing.T, m *mirror.Mirror, slot mirror.Slot, payload string) {
	t.Helper()
	m.Write(slot, rawJSON(payload))
}

type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) { return []byte(r), nil }

func TestLoadSorting_AcceptsValidEntries(t *testing.T) {
	ts, m, hook := newTestTableState(t)
	putRaw(t, m, mirror.SlotTasksTableSorting, `[{"key":"title","order":"asc"},{"key":"dueDate","order":"desc","extra":true}]`)

	got := ts.LoadSorting()
	want := []SortEntry{{Key: "title", Order: Ascending}, {Key: "dueDate", Order: Descending}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadSorting = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(ts.Sorting(), want) {
		t.Fatalf("Sorting = %+v", ts.Sorting())
	}
	if len(hook.AllEntries()) != 0 {
		t.Fatalf("unexpected log entries: %v", hook.AllEntries())
	}
}

func TestLoadSorting_DiscardsMalformedPayloads(t *testing.T) {
	payloads := map[string]string{
		"bad order":       `[{"key":"title","order":"up"}]`,
		"one bad of many": `[{"key":"title","order":"asc"},{"key":"status","order":"sideways"}]`,
		"numeric key":     `[{"key":5,"order":"asc"}]`,
		"missing order":   `[{"key":"title"}]`,
		"not an object":   `["title"]`,
		"not an array":    `{"key":"title","order":"asc"}`,
		"null":            `null`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			ts, m, hook := newTestTableState(t)
			ts.SaveSorting([]SortEntry{{Key: "stale", Order: Ascending}})
			putRaw(t, m, mirror.SlotTasksTableSorting, payload)

			if got := ts.LoadSorting(); len(got) != 0 {
				t.Fatalf("LoadSorting = %+v, want empty", got)
			}
			if got := ts.Sorting(); got == nil || len(got) != 0 {
				t.Fatalf("Sorting = %#v, want empty slice", got)
			}
			entry := hook.LastEntry()
			if entry == nil || entry.Level != logrus.WarnLevel || entry.Message != "discarding stored sorting" {
				t.Fatalf("unexpected log entry: %+v", entry)
			}
		})
	}
}

func TestLoadSorting_WithoutStoredValue(t *testing.T) {
	ts, _, hook := newTestTableState(t)
	if got := ts.LoadSorting(); got == nil || len(got) != 0 {
		t.Fatalf("LoadSorting = %#v, want empty slice", got)
	}
	if len(hook.AllEntries()) != 0 {
		t.Fatal("absent sorting should not be logged")
	}
}

func TestSaveSorting_RoundTrip(t *testing.T) {
	ts, m, _ := newTestTableState(t)
	ts.SaveSorting([]SortEntry{{Key: "assignee", Order: Descending}})

	reloaded := newTableState(taskTableSlots, m, logrus.New())
	got := reloaded.LoadSorting()
	if len(got) != 1 || got[0] != (SortEntry{Key: "assignee", Order: Descending}) {
		t.Fatalf("LoadSorting = %+v", got)
	}
}

func TestFiltersStoredVerbatim(t *testing.T) {
	ts, m, _ := newTestTableState(t)
	putRaw(t, m, mirror.SlotTasksTableFilters, `{"status":["Done"],"anything":{"nested":1}}`)

	got := ts.LoadFilters()
	want := Filters{
		"status":   []any{"Done"},
		"anything": map[string]any{"nested": float64(1)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadFilters = %#v, want %#v", got, want)
	}

	ts.SaveFilters(Filters{"assignee": "Ana"})
	reloaded := newTableState(taskTableSlots, m, logrus.New())
	if got := reloaded.LoadFilters(); got["assignee"] != "Ana" || len(got) != 1 {
		t.Fatalf("reloaded filters = %#v", got)
	}
}

func TestColumnWidthsRoundTrip(t *testing.T) {
	ts, m, _ := newTestTableState(t)
	ts.SaveColumnWidths(ColumnWidths{"title": 32, "status": 12})

	reloaded := newTableState(taskTableSlots, m, logrus.New())
	got := reloaded.LoadColumnWidths()
	if !reflect.DeepEqual(got, ColumnWidths{"title": 32, "status": 12}) {
		t.Fatalf("LoadColumnWidths = %#v", got)
	}

	got["title"] = 1
	if reloaded.ColumnWidths()["title"] != 32 {
		t.Fatal("ColumnWidths exposed internal map")
	}
}

func TestTableSlotsAreIndependent(t *testing.T) {
	m := mirror.New(mirror.NewMemory(), nil)
	projects := newTableState(projectTableSlots, m, logrus.New())
	tasks := newTableState(taskTableSlots, m, logrus.New())

	projects.SaveSorting([]SortEntry{{Key: "name", Order: Ascending}})
	if got := tasks.LoadSorting(); len(got) != 0 {
		t.Fatalf("task sorting picked up project state: %+v", got)
	}
	if _, ok := m.ReadRaw(mirror.SlotProjectsTableSorting); !ok {
		t.Fatal("project sorting slot not written")
	}
}
