package ui

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/taskboard/internal/model"
	"github.com/five82/taskboard/internal/store"
)

var projectSortKeys = []string{"name", "status", "taskCount", "createdAt"}

const (
	defaultFirstColumn = 28
	minFirstColumn     = 8
	maxFirstColumn     = 80
)

// projectRows returns the projects in display order. The store keeps server
// order; sorting here only affects what is drawn.
func (m Model) projectRows() []model.Project {
	rows := m.projects.All()
	sorting := m.projects.Sorting()
	if len(sorting) == 0 {
		return rows
	}
	entry := sorting[0]
	slices.SortStableFunc(rows, func(a, b model.Project) int {
		var c int
		switch entry.Key {
		case "name":
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case "status":
			c = cmp.Compare(slices.Index(model.Statuses, a.Status), slices.Index(model.Statuses, b.Status))
		case "taskCount":
			c = cmp.Compare(a.TaskCount, b.TaskCount)
		case "createdAt":
			c = cmp.Compare(a.CreatedAt, b.CreatedAt)
		}
		if entry.Order == store.Descending {
			return -c
		}
		return c
	})
	return rows
}

func (m Model) selectedProject() (model.Project, bool) {
	rows := m.projectRows()
	if m.projectRow < 0 || m.projectRow >= len(rows) {
		return model.Project{}, false
	}
	return rows[m.projectRow], true
}

func (m Model) handleProjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.projectRows()
	if row, ok := moveRow(m.keys, msg, m.projectRow, len(rows)); ok {
		m.projectRow = row
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		p, ok := m.selectedProject()
		if !ok {
			return m, nil
		}
		m.openProject(p.ID)
		m.pending++
		return m, m.fetchTasksCmd(p.ID)

	case key.Matches(msg, m.keys.New):
		m.form = newProjectForm()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if p, ok := m.selectedProject(); ok {
			m.form = editProjectForm(p)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if p, ok := m.selectedProject(); ok {
			count := len(m.tasks.ByProject(p.ID))
			m.confirm = &confirmation{
				prompt: fmt.Sprintf("Delete %q and its %d loaded tasks?", p.Name, count),
				run:    m.deleteProjectCmd(p.ID),
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.pending++
		return m, m.fetchProjectsCmd()

	case key.Matches(msg, m.keys.CycleSort):
		m.projects.SaveSorting(nextSort(m.projects.Sorting(), projectSortKeys))
		return m, nil

	case key.Matches(msg, m.keys.FlipSort):
		m.projects.SaveSorting(flipSort(m.projects.Sorting(), projectSortKeys))
		return m, nil

	case key.Matches(msg, m.keys.Narrower):
		resizeFirstColumn(m.projects, "name", -4)
		return m, nil

	case key.Matches(msg, m.keys.Wider):
		resizeFirstColumn(m.projects, "name", 4)
		return m, nil
	}
	return m, nil
}

func (m *Model) openProject(id model.ID) {
	m.current = id
	m.view = ViewTasks
	m.taskRow = 0
	m.prefs.LastProject = string(id)
	m.savePrefs()
}

func (m *Model) leaveProject() {
	m.current = ""
	m.view = ViewProjects
	m.prefs.LastProject = ""
	m.savePrefs()
}

// nextSort advances to the next sort column, ascending.
func nextSort(current []store.SortEntry, keys []string) []store.SortEntry {
	next := keys[0]
	if len(current) > 0 {
		if i := slices.Index(keys, current[0].Key); i >= 0 {
			next = keys[(i+1)%len(keys)]
		}
	}
	return []store.SortEntry{{Key: next, Order: store.Ascending}}
}

// flipSort reverses the current sort, starting on the first column.
func flipSort(current []store.SortEntry, keys []string) []store.SortEntry {
	if len(current) == 0 {
		return []store.SortEntry{{Key: keys[0], Order: store.Descending}}
	}
	entry := current[0]
	if entry.Order == store.Ascending {
		entry.Order = store.Descending
	} else {
		entry.Order = store.Ascending
	}
	return []store.SortEntry{entry}
}

type columnWidthState interface {
	ColumnWidths() store.ColumnWidths
	SaveColumnWidths(store.ColumnWidths)
}

func firstColumnWidth(state columnWidthState, column string) int {
	if w, ok := state.ColumnWidths()[column]; ok && w >= minFirstColumn {
		return min(w, maxFirstColumn)
	}
	return defaultFirstColumn
}

func resizeFirstColumn(state columnWidthState, column string, delta int) {
	widths := state.ColumnWidths()
	widths[column] = min(max(firstColumnWidth(state, column)+delta, minFirstColumn), maxFirstColumn)
	state.SaveColumnWidths(widths)
}

func (m Model) renderProjects(width, height int) string {
	rows := m.projectRows()
	nameWidth := firstColumnWidth(m.projects, "name")
	columns := []column{
		{"Name", nameWidth},
		{"Status", 13},
		{"Tasks", 6},
		{"Created", 11},
		{"Description", max(width-nameWidth-13-6-11-2-8, 8)},
	}
	cells := make([][]string, len(rows))
	statuses := make([]model.Status, len(rows))
	for i, p := range rows {
		cells[i] = []string{p.Name, string(p.Status), strconv.Itoa(p.TaskCount), p.CreatedAt, p.Description}
		statuses[i] = p.Status
	}

	title := fmt.Sprintf("Projects (%d)", len(rows))
	empty := "No projects yet. Press n to create one."
	return m.renderTitledBox(title, m.renderTable(columns, cells, statuses, 1, m.projectRow, height-2, empty), width, height)
}
