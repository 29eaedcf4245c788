package ui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/taskboard/internal/model"
	"github.com/five82/taskboard/internal/store"
)

const statusFilterKey = "status"

// statusFilter returns the status the task table is narrowed to, or "".
func (m Model) statusFilter() model.Status {
	value, _ := m.tasks.Filters()[statusFilterKey].(string)
	if status := model.Status(value); status.Valid() {
		return status
	}
	return ""
}

func (m Model) filterLabel() string {
	if status := m.statusFilter(); status != "" {
		return string(status)
	}
	return "All"
}

// taskRows returns the open project's tasks in collection order.
func (m Model) taskRows() []model.Task {
	rows := m.tasks.ByProject(m.current)
	if status := m.statusFilter(); status != "" {
		rows = slices.DeleteFunc(rows, func(t model.Task) bool { return t.Status != status })
	}
	return rows
}

func (m Model) selectedTask() (model.Task, bool) {
	rows := m.taskRows()
	if m.taskRow < 0 || m.taskRow >= len(rows) {
		return model.Task{}, false
	}
	return rows[m.taskRow], true
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.taskRows()
	if row, ok := moveRow(m.keys, msg, m.taskRow, len(rows)); ok {
		m.taskRow = row
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.leaveProject()
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.form = newTaskForm(m.current, m.assignees)
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selectedTask(); ok {
			m.form = editTaskForm(t, m.assignees)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selectedTask(); ok {
			m.confirm = &confirmation{
				prompt: fmt.Sprintf("Delete task %q?", t.Title),
				run:    m.deleteTaskCmd(t),
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.pending++
		return m, m.fetchTasksCmd(m.current)

	case key.Matches(msg, m.keys.CycleStatus):
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		t.Status = t.Status.Next()
		m.pending++
		return m, m.updateTaskCmd(t)

	case key.Matches(msg, m.keys.CycleFilter):
		m.cycleFilter()
		return m, nil

	case key.Matches(msg, m.keys.MoveUp):
		m.moveTask(rows, -1)
		return m, nil

	case key.Matches(msg, m.keys.MoveDown):
		m.moveTask(rows, 1)
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		m.sortTasks(nextSort(m.tasks.Sorting(), store.TaskSortKeys))
		return m, nil

	case key.Matches(msg, m.keys.FlipSort):
		m.sortTasks(flipSort(m.tasks.Sorting(), store.TaskSortKeys))
		return m, nil

	case key.Matches(msg, m.keys.Narrower):
		resizeFirstColumn(m.tasks, "title", -4)
		return m, nil

	case key.Matches(msg, m.keys.Wider):
		resizeFirstColumn(m.tasks, "title", 4)
		return m, nil
	}
	return m, nil
}

// cycleFilter steps through All and then each status.
func (m *Model) cycleFilter() {
	filters := m.tasks.Filters()
	current := m.statusFilter()
	switch {
	case current == "":
		filters[statusFilterKey] = string(model.Statuses[0])
	case current == model.Statuses[len(model.Statuses)-1]:
		delete(filters, statusFilterKey)
	default:
		filters[statusFilterKey] = string(current.Next())
	}
	m.tasks.SaveFilters(filters)
	m.taskRow = 0
}

// moveTask swaps the selected task with its visible neighbor. The table only
// shows one project, so both positions are translated to indexes of the full
// collection before reordering it.
func (m *Model) moveTask(rows []model.Task, delta int) {
	target := m.taskRow + delta
	if m.taskRow >= len(rows) || target < 0 || target >= len(rows) {
		return
	}
	all := m.tasks.All()
	from := slices.IndexFunc(all, func(t model.Task) bool { return t.ID == rows[m.taskRow].ID })
	to := slices.IndexFunc(all, func(t model.Task) bool { return t.ID == rows[target].ID })
	if from < 0 || to < 0 {
		return
	}
	if err := m.tasks.Reorder(from, to); err != nil {
		return
	}
	m.taskRow = target
}

func (m *Model) sortTasks(sorting []store.SortEntry) {
	entry := sorting[0]
	if err := m.tasks.Sort(entry.Key, entry.Order); err != nil {
		return
	}
	m.tasks.SaveSorting(sorting)
}

func (m Model) renderTasks(width, height int) string {
	rows := m.taskRows()
	titleWidth := firstColumnWidth(m.tasks, "title")
	columns := []column{
		{"Title", titleWidth},
		{"Assignee", 16},
		{"Status", 13},
		{"Due", 11},
		{"ID", max(width-titleWidth-16-13-11-2-8, 6)},
	}
	cells := make([][]string, len(rows))
	statuses := make([]model.Status, len(rows))
	for i, t := range rows {
		assignee := t.Assignee
		if assignee == "" {
			assignee = "-"
		}
		cells[i] = []string{t.Title, assignee, string(t.Status), t.DueDate, t.ID.String()}
		statuses[i] = t.Status
	}

	title := fmt.Sprintf("Tasks (%d)", len(rows))
	if status := m.statusFilter(); status != "" {
		title = fmt.Sprintf("Tasks: %s (%d)", status, len(rows))
	}
	empty := "No tasks. Press n to add one."
	return m.renderTitledBox(title, m.renderTable(columns, cells, statuses, 2, m.taskRow, height-2, empty), width, height)
}
