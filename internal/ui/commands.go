package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/taskboard/internal/model"
)

type tickMsg time.Time

// opDoneMsg reports that a store call started by the model has returned.
// The stores have already toasted the outcome. form is set when the call was
// submitted from a form, so a failure can reopen it.
type opDoneMsg struct {
	op   string
	err  error
	form *form
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// storeCmd runs fn off the event loop with the model's context.
func (m Model) storeCmd(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) fetchProjectsCmd() tea.Cmd {
	return m.storeCmd("fetch-projects", func(ctx context.Context) error {
		m.projects.FetchAll(ctx)
		return nil
	})
}

func (m Model) fetchTasksCmd(projectID model.ID) tea.Cmd {
	return m.storeCmd("fetch-tasks", func(ctx context.Context) error {
		m.tasks.FetchAll(ctx, projectID)
		return nil
	})
}

func (m Model) createProjectCmd(draft model.ProjectDraft) tea.Cmd {
	return m.storeCmd("create-project", func(ctx context.Context) error {
		_, err := m.projects.Create(ctx, draft)
		return err
	})
}

func (m Model) updateProjectCmd(p model.Project) tea.Cmd {
	return m.storeCmd("update-project", func(ctx context.Context) error {
		_, err := m.projects.Update(ctx, p)
		return err
	})
}

func (m Model) deleteProjectCmd(id model.ID) tea.Cmd {
	return m.storeCmd("delete-project", func(ctx context.Context) error {
		return m.projects.Delete(ctx, id)
	})
}

func (m Model) createTaskCmd(t model.Task) tea.Cmd {
	return m.storeCmd("create-task", func(ctx context.Context) error {
		_, err := m.tasks.Create(ctx, t)
		return err
	})
}

func (m Model) updateTaskCmd(t model.Task) tea.Cmd {
	return m.storeCmd("update-task", func(ctx context.Context) error {
		_, err := m.tasks.Update(ctx, t)
		return err
	})
}

func (m Model) deleteTaskCmd(t model.Task) tea.Cmd {
	return m.storeCmd("delete-task", func(ctx context.Context) error {
		return m.tasks.Delete(ctx, t, true)
	})
}
