package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/taskboard/internal/model"
)

type formKind int

const (
	formNewProject formKind = iota
	formEditProject
	formNewTask
	formEditTask
)

// formField is either free text or a fixed set of choices.
type formField struct {
	label   string
	input   textinput.Model
	choices []string
	labels  []string
	choice  int
}

func (f formField) value() string {
	if f.choices != nil {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

type form struct {
	kind    formKind
	title   string
	fields  []formField
	focus   int
	err     string
	project model.Project
	task    model.Task
}

func textField(label, value, placeholder string, limit int) formField {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Cursor.SetMode(cursor.CursorStatic)
	in.SetValue(value)
	return formField{label: label, input: in}
}

func choiceField(label string, choices, labels []string, current string) formField {
	idx := max(slices.Index(choices, current), 0)
	return formField{label: label, choices: choices, labels: labels, choice: idx}
}

func statusField(current model.Status) formField {
	choices := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		choices[i] = string(s)
	}
	if current == "" {
		current = model.StatusToDo
	}
	return choiceField("Status", choices, choices, string(current))
}

func newProjectForm() *form {
	f := &form{kind: formNewProject, title: "New Project", fields: []formField{
		textField("Name", "", "Project name", 120),
		textField("Description", "", "Optional", 500),
	}}
	f.setFocus(0)
	return f
}

func editProjectForm(p model.Project) *form {
	f := &form{kind: formEditProject, title: "Edit Project", project: p, fields: []formField{
		textField("Name", p.Name, "Project name", 120),
		textField("Description", p.Description, "Optional", 500),
		statusField(p.Status),
	}}
	f.setFocus(0)
	return f
}

// assigneeField offers the configured roster when there is one, plus an
// unassigned entry. Without a roster the assignee is free text.
func assigneeField(roster []string, current string) formField {
	if len(roster) == 0 {
		return textField("Assignee", current, "Unassigned", 80)
	}
	choices := append([]string{""}, roster...)
	labels := append([]string{"Unassigned"}, roster...)
	if current != "" && !slices.Contains(roster, current) {
		choices = append(choices, current)
		labels = append(labels, current)
	}
	return choiceField("Assignee", choices, labels, current)
}

func newTaskForm(projectID model.ID, roster []string) *form {
	f := &form{kind: formNewTask, title: "New Task", task: model.Task{ProjectID: projectID}, fields: []formField{
		textField("Title", "", "Task title", 200),
		assigneeField(roster, ""),
		statusField(model.StatusToDo),
		textField("Due date", "", model.DateLayout, 10),
	}}
	f.setFocus(0)
	return f
}

func editTaskForm(t model.Task, roster []string) *form {
	f := &form{kind: formEditTask, title: "Edit Task", task: t, fields: []formField{
		textField("Title", t.Title, "Task title", 200),
		assigneeField(roster, t.Assignee),
		statusField(t.Status),
		textField("Due date", t.DueDate, model.DateLayout, 10),
	}}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	n := len(f.fields)
	f.focus = ((i % n) + n) % n
	for idx := range f.fields {
		if f.fields[idx].choices != nil {
			continue
		}
		if idx == f.focus {
			f.fields[idx].input.Focus()
		} else {
			f.fields[idx].input.Blur()
		}
	}
}

// validate returns a user-facing message, or "" when the form can be sent.
func (f *form) validate() string {
	switch f.kind {
	case formNewProject, formEditProject:
		if f.fields[0].value() == "" {
			return "Name is required"
		}
	case formNewTask, formEditTask:
		if f.fields[0].value() == "" {
			return "Title is required"
		}
		if due := f.fields[3].value(); due != "" && model.ParseDate(due).IsZero() {
			return "Due date must be YYYY-MM-DD"
		}
	}
	return ""
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	field := &f.fields[f.focus]

	switch msg.String() {
	case "esc":
		m.form = nil
		return m, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return m, nil
	case "enter":
		if f.err = f.validate(); f.err != "" {
			return m, nil
		}
		m.form = nil
		m.pending++
		return m, withForm(m.submitForm(f), f)
	}

	if field.choices != nil {
		switch msg.String() {
		case "left", "h":
			field.choice = (field.choice - 1 + len(field.choices)) % len(field.choices)
		case "right", "l", " ":
			field.choice = (field.choice + 1) % len(field.choices)
		}
		return m, nil
	}

	field.input, _ = field.input.Update(msg)
	f.err = ""
	return m, nil
}

// withForm tags the result of cmd with the form it was submitted from.
func withForm(cmd tea.Cmd, f *form) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		if done, ok := msg.(opDoneMsg); ok {
			done.form = f
			return done
		}
		return msg
	}
}

const saveFailed = "Save failed. Press enter to retry or esc to cancel."

func (m Model) submitForm(f *form) tea.Cmd {
	switch f.kind {
	case formNewProject:
		return m.createProjectCmd(model.ProjectDraft{
			Name:        f.fields[0].value(),
			Description: f.fields[1].value(),
		})
	case formEditProject:
		p := f.project
		p.Name = f.fields[0].value()
		p.Description = f.fields[1].value()
		p.Status = model.Status(f.fields[2].value())
		return m.updateProjectCmd(p)
	case formNewTask, formEditTask:
		t := f.task
		t.Title = f.fields[0].value()
		t.Assignee = f.fields[1].value()
		t.Status = model.Status(f.fields[2].value())
		t.DueDate = f.fields[3].value()
		if f.kind == formNewTask {
			return m.createTaskCmd(t)
		}
		return m.updateTaskCmd(t)
	}
	return nil
}

func (m Model) renderForm() string {
	f := m.form
	styles := m.theme.Styles()
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted)).Width(12)
	focusLabel := labelStyle.Foreground(lipgloss.Color(m.theme.Accent)).Bold(true)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(f.title))
	b.WriteString("\n\n")
	for i, field := range f.fields {
		label := labelStyle
		if i == f.focus {
			label = focusLabel
		}
		b.WriteString(label.Render(field.label))
		if field.choices != nil {
			text := "‹ " + field.labels[field.choice] + " ›"
			if i == f.focus {
				b.WriteString(styles.AccentText.Render(text))
			} else {
				b.WriteString(styles.Text.Render(text))
			}
		} else {
			b.WriteString(field.input.View())
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("tab: next  ←/→: choose  enter: save  esc: cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(56)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
