package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/taskboard/internal/model"
	"github.com/five82/taskboard/internal/notify"
	"github.com/five82/taskboard/internal/prefs"
	"github.com/five82/taskboard/internal/store"
)

// View represents the active table.
type View int

const (
	ViewProjects View = iota
	ViewTasks
)

const defaultToastTick = 500 * time.Millisecond

// Options configures the UI.
type Options struct {
	Context   context.Context
	Projects  *store.ProjectStore
	Tasks     *store.TaskStore
	Toasts    *notify.Toasts
	Assignees []string
	Prefs     prefs.Prefs
	PrefsPath string
	ToastTick time.Duration

	// FetchOnStart loads projects from the server once the program runs.
	FetchOnStart bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx          context.Context
	projects     *store.ProjectStore
	tasks        *store.TaskStore
	toasts       *notify.Toasts
	assignees    []string
	prefs        prefs.Prefs
	prefsPath    string
	toastTick    time.Duration
	fetchOnStart bool

	keys   keyMap
	theme  Theme
	view   View
	width  int
	height int
	ready  bool

	projectRow int
	taskRow    int
	current    model.ID

	showHelp bool
	form     *form
	confirm  *confirmation
	pending  int
}

// confirmation is a y/n prompt guarding a destructive command.
type confirmation struct {
	prompt string
	run    tea.Cmd
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	toasts := opts.Toasts
	if toasts == nil {
		toasts = notify.NewToasts(notify.DefaultMaxToasts, notify.DefaultLifetime)
	}
	tick := opts.ToastTick
	if tick <= 0 {
		tick = defaultToastTick
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:          ctx,
		projects:     opts.Projects,
		tasks:        opts.Tasks,
		toasts:       toasts,
		assignees:    opts.Assignees,
		prefs:        opts.Prefs,
		prefsPath:    prefsPath,
		toastTick:    tick,
		fetchOnStart: opts.FetchOnStart,
		keys:         DefaultKeyMap(),
		theme:        GetTheme(opts.Prefs.Theme),
		view:         ViewProjects,
	}
	if last := model.ID(opts.Prefs.LastProject); last != "" && m.projects != nil {
		if _, ok := m.projects.ByID(last); ok {
			m.current = last
			m.view = ViewTasks
		}
	}
	if m.fetchOnStart {
		m.pending++
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.toastTick)}
	if m.fetchOnStart {
		cmds = append(cmds, m.fetchProjectsCmd())
	}
	if m.view == ViewTasks {
		cmds = append(cmds, m.fetchTasksCmd(m.current))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		// Reconciles and toasts arrive from outside the event loop.
		m.clampRows()
		return m, tickCmd(m.toastTick)

	case opDoneMsg:
		return m.handleOpDone(msg), nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.form != nil {
		return m.renderForm()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.form != nil {
		return m.handleFormKey(msg)
	}
	if m.confirm != nil {
		pending := m.confirm
		m.confirm = nil
		if msg.String() == "y" || msg.String() == "Y" {
			m.pending++
			return m, pending.run
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.DismissToast):
		if active := m.toasts.Active(); len(active) > 0 {
			m.toasts.Dismiss(active[0].ID)
		}
		return m, nil
	}

	if m.view == ViewTasks {
		return m.handleTasksKey(msg)
	}
	return m.handleProjectsKey(msg)
}

func (m Model) handleOpDone(msg opDoneMsg) Model {
	if m.pending > 0 {
		m.pending--
	}
	if msg.err != nil && msg.form != nil && m.form == nil {
		msg.form.err = saveFailed
		msg.form.setFocus(msg.form.focus)
		m.form = msg.form
	}
	if m.view == ViewTasks {
		if _, ok := m.projects.ByID(m.current); !ok {
			m.leaveProject()
		}
	}
	m.clampRows()
	return m
}

func (m *Model) clampRows() {
	m.projectRow = clampRow(m.projectRow, len(m.projectRows()))
	if m.view == ViewTasks {
		m.taskRow = clampRow(m.taskRow, len(m.taskRows()))
	}
}

func clampRow(row, n int) int {
	if row >= n {
		row = n - 1
	}
	if row < 0 {
		row = 0
	}
	return row
}

func moveRow(km keyMap, msg tea.KeyMsg, row, n int) (int, bool) {
	switch {
	case key.Matches(msg, km.Up):
		return clampRow(row-1, n), true
	case key.Matches(msg, km.Down):
		return clampRow(row+1, n), true
	case key.Matches(msg, km.Top):
		return 0, true
	case key.Matches(msg, km.Bottom):
		return clampRow(n-1, n), true
	}
	return row, false
}

func (m *Model) savePrefs() {
	_ = prefs.Save(m.prefsPath, m.prefs)
}

func (m Model) renderMain() string {
	header := m.renderHeader()
	bar := m.renderCommandBar()
	toasts := m.renderToasts()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(bar)
	if toasts != "" {
		bodyHeight -= lipgloss.Height(toasts)
	}
	bodyHeight = max(bodyHeight, 3)

	var body string
	if m.view == ViewTasks {
		body = m.renderTasks(m.width, bodyHeight)
	} else {
		body = m.renderProjects(m.width, bodyHeight)
	}

	parts := []string{header, body}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, bar)
	return strings.Join(parts, "\n")
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	crumb := bg.Render("Projects", styles.AccentText.Bold(true))
	if m.view == ViewTasks {
		name := string(m.current)
		if p, ok := m.projects.ByID(m.current); ok {
			name = p.Name
		}
		crumb += bg.Render(" / ", styles.FaintText) + bg.Render(name, styles.Text.Bold(true))
	}
	line := bg.Render("taskboard", styles.Text.Bold(true)) + bg.Spaces(2) + crumb
	if m.pending > 0 {
		line += bg.Spaces(2) + bg.Render("working...", styles.FaintText)
	}
	return styles.Header.Width(m.width).Render(line)
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	if m.confirm != nil {
		text := bg.Render(m.confirm.prompt, styles.DangerText) + bg.Spaces(2) +
			bg.Render("y", styles.AccentText) + bg.Sep(":") + bg.Render("Confirm", styles.MutedText) + bg.Spaces(2) +
			bg.Render("any", styles.AccentText) + bg.Sep(":") + bg.Render("Cancel", styles.MutedText)
		return styles.Header.Width(m.width).Render(text)
	}

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.view {
	case ViewTasks:
		commands = []cmd{
			{"n", "New"},
			{"e", "Edit"},
			{"d", "Delete"},
			{"x", "Status"},
			{"f", m.filterLabel()},
			{"J/K", "Move"},
			{"s", m.sortLabel(m.tasks.Sorting())},
			{"esc", "Projects"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"enter", "Open"},
			{"n", "New"},
			{"e", "Edit"},
			{"d", "Delete"},
			{"s", m.sortLabel(m.projects.Sorting())},
			{"r", "Reload"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

func (m Model) sortLabel(entries []store.SortEntry) string {
	if len(entries) == 0 {
		return "Sort"
	}
	return fmt.Sprintf("Sort %s %s", entries[0].Key, entries[0].Order)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Projects == nil || opts.Tasks == nil {
		return fmt.Errorf("ui requires project and task stores")
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
