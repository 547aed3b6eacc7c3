// Package tui renders the task inbox panel: three lifecycle sections, a
// filter bar, a create/edit form, and a detail pane.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/taskdock/taskdock/internal/filter"
	"github.com/taskdock/taskdock/internal/host"
	"github.com/taskdock/taskdock/internal/keymap"
	"github.com/taskdock/taskdock/internal/models"
	"github.com/taskdock/taskdock/internal/store"
	"github.com/taskdock/taskdock/internal/transition"
	"github.com/taskdock/taskdock/internal/viewstate"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(fgColor)

	taskItemStyle = lipgloss.NewStyle().
			Padding(0, 2)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true).
			Padding(0, 2)

	exitingStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Faint(true).
			Padding(0, 2)

	enteringStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

var priorityCycle = []string{filter.PriorityAll, "high", "medium", "low"}

// SnapshotSource delivers host snapshots; nil when the panel runs detached.
type SnapshotSource interface {
	ReadSnapshot() (host.Snapshot, error)
}

// App is the panel's bubbletea model.
type App struct {
	store       *store.Store
	bridge      *host.Bridge
	dispatcher  *keymap.Dispatcher
	transitions *transition.Tracker
	settings    *viewstate.Settings
	source      SnapshotSource

	view        viewstate.State
	priorityIdx int
	search      textinput.Model
	searching   bool
	form        *Form
	mode        string // "list", "form", "detail"
	message     string
	width       int
	height      int
}

// New wires the panel together. settings and source may be nil.
func New(s *store.Store, bridge *host.Bridge, settings *viewstate.Settings, source SnapshotSource) *App {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 128
	search.Width = 40

	view := viewstate.Default()
	if settings != nil {
		if loaded, err := settings.Load(); err == nil {
			view = loaded
		}
	}

	tr := transition.NewTracker()
	a := &App{
		store:       s,
		bridge:      bridge,
		dispatcher:  keymap.NewDispatcher(s, tr),
		transitions: tr,
		settings:    settings,
		source:      source,
		view:        view,
		search:      search,
		mode:        "list",
	}
	a.search.SetValue(view.Filter.Query)
	for i, p := range priorityCycle {
		if p == view.Filter.Priority {
			a.priorityIdx = i
		}
	}
	for _, id := range view.Collapsed {
		s.ToggleCategory(id)
	}
	return a
}

// Run starts the panel.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.listenSnapshots())
}

type snapshotMsg struct {
	snap host.Snapshot
}

type snapshotErrMsg struct {
	err error
}

type snapshotRetryMsg struct{}

type transitionTickMsg struct{}

// snapshotRetryDelay spaces out reconnect attempts after a read error so a
// flapping host does not spin the event loop.
const snapshotRetryDelay = 2 * time.Second

func (a *App) listenSnapshots() tea.Cmd {
	if a.source == nil {
		return nil
	}
	return func() tea.Msg {
		snap, err := a.source.ReadSnapshot()
		if err != nil {
			return snapshotErrMsg{err}
		}
		return snapshotMsg{snap}
	}
}

// transitionRedraws schedules re-renders at each window edge of a transition
// cycle; the tracker's own timers drive the phase.
func (a *App) transitionRedraws() tea.Cmd {
	tick := func(d time.Duration) tea.Cmd {
		return tea.Tick(d, func(time.Time) tea.Msg { return transitionTickMsg{} })
	}
	return tea.Batch(
		tick(transition.ExitWindow+10*time.Millisecond),
		tick(transition.ExitWindow+transition.EnterWindow+20*time.Millisecond),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case snapshotMsg:
		a.bridge.ApplySnapshot(msg.snap)
		a.ensureSelection()
		return a, a.listenSnapshots()

	case snapshotErrMsg:
		a.message = "Host: " + msg.err.Error()
		return a, tea.Tick(snapshotRetryDelay, func(time.Time) tea.Msg { return snapshotRetryMsg{} })

	case snapshotRetryMsg:
		return a, a.listenSnapshots()

	case transitionTickMsg:
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.mode == "form" && a.form != nil {
		cmd := a.form.Update(msg)
		return a, cmd
	}
	if a.searching {
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		a.view.Filter.Query = a.search.Value()
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		a.teardown()
		return a, tea.Quit
	}

	if a.mode == "form" && a.form != nil {
		done, cmd := a.form.HandleKey(msg)
		if done {
			started := a.form.transitionStarted
			a.mode = "list"
			a.form = nil
			a.ensureSelection()
			if started {
				return a, a.transitionRedraws()
			}
		}
		return a, cmd
	}

	if a.searching {
		switch key {
		case "enter", "esc":
			a.searching = false
			a.search.Blur()
		default:
			var cmd tea.Cmd
			a.search, cmd = a.search.Update(msg)
			a.view.Filter.Query = a.search.Value()
			return a, cmd
		}
		return a, nil
	}

	// Fixed chord table first; everything else is list navigation.
	switch a.dispatcher.Dispatch(key, a.view.SelectedTaskID) {
	case keymap.ActionStateChanged:
		a.message = ""
		return a, a.transitionRedraws()
	case keymap.ActionOpenCreate:
		a.form = NewCreateForm(a.bridge, a.store.AmbientMode())
		a.mode = "form"
		return a, textinput.Blink
	case keymap.ActionOpenEdit:
		if task, ok := a.store.Task(a.view.SelectedTaskID); ok {
			a.form = NewEditForm(a.bridge, a.transitions, task)
			a.mode = "form"
			return a, textinput.Blink
		}
		return a, nil
	case keymap.ActionToggleFilterPanel:
		a.view.FilterPanelVisible = !a.view.FilterPanelVisible
		return a, nil
	}

	switch key {
	case "esc":
		if a.mode == "detail" {
			a.mode = "list"
			return a, nil
		}
		a.view.Filter = filter.Reset()
		a.priorityIdx = 0
		a.search.SetValue("")

	case "up", "k":
		a.moveSelection(-1)

	case "down", "j":
		a.moveSelection(1)

	case "enter":
		if a.view.SelectedTaskID != "" {
			a.mode = "detail"
		}

	case "/":
		a.searching = true
		a.search.Focus()
		return a, textinput.Blink

	case "ctrl+b":
		a.view.SidebarVisible = !a.view.SidebarVisible

	case "p":
		a.priorityIdx = (a.priorityIdx + 1) % len(priorityCycle)
		a.view.Filter.Priority = priorityCycle[a.priorityIdx]

	case "tab":
		if cat, ok := a.selectedCategory(); ok {
			a.store.ToggleCategory(cat)
			a.syncCollapsed()
		}

	case "d":
		if id := a.view.SelectedTaskID; id != "" {
			a.transitions.Forget(id)
			if err := a.bridge.DeleteTask(id); err != nil {
				a.message = "Host: " + err.Error()
			}
			a.ensureSelection()
		}
	}

	return a, nil
}

// visibleTasks flattens the filtered view into the navigable task rows, in
// render order. Collapsed sections contribute nothing.
func (a *App) visibleTasks() []models.Task {
	var out []models.Task
	for _, cat := range filter.Apply(a.store.Categories(), a.view.Filter) {
		if !cat.IsExpanded {
			continue
		}
		out = append(out, cat.Filtered...)
	}
	return out
}

func (a *App) moveSelection(delta int) {
	tasks := a.visibleTasks()
	if len(tasks) == 0 {
		a.view.SelectedTaskID = ""
		return
	}
	idx := -1
	for i, t := range tasks {
		if t.ID == a.view.SelectedTaskID {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(tasks) {
		idx = len(tasks) - 1
	}
	a.view.SelectedTaskID = tasks[idx].ID
}

// ensureSelection drops a selection that no longer resolves to a visible
// task, picking the first visible one instead.
func (a *App) ensureSelection() {
	tasks := a.visibleTasks()
	for _, t := range tasks {
		if t.ID == a.view.SelectedTaskID {
			return
		}
	}
	a.view.SelectedTaskID = ""
	if len(tasks) > 0 {
		a.view.SelectedTaskID = tasks[0].ID
	}
}

func (a *App) selectedCategory() (models.TaskState, bool) {
	if task, ok := a.store.Task(a.view.SelectedTaskID); ok {
		return task.State, true
	}
	return "", false
}

func (a *App) syncCollapsed() {
	a.view.Collapsed = nil
	for _, cat := range a.store.Categories() {
		if !cat.IsExpanded {
			a.view.Collapsed = append(a.view.Collapsed, cat.ID)
		}
	}
}

func (a *App) teardown() {
	a.transitions.StopAll()
	if a.settings != nil {
		a.settings.Save(a.view)
	}
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	header := titleStyle.Render("TASKDOCK")
	counts := fmt.Sprintf("%d tasks", a.store.Len())
	if !a.view.Filter.IsIdentity() {
		visible := filter.Count(filter.Apply(a.store.Categories(), a.view.Filter))
		counts = fmt.Sprintf("%d/%d tasks (filtered)", visible, a.store.Len())
	}
	header += "  " + helpStyle.Render(counts)
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", max(a.width, 20)) + "\n")

	if a.mode == "form" && a.form != nil {
		b.WriteString(a.form.View())
		b.WriteString("\n" + statusBarStyle.Width(max(a.width, 20)).Render(" Enter:save | Esc:cancel | Tab:next field"))
		return b.String()
	}

	if !a.view.SidebarVisible {
		b.WriteString(helpStyle.Render("\n  panel hidden, Ctrl+B to show") + "\n")
		b.WriteString("\n" + statusBarStyle.Width(max(a.width, 20)).Render(" Ctrl+B:show | Ctrl+C:quit"))
		return b.String()
	}

	if a.view.FilterPanelVisible || a.searching {
		b.WriteString(a.renderFilterBar() + "\n")
	}

	if a.mode == "detail" {
		b.WriteString(a.renderDetail())
	} else {
		b.WriteString(a.renderCategories())
	}

	if a.message != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(errorColor).Render(a.message))
	}

	b.WriteString("\n" + statusBarStyle.Width(max(a.width, 20)).Render(a.statusLine()))
	return b.String()
}

func (a *App) renderFilterBar() string {
	var b strings.Builder
	b.WriteString(inputBoxStyle.Render(a.search.View()))
	b.WriteString("  " + helpStyle.Render(fmt.Sprintf("priority: [%s]", priorityCycle[a.priorityIdx])))
	return b.String()
}

func (a *App) renderCategories() string {
	var b strings.Builder

	for _, cat := range filter.Apply(a.store.Categories(), a.view.Filter) {
		marker := "▼"
		if !cat.IsExpanded {
			marker = "▶"
		}
		b.WriteString(fmt.Sprintf("\n %s %s %s\n",
			marker,
			sectionStyle.Render(strings.ToUpper(string(cat.ID))),
			helpStyle.Render(fmt.Sprintf("(%d/%d)", len(cat.Filtered), len(cat.Tasks))),
		))
		if !cat.IsExpanded {
			continue
		}
		if len(cat.Filtered) == 0 {
			b.WriteString(helpStyle.Render("    no matches") + "\n")
			continue
		}
		for _, task := range cat.Filtered {
			b.WriteString(a.renderTaskRow(task) + "\n")
		}
	}
	return b.String()
}

func (a *App) renderTaskRow(task models.Task) string {
	line := fmt.Sprintf("%s %s", priorityBadge(task.Priority), task.Title)
	if task.Running {
		line += " " + lipgloss.NewStyle().Foreground(successColor).Render("●")
	}

	switch a.transitions.Phase(task.ID) {
	case transition.PhaseExiting:
		return exitingStyle.Render(kindGlyph(a.transitions.Kind(task.ID)) + " " + line)
	case transition.PhaseEntering:
		style := enteringStyle
		if a.transitions.Kind(task.ID) == transition.KindArchive {
			style = enteringStyle.Copy().Foreground(mutedColor)
		}
		return style.Render(kindGlyph(a.transitions.Kind(task.ID)) + " " + line)
	}

	if task.ID == a.view.SelectedTaskID {
		return selectedStyle.Render("▶ " + line)
	}
	return taskItemStyle.Render("  " + line)
}

// kindGlyph marks a mid-transition row with what the transition is.
func kindGlyph(k transition.Kind) string {
	switch k {
	case transition.KindComplete:
		return "✓"
	case transition.KindArchive:
		return "▣"
	case transition.KindActivate:
		return "↺"
	default:
		return "·"
	}
}

func priorityBadge(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return lipgloss.NewStyle().Foreground(errorColor).Render("[high]")
	case models.PriorityLow:
		return lipgloss.NewStyle().Foreground(mutedColor).Render("[low]")
	default:
		return lipgloss.NewStyle().Foreground(warningColor).Render("[med]")
	}
}

func (a *App) statusLine() string {
	switch a.mode {
	case "detail":
		return " Esc:back | Alt+E:edit | d:delete"
	default:
		return " ↑↓:nav | Enter:detail | /:search | p:priority | Alt+N:new | Alt+E:edit | Alt+A/C/R:state | Alt+F:filter | Tab:fold | d:delete | Ctrl+C:quit"
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
