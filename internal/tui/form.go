package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/taskdock/taskdock/internal/host"
	"github.com/taskdock/taskdock/internal/models"
	"github.com/taskdock/taskdock/internal/store"
	"github.com/taskdock/taskdock/internal/transition"
)

// Form field indexes, in focus order.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldState
	fieldMode
	fieldCount
)

var formLabelStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	Width(12)

// Form collects task fields for create and edit. Priority and state are
// fixed-choice selectors cycled with left/right; the rest are text inputs.
type Form struct {
	bridge      *host.Bridge
	transitions *transition.Tracker

	editID      string // empty for create
	prevState   models.TaskState
	title       textinput.Model
	description textinput.Model
	mode        textinput.Model
	priority    models.Priority
	state       models.TaskState
	focus       int
	// transitionStarted is set by submit when the edit changed the lifecycle
	// state, so the view can schedule its redraw ticks.
	transitionStarted bool
}

// NewCreateForm builds an empty form. New tasks start active in the ambient
// mode.
func NewCreateForm(bridge *host.Bridge, ambientMode string) *Form {
	f := newForm(bridge)
	f.priority = models.PriorityMedium
	f.state = models.TaskStateActive
	f.mode.SetValue(ambientMode)
	return f
}

// NewEditForm builds a form pre-filled from an existing task. A submit whose
// state differs from the task's current one starts the transition cycle on
// the tracker, same as the state chords do.
func NewEditForm(bridge *host.Bridge, tr *transition.Tracker, task models.Task) *Form {
	f := newForm(bridge)
	f.transitions = tr
	f.editID = task.ID
	f.prevState = task.State
	f.title.SetValue(task.Title)
	f.description.SetValue(task.Description)
	f.mode.SetValue(task.Mode)
	f.priority = task.Priority
	f.state = task.State
	return f
}

func newForm(bridge *host.Bridge) *Form {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200
	title.Width = 50
	title.Focus()

	description := textinput.New()
	description.Placeholder = "Description (optional)"
	description.CharLimit = 2000
	description.Width = 50

	mode := textinput.New()
	mode.Placeholder = "Mode"
	mode.CharLimit = 32
	mode.Width = 20

	return &Form{
		bridge:      bridge,
		title:       title,
		description: description,
		mode:        mode,
	}
}

// Update forwards non-key messages (cursor blink) to the focused input.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldMode:
		f.mode, cmd = f.mode.Update(msg)
	}
	return cmd
}

// HandleKey processes one keypress. done reports that the form is finished,
// whether submitted or cancelled.
func (f *Form) HandleKey(msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		return true, nil

	case "enter":
		f.submit()
		return true, nil

	case "tab", "down":
		f.setFocus((f.focus + 1) % fieldCount)
		return false, textinput.Blink

	case "shift+tab", "up":
		f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		return false, textinput.Blink

	case "left", "right":
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		switch f.focus {
		case fieldPriority:
			f.priority = cyclePriority(f.priority, step)
			return false, nil
		case fieldState:
			f.state = cycleState(f.state, step)
			return false, nil
		}
	}

	return false, f.Update(msg)
}

func (f *Form) setFocus(idx int) {
	f.focus = idx
	f.title.Blur()
	f.description.Blur()
	f.mode.Blur()
	switch idx {
	case fieldTitle:
		f.title.Focus()
	case fieldDescription:
		f.description.Focus()
	case fieldMode:
		f.mode.Focus()
	}
}

// submit pushes the form through the bridge. A blank title falls through to
// the store's silent rejection, so cancelling an empty form and submitting
// one behave the same.
func (f *Form) submit() {
	title := strings.TrimSpace(f.title.Value())
	description := f.description.Value()
	mode := strings.TrimSpace(f.mode.Value())

	if f.editID == "" {
		f.bridge.CreateTask(title, f.priority, f.state, description, mode)
		return
	}

	f.bridge.EditTask(f.editID, store.Update{
		Title:       &title,
		Description: &description,
		Priority:    &f.priority,
		State:       &f.state,
		Mode:        &mode,
	})

	if f.state != f.prevState {
		if f.transitions != nil {
			f.transitions.Notify(f.editID, f.prevState, f.state)
		}
		f.transitionStarted = true
	}
}

func cyclePriority(p models.Priority, step int) models.Priority {
	order := []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow}
	for i, cur := range order {
		if cur == p {
			return order[(i+step+len(order))%len(order)]
		}
	}
	return models.PriorityMedium
}

func cycleState(s models.TaskState, step int) models.TaskState {
	order := models.States()
	for i, cur := range order {
		if cur == s {
			return order[(i+step+len(order))%len(order)]
		}
	}
	return models.TaskStateActive
}

// View renders the form.
func (f *Form) View() string {
	var b strings.Builder

	heading := "New Task"
	if f.editID != "" {
		heading = "Edit Task"
	}
	b.WriteString(sectionStyle.Render(heading) + "\n\n")

	b.WriteString(f.textRow("Title", f.title, fieldTitle))
	b.WriteString(f.textRow("Description", f.description, fieldDescription))
	b.WriteString(f.selectorRow("Priority", string(f.priority), fieldPriority))
	b.WriteString(f.selectorRow("State", string(f.state), fieldState))
	b.WriteString(f.textRow("Mode", f.mode, fieldMode))

	return b.String()
}

func (f *Form) textRow(label string, input textinput.Model, idx int) string {
	box := inputBoxStyle
	if f.focus == idx {
		box = box.Copy().BorderForeground(successColor)
	}
	return fmt.Sprintf("%s %s\n", formLabelStyle.Render(label), box.Render(input.View()))
}

func (f *Form) selectorRow(label, value string, idx int) string {
	rendered := fmt.Sprintf("◀ %s ▶", value)
	if f.focus == idx {
		rendered = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(rendered)
	} else {
		rendered = helpStyle.Render(rendered)
	}
	return fmt.Sprintf("%s %s\n", formLabelStyle.Render(label), rendered)
}
