package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// renderDetail renders the selected task full-screen: metadata line, the
// description as markdown, subtask checklist, workflow.
func (a *App) renderDetail() string {
	task, ok := a.store.Task(a.view.SelectedTaskID)
	if !ok {
		return helpStyle.Render("  task no longer exists")
	}

	var b strings.Builder
	b.WriteString("\n " + sectionStyle.Render(task.Title) + "\n")
	meta := fmt.Sprintf(" %s  state:%s  mode:%s", priorityBadge(task.Priority), task.State, task.Mode)
	if task.Running {
		meta += "  " + lipgloss.NewStyle().Foreground(successColor).Render("running")
	}
	b.WriteString(helpStyle.Render(meta) + "\n")

	if task.Description != "" {
		b.WriteString(renderMarkdown(task.Description, a.width))
	}

	if len(task.Subtasks) > 0 {
		b.WriteString("\n " + sectionStyle.Render("Subtasks") + "\n")
		for _, st := range task.Subtasks {
			box := "[ ]"
			if st.Completed {
				box = "[x]"
			}
			b.WriteString(fmt.Sprintf("   %s %s\n", box, st.Name))
		}
	}

	if task.FlowType != "" || len(task.Dependencies) > 0 {
		b.WriteString("\n " + sectionStyle.Render("Workflow") + "\n")
		if task.FlowType != "" {
			b.WriteString(fmt.Sprintf("   flow: %s\n", task.FlowType))
		}
		if len(task.Dependencies) > 0 {
			b.WriteString(fmt.Sprintf("   depends on: %s\n", strings.Join(task.Dependencies, ", ")))
		}
	}

	return b.String()
}

// renderMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width-2, 100)),
	)
	if err != nil {
		return "\n" + text + "\n"
	}
	out, err := r.Render(text)
	if err != nil {
		return "\n" + text + "\n"
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
