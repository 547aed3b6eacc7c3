// Package codec translates between structured task attributes and the single
// free-text payload the host transport carries per task.
//
// Encode produces a markdown-shaped block; Decode is total: any input,
// including the empty string, yields fully defaulted attributes. Decode never
// returns an error.
package codec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/taskdock/taskdock/internal/models"
)

// UntitledTask is the title used when the text carries no heading.
const UntitledTask = "Untitled Task"

var (
	titleRe = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	// metaRe locates the earliest metadata marker; the leftmost regex match
	// is the minimum non-negative index across all three markers.
	metaRe     = regexp.MustCompile(`(?i)\*\*(?:Priority|State|Mode):\*\*`)
	priorityRe = regexp.MustCompile(`(?i)\*\*Priority:\*\*[ \t]*(\w+)`)
	stateRe    = regexp.MustCompile(`(?i)\*\*State:\*\*[ \t]*(\w+)`)
	modeRe     = regexp.MustCompile(`(?i)\*\*Mode:\*\*[ \t]*(\S+)`)
	taskIDRe   = regexp.MustCompile(`(?i)\*\*TaskId:\*\*[ \t]*(\S+)`)
	flowRe     = regexp.MustCompile(`(?i)\*\*Flow Type:\*\*[ \t]*(\w+)`)
	depsRe     = regexp.MustCompile(`(?i)\*\*Dependencies:\*\*[ \t]*(.+)`)
	subtaskRe  = regexp.MustCompile(`^- \[([ xX])\][ \t]*(.+)$`)
)

// Decoded holds the attributes recovered from a task text block.
type Decoded struct {
	Title        string
	Description  string
	Priority     models.Priority
	State        models.TaskState
	Mode         string
	TaskID       string
	Subtasks     []models.Subtask
	FlowType     models.FlowType
	Dependencies []string
}

// Task converts the decoded attributes into a task record. The id argument
// wins over an embedded TaskId marker; pass "" to keep the embedded one.
func (d Decoded) Task(id string) models.Task {
	if id == "" {
		id = d.TaskID
	}
	return models.Task{
		ID:           id,
		Title:        d.Title,
		Description:  d.Description,
		Priority:     d.Priority,
		State:        d.State,
		Mode:         d.Mode,
		Subtasks:     d.Subtasks,
		FlowType:     d.FlowType,
		Dependencies: d.Dependencies,
	}
}

// Encode serializes a task into the embedded-metadata text block. Sections are
// appended only when their data is non-default and non-empty; Decode fills the
// matching defaults back in, so decode-encode-decode converges after one pass.
// includeID embeds the TaskId marker, used for edit payloads only.
func Encode(t models.Task, includeID bool) string {
	var b strings.Builder

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = UntitledTask
	}
	fmt.Fprintf(&b, "# %s\n", title)

	if desc := strings.TrimSpace(t.Description); desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}

	priority := t.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	state := t.State
	if state == "" {
		state = models.TaskStateActive
	}

	fmt.Fprintf(&b, "\n**Priority:** %s\n", priority)
	fmt.Fprintf(&b, "**State:** %s\n", state)
	if t.Mode != "" {
		fmt.Fprintf(&b, "**Mode:** %s\n", t.Mode)
	}
	if includeID && t.ID != "" {
		fmt.Fprintf(&b, "**TaskId:** %s\n", t.ID)
	}

	if len(t.Subtasks) > 0 {
		b.WriteString("\n### Subtasks\n")
		for _, st := range t.Subtasks {
			mark := " "
			if st.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, st.Name)
		}
	}

	if t.FlowType != "" && t.FlowType != models.FlowSequential || len(t.Dependencies) > 0 {
		flow := t.FlowType
		if flow == "" {
			flow = models.FlowSequential
		}
		b.WriteString("\n### Workflow\n")
		fmt.Fprintf(&b, "**Flow Type:** %s\n", flow)
		if len(t.Dependencies) > 0 {
			fmt.Fprintf(&b, "**Dependencies:** %s\n", strings.Join(t.Dependencies, ", "))
		}
	}

	return b.String()
}

// Decode recovers task attributes from a text block. Each rule is an
// independent first-match-wins pattern; missing or unrecognized fields fall
// back to their documented defaults. ambientMode fills Mode when the text
// carries no mode marker.
func Decode(text, ambientMode string) Decoded {
	d := Decoded{
		Title:    UntitledTask,
		Priority: models.PriorityMedium,
		State:    models.TaskStateActive,
		Mode:     ambientMode,
	}

	titleEnd := 0
	if loc := titleRe.FindStringSubmatchIndex(text); loc != nil {
		d.Title = strings.TrimSpace(text[loc[2]:loc[3]])
		titleEnd = loc[1]
	}

	// Description runs from the end of the title line (or the start of the
	// text when no heading exists) to the earliest metadata marker.
	descEnd := len(text)
	if loc := metaRe.FindStringIndex(text); loc != nil {
		descEnd = loc[0]
	}
	if descEnd >= titleEnd {
		d.Description = strings.TrimSpace(text[titleEnd:descEnd])
	}

	if m := priorityRe.FindStringSubmatch(text); m != nil {
		if p, ok := parseStrict(m[1], string(models.PriorityHigh), string(models.PriorityMedium), string(models.PriorityLow)); ok {
			d.Priority = models.Priority(p)
		}
	}
	if m := stateRe.FindStringSubmatch(text); m != nil {
		if s, ok := parseStrict(m[1], string(models.TaskStateActive), string(models.TaskStateCompleted), string(models.TaskStateArchived)); ok {
			d.State = models.TaskState(s)
		}
	}
	if m := modeRe.FindStringSubmatch(text); m != nil {
		d.Mode = m[1]
	}
	if m := taskIDRe.FindStringSubmatch(text); m != nil {
		d.TaskID = m[1]
	}

	d.Subtasks = decodeSubtasks(text)

	if m := flowRe.FindStringSubmatch(text); m != nil {
		d.FlowType = models.ParseFlowType(m[1])
	}
	if m := depsRe.FindStringSubmatch(text); m != nil {
		for _, dep := range strings.Split(m[1], ",") {
			if dep = strings.TrimSpace(dep); dep != "" {
				d.Dependencies = append(d.Dependencies, dep)
			}
		}
	}

	return d
}

// parseStrict accepts the word only when it case-insensitively equals one of
// the enumerated values; anything else keeps the default.
func parseStrict(word string, allowed ...string) (string, bool) {
	lower := strings.ToLower(word)
	for _, a := range allowed {
		if lower == a {
			return a, true
		}
	}
	return "", false
}

// decodeSubtasks reads the checklist under the "### Subtasks" heading, up to
// the next section heading or the end of the text.
func decodeSubtasks(text string) []models.Subtask {
	idx := strings.Index(text, "### Subtasks")
	if idx < 0 {
		return nil
	}
	var subtasks []models.Subtask
	lines := strings.Split(text[idx:], "\n")
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			break
		}
		m := subtaskRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		subtasks = append(subtasks, models.Subtask{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(m[2]),
			Completed: m[1] == "x" || m[1] == "X",
		})
	}
	return subtasks
}
