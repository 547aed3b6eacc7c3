package codec

import (
	"strings"
	"testing"

	"github.com/taskdock/taskdock/internal/models"
)

func TestDecodeFullText(t *testing.T) {
	text := "# Fix bug\n\nLogin is broken\n\n**Priority:** high\n**State:** active\n**Mode:** code"

	d := Decode(text, "chat")
	if d.Title != "Fix bug" {
		t.Errorf("Expected title 'Fix bug', got %q", d.Title)
	}
	if d.Description != "Login is broken" {
		t.Errorf("Expected description 'Login is broken', got %q", d.Description)
	}
	if d.Priority != models.PriorityHigh {
		t.Errorf("Expected priority high, got %s", d.Priority)
	}
	if d.State != models.TaskStateActive {
		t.Errorf("Expected state active, got %s", d.State)
	}
	if d.Mode != "code" {
		t.Errorf("Expected mode code, got %s", d.Mode)
	}
}

func TestDecodeDefaults(t *testing.T) {
	d := Decode("# Quick note", "chat")
	if d.Title != "Quick note" {
		t.Errorf("Expected title 'Quick note', got %q", d.Title)
	}
	if d.Description != "" {
		t.Errorf("Expected empty description, got %q", d.Description)
	}
	if d.Priority != models.PriorityMedium {
		t.Errorf("Expected default priority medium, got %s", d.Priority)
	}
	if d.State != models.TaskStateActive {
		t.Errorf("Expected default state active, got %s", d.State)
	}
	if d.Mode != "chat" {
		t.Errorf("Expected ambient mode chat, got %s", d.Mode)
	}
}

func TestDecodeTotality(t *testing.T) {
	inputs := []string{
		"",
		"random text with no structure",
		"**Priority:**",
		"**Priority:** urgent\n**State:** limbo",
		"# \n\n**State:**",
		"- [x] stray checklist item",
		strings.Repeat("#", 100),
		"**Mode:**\n**Priority:** HIGH",
	}

	for _, input := range inputs {
		d := Decode(input, "chat")
		if d.Priority != models.PriorityHigh && d.Priority != models.PriorityMedium && d.Priority != models.PriorityLow {
			t.Errorf("Decode(%q) produced priority outside enum: %s", input, d.Priority)
		}
		switch d.State {
		case models.TaskStateActive, models.TaskStateCompleted, models.TaskStateArchived:
		default:
			t.Errorf("Decode(%q) produced state outside enum: %s", input, d.State)
		}
	}

	// Markers absent entirely: everything defaulted.
	d := Decode("just words", "chat")
	if d.Title != UntitledTask {
		t.Errorf("Expected %q for missing heading, got %q", UntitledTask, d.Title)
	}
	if d.Priority != models.PriorityMedium || d.State != models.TaskStateActive {
		t.Errorf("Expected defaults, got priority=%s state=%s", d.Priority, d.State)
	}
}

func TestDecodeUnrecognizedEnumValues(t *testing.T) {
	d := Decode("# T\n\n**Priority:** urgent\n**State:** paused", "chat")
	if d.Priority != models.PriorityMedium {
		t.Errorf("Unrecognized priority should default to medium, got %s", d.Priority)
	}
	if d.State != models.TaskStateActive {
		t.Errorf("Unrecognized state should default to active, got %s", d.State)
	}
}

func TestDecodeCaseInsensitiveEnums(t *testing.T) {
	d := Decode("# T\n\n**priority:** HIGH\n**STATE:** Archived", "chat")
	if d.Priority != models.PriorityHigh {
		t.Errorf("Expected high, got %s", d.Priority)
	}
	if d.State != models.TaskStateArchived {
		t.Errorf("Expected archived, got %s", d.State)
	}
}

func TestDecodeFirstHeadingWins(t *testing.T) {
	text := "# First\n\n# Second\nmore text\n\n**Priority:** low"
	d := Decode(text, "chat")
	if d.Title != "First" {
		t.Errorf("Expected first heading as title, got %q", d.Title)
	}
	if !strings.Contains(d.Description, "# Second") {
		t.Errorf("Later headings should remain in description, got %q", d.Description)
	}
}

func TestDecodeEarliestMarkerBoundsDescription(t *testing.T) {
	// State appears before Priority; the description must stop at the
	// earliest marker start, not at the first declared field.
	text := "# T\n\nbody here\n\n**State:** completed\n**Priority:** low"
	d := Decode(text, "chat")
	if d.Description != "body here" {
		t.Errorf("Expected description bounded by earliest marker, got %q", d.Description)
	}
	if d.State != models.TaskStateCompleted || d.Priority != models.PriorityLow {
		t.Errorf("Both fields should still decode, got state=%s priority=%s", d.State, d.Priority)
	}
}

func TestDecodeMarkerBeforeHeading(t *testing.T) {
	d := Decode("**Priority:** low\n# Late title", "chat")
	if d.Priority != models.PriorityLow {
		t.Errorf("Marker before heading should still decode, got %s", d.Priority)
	}
	if d.Title != "Late title" {
		t.Errorf("Expected title 'Late title', got %q", d.Title)
	}
	if d.Description != "" {
		t.Errorf("Expected empty description, got %q", d.Description)
	}
}

func TestDecodeNoHeadingDescription(t *testing.T) {
	d := Decode("free text first\n\n**Priority:** low", "chat")
	if d.Title != UntitledTask {
		t.Errorf("Expected untitled, got %q", d.Title)
	}
	if d.Description != "free text first" {
		t.Errorf("Expected text up to first marker as description, got %q", d.Description)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tasks := []models.Task{
		{Title: "Fix bug", Description: "Login is broken", Priority: models.PriorityHigh, State: models.TaskStateActive, Mode: "code"},
		{Title: "Archive me", Priority: models.PriorityLow, State: models.TaskStateArchived, Mode: "plan"},
		{Title: "Plain", Priority: models.PriorityMedium, State: models.TaskStateCompleted, Mode: "chat", Description: "multi\nline\nbody"},
	}

	for _, task := range tasks {
		d := Decode(Encode(task, false), task.Mode)
		if d.Title != task.Title {
			t.Errorf("Round trip title mismatch: want %q got %q", task.Title, d.Title)
		}
		if d.Description != strings.TrimSpace(task.Description) {
			t.Errorf("Round trip description mismatch: want %q got %q", task.Description, d.Description)
		}
		if d.Priority != task.Priority {
			t.Errorf("Round trip priority mismatch: want %s got %s", task.Priority, d.Priority)
		}
		if d.State != task.State {
			t.Errorf("Round trip state mismatch: want %s got %s", task.State, d.State)
		}
		if d.Mode != task.Mode {
			t.Errorf("Round trip mode mismatch: want %s got %s", task.Mode, d.Mode)
		}
	}
}

func TestDecodeConvergesAfterOnePass(t *testing.T) {
	// Scrambled field order and extra whitespace: the first decode
	// normalizes, after which decode(encode(x)) is a fixed point.
	text := "**State:** completed\n\n# Odd ordering\n\n\n**Priority:** low\n**Mode:** code\n"
	first := Decode(text, "chat")
	second := Decode(Encode(first.Task(""), false), "chat")
	third := Decode(Encode(second.Task(""), false), "chat")
	if second.Title != third.Title || second.Description != third.Description ||
		second.Priority != third.Priority || second.State != third.State || second.Mode != third.Mode {
		t.Errorf("Decoded form did not converge: %+v vs %+v", second, third)
	}
}

func TestEncodeTaskID(t *testing.T) {
	task := models.Task{ID: "task-1", Title: "Edit me", Priority: models.PriorityMedium, State: models.TaskStateActive}

	if text := Encode(task, false); strings.Contains(text, "**TaskId:**") {
		t.Error("TaskId must be omitted from create payloads")
	}

	text := Encode(task, true)
	if !strings.Contains(text, "**TaskId:** task-1") {
		t.Errorf("TaskId missing from edit payload:\n%s", text)
	}
	if d := Decode(text, "chat"); d.TaskID != "task-1" {
		t.Errorf("Expected decoded TaskId task-1, got %q", d.TaskID)
	}
}

func TestSubtasksRoundTrip(t *testing.T) {
	task := models.Task{
		Title:    "With subtasks",
		Priority: models.PriorityMedium,
		State:    models.TaskStateActive,
		Subtasks: []models.Subtask{
			{Name: "write failing test", Completed: true},
			{Name: "fix the code"},
		},
	}

	text := Encode(task, false)
	if !strings.Contains(text, "- [x] write failing test") || !strings.Contains(text, "- [ ] fix the code") {
		t.Fatalf("Checklist not encoded:\n%s", text)
	}

	d := Decode(text, "chat")
	if len(d.Subtasks) != 2 {
		t.Fatalf("Expected 2 subtasks, got %d", len(d.Subtasks))
	}
	if !d.Subtasks[0].Completed || d.Subtasks[0].Name != "write failing test" {
		t.Errorf("First subtask wrong: %+v", d.Subtasks[0])
	}
	if d.Subtasks[1].Completed || d.Subtasks[1].Name != "fix the code" {
		t.Errorf("Second subtask wrong: %+v", d.Subtasks[1])
	}
	if d.Subtasks[0].ID == "" || d.Subtasks[0].ID == d.Subtasks[1].ID {
		t.Error("Decoded subtasks should get distinct ids")
	}
}

func TestWorkflowSection(t *testing.T) {
	task := models.Task{
		Title:        "Fan out",
		Priority:     models.PriorityMedium,
		State:        models.TaskStateActive,
		FlowType:     models.FlowParallel,
		Dependencies: []string{"task-a", "task-b"},
	}

	text := Encode(task, false)
	if !strings.Contains(text, "### Workflow") {
		t.Fatalf("Workflow section missing:\n%s", text)
	}

	d := Decode(text, "chat")
	if d.FlowType != models.FlowParallel {
		t.Errorf("Expected parallel flow, got %s", d.FlowType)
	}
	if len(d.Dependencies) != 2 || d.Dependencies[0] != "task-a" || d.Dependencies[1] != "task-b" {
		t.Errorf("Dependencies mismatch: %v", d.Dependencies)
	}

	// Sequential with no dependencies is the default: section omitted.
	plain := models.Task{Title: "Plain", FlowType: models.FlowSequential}
	if text := Encode(plain, false); strings.Contains(text, "### Workflow") {
		t.Error("Default workflow must not be encoded")
	}
}

func TestEncodeEmptyTitle(t *testing.T) {
	text := Encode(models.Task{Title: "   "}, false)
	if !strings.HasPrefix(text, "# "+UntitledTask) {
		t.Errorf("Blank title should encode as %q:\n%s", UntitledTask, text)
	}
}
