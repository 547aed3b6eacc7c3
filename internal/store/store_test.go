package store

import (
	"testing"

	"github.com/taskdock/taskdock/internal/models"
)

func newTestStore() *Store {
	return New("code")
}

func TestNew(t *testing.T) {
	s := newTestStore()

	cats := s.Categories()
	if len(cats) != 3 {
		t.Fatalf("Expected 3 categories, got %d", len(cats))
	}
	want := []models.TaskState{models.TaskStateActive, models.TaskStateCompleted, models.TaskStateArchived}
	for i, state := range want {
		if cats[i].ID != state {
			t.Errorf("Category %d: expected %s, got %s", i, state, cats[i].ID)
		}
		if !cats[i].IsExpanded {
			t.Errorf("Category %s should start expanded", state)
		}
	}
}

func TestCreateTask(t *testing.T) {
	s := newTestStore()

	id := s.CreateTask("Fix bug", models.PriorityHigh, models.TaskStateActive, "Login is broken", "")
	if id == "" {
		t.Fatal("Expected non-empty id")
	}

	task, ok := s.Task(id)
	if !ok {
		t.Fatal("Task not found after create")
	}
	if task.Priority != models.PriorityHigh {
		t.Errorf("Expected priority high, got %s", task.Priority)
	}
	if task.Mode != "code" {
		t.Errorf("Expected ambient mode code, got %s", task.Mode)
	}
	if task.State != models.TaskStateActive {
		t.Errorf("Expected state active, got %s", task.State)
	}
}

func TestCreateTaskBlankTitle(t *testing.T) {
	s := newTestStore()

	for _, title := range []string{"", "   ", "\t\n"} {
		if id := s.CreateTask(title, models.PriorityMedium, models.TaskStateActive, "", ""); id != "" {
			t.Errorf("Blank title %q should be a no-op, got id %s", title, id)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d tasks", s.Len())
	}
}

// checkPartition verifies the category invariant: every task id appears in
// exactly one category and that category's id equals the task's state.
func checkPartition(t *testing.T, s *Store) {
	t.Helper()
	seen := make(map[string]models.TaskState)
	for _, c := range s.Categories() {
		for _, task := range c.Tasks {
			if prev, dup := seen[task.ID]; dup {
				t.Errorf("Task %s appears in both %s and %s", task.ID, prev, c.ID)
			}
			seen[task.ID] = c.ID
			if task.State != c.ID {
				t.Errorf("Task %s has state %s but sits in category %s", task.ID, task.State, c.ID)
			}
		}
	}
}

func TestPartitionInvariant(t *testing.T) {
	s := newTestStore()

	a := s.CreateTask("a", models.PriorityHigh, models.TaskStateActive, "", "")
	b := s.CreateTask("b", models.PriorityMedium, models.TaskStateCompleted, "", "")
	c := s.CreateTask("c", models.PriorityLow, models.TaskStateArchived, "", "")
	checkPartition(t, s)

	archived := models.TaskStateArchived
	s.EditTask(a, Update{State: &archived})
	checkPartition(t, s)

	s.DeleteTask(b)
	checkPartition(t, s)

	active := models.TaskStateActive
	s.EditTask(c, Update{State: &active})
	s.EditTask(c, Update{State: &active})
	checkPartition(t, s)

	if s.Len() != 2 {
		t.Errorf("Expected 2 tasks, got %d", s.Len())
	}
}

func TestEditTaskMovesBetweenCategories(t *testing.T) {
	s := newTestStore()

	other := s.CreateTask("already archived", models.PriorityMedium, models.TaskStateArchived, "", "")
	id := s.CreateTask("move me", models.PriorityMedium, models.TaskStateActive, "", "")

	archived := models.TaskStateArchived
	s.EditTask(id, Update{State: &archived})

	cats := s.Categories()
	if len(cats[0].Tasks) != 0 {
		t.Errorf("Expected active category empty, got %d tasks", len(cats[0].Tasks))
	}
	if len(cats[2].Tasks) != 2 {
		t.Fatalf("Expected 2 archived tasks, got %d", len(cats[2].Tasks))
	}
	// The moved task appends; existing tasks keep their relative order.
	if cats[2].Tasks[0].ID != other {
		t.Error("Pre-existing archived task should keep its position")
	}
	if cats[2].Tasks[1].ID != id {
		t.Error("Moved task should append to the new category")
	}
	if cats[2].Tasks[1].State != models.TaskStateArchived {
		t.Errorf("Moved task state not updated: %s", cats[2].Tasks[1].State)
	}
}

func TestEditTaskInPlacePreservesPosition(t *testing.T) {
	s := newTestStore()

	first := s.CreateTask("first", models.PriorityMedium, models.TaskStateActive, "", "")
	second := s.CreateTask("second", models.PriorityMedium, models.TaskStateActive, "", "")

	title := "renamed"
	low := models.PriorityLow
	s.EditTask(first, Update{Title: &title, Priority: &low})

	cats := s.Categories()
	if cats[0].Tasks[0].ID != first || cats[0].Tasks[1].ID != second {
		t.Error("In-place edit must preserve ordering")
	}
	if cats[0].Tasks[0].Title != "renamed" || cats[0].Tasks[0].Priority != models.PriorityLow {
		t.Errorf("Update not applied: %+v", cats[0].Tasks[0])
	}
}

func TestEditUnknownTaskIsNoop(t *testing.T) {
	s := newTestStore()
	s.CreateTask("keep", models.PriorityMedium, models.TaskStateActive, "", "")

	title := "ghost"
	s.EditTask("no-such-id", Update{Title: &title})

	if s.Len() != 1 {
		t.Errorf("Expected 1 task, got %d", s.Len())
	}
}

func TestDeleteTaskIdempotent(t *testing.T) {
	s := newTestStore()

	id := s.CreateTask("delete me", models.PriorityMedium, models.TaskStateActive, "", "")
	s.DeleteTask(id)
	if s.Len() != 0 {
		t.Fatalf("Expected 0 tasks after delete, got %d", s.Len())
	}

	// Second delete is a no-op, not an error.
	s.DeleteTask(id)
	s.DeleteTask("never-existed")
	if s.Len() != 0 {
		t.Errorf("Expected 0 tasks, got %d", s.Len())
	}
	checkPartition(t, s)
}

func TestToggleCategory(t *testing.T) {
	s := newTestStore()

	s.ToggleCategory(models.TaskStateCompleted)
	cats := s.Categories()
	if cats[1].IsExpanded {
		t.Error("Completed category should be collapsed after toggle")
	}
	if !cats[0].IsExpanded || !cats[2].IsExpanded {
		t.Error("Other categories must be untouched")
	}

	s.ToggleCategory(models.TaskStateCompleted)
	if !s.Categories()[1].IsExpanded {
		t.Error("Second toggle should expand again")
	}

	// Unknown category ids are rejected.
	s.ToggleCategory(models.TaskState("bogus"))
	for _, c := range s.Categories() {
		if !c.IsExpanded {
			t.Error("Unknown id toggle must be a no-op")
		}
	}
}

func TestReplaceAll(t *testing.T) {
	s := newTestStore()
	s.CreateTask("stale", models.PriorityMedium, models.TaskStateActive, "", "")
	s.ToggleCategory(models.TaskStateArchived)

	s.ReplaceAll([]models.Task{
		{ID: "t1", Title: "one", State: models.TaskStateActive, Priority: models.PriorityHigh},
		{ID: "t2", Title: "two", State: models.TaskStateCompleted, Priority: models.PriorityMedium},
		{ID: "t2", Title: "dup", State: models.TaskStateArchived, Priority: models.PriorityMedium},
		{ID: "t3", Title: "weird", State: models.TaskState("unknown"), Priority: models.PriorityLow},
	})

	if s.Len() != 3 {
		t.Fatalf("Expected 3 tasks after snapshot (dup dropped), got %d", s.Len())
	}
	checkPartition(t, s)

	task, ok := s.Task("t3")
	if !ok {
		t.Fatal("t3 missing after snapshot")
	}
	if task.State != models.TaskStateActive {
		t.Errorf("Unknown state should normalize to active, got %s", task.State)
	}

	// Expansion flags are presentation state and survive the rebuild.
	if s.Categories()[2].IsExpanded {
		t.Error("Archived category expansion should survive ReplaceAll")
	}
}

func TestCategoriesReturnsCopies(t *testing.T) {
	s := newTestStore()
	id := s.CreateTask("original", models.PriorityMedium, models.TaskStateActive, "", "")

	cats := s.Categories()
	cats[0].Tasks[0].Title = "mutated"

	task, _ := s.Task(id)
	if task.Title != "original" {
		t.Error("Categories must return copies, not aliases")
	}
}
