// Package store maintains the panel's in-memory task collection, partitioned
// into the three fixed lifecycle categories. It is the single point of truth
// for what exists and which category it is in.
//
// The host process owns the canonical data and may replace the whole
// collection at any time via ReplaceAll; everything held here is a disposable
// projection. A single view instance owns a Store; there are no concurrent
// writers.
package store

import (
	"strings"

	"github.com/google/uuid"
	"github.com/taskdock/taskdock/internal/models"
)

// Category is one fixed lifecycle bucket. Categories are created once at
// store construction and never destroyed.
type Category struct {
	ID         models.TaskState
	Tasks      []models.Task
	IsExpanded bool
}

// Update is a partial task update. Nil fields are left untouched.
type Update struct {
	Title        *string
	Description  *string
	Priority     *models.Priority
	State        *models.TaskState
	Mode         *string
	Running      *bool
	Subtasks     []models.Subtask
	FlowType     *models.FlowType
	Dependencies []string
}

// Store holds the category-to-tasks mapping.
type Store struct {
	categories []Category
	// byState maps a category id onto its slice index, validated at
	// construction so a category id is never trusted as a state blindly.
	byState     map[models.TaskState]int
	ambientMode string
}

// New creates a store with the three fixed categories, all expanded.
func New(ambientMode string) *Store {
	s := &Store{
		byState:     make(map[models.TaskState]int),
		ambientMode: ambientMode,
	}
	for i, state := range models.States() {
		s.categories = append(s.categories, Category{ID: state, IsExpanded: true})
		s.byState[state] = i
	}
	return s
}

// CreateTask constructs a new task and appends it to the category matching
// its state. A blank title is a validation rejection: the operation does not
// execute and the returned id is empty. The surrounding form layer surfaces
// field errors; the store stays silent.
func (s *Store) CreateTask(title string, priority models.Priority, state models.TaskState, description, mode string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if _, ok := s.byState[state]; !ok {
		state = models.TaskStateActive
	}
	if mode == "" {
		mode = s.ambientMode
	}

	task := models.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Priority:    priority,
		State:       state,
		Mode:        mode,
		FlowType:    models.FlowSequential,
	}

	idx := s.byState[state]
	s.categories[idx].Tasks = append(s.categories[idx].Tasks, task)
	return task.ID
}

// Add inserts an already-built task record, used when rebuilding from a host
// snapshot. Tasks with unknown states land in the active category and the
// record is normalized to match.
func (s *Store) Add(task models.Task) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if _, ok := s.byState[task.State]; !ok {
		task.State = models.TaskStateActive
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	s.DeleteTask(task.ID)
	idx := s.byState[task.State]
	s.categories[idx].Tasks = append(s.categories[idx].Tasks, task)
}

// EditTask applies a partial update. When the update changes the task's
// state, the task moves: it is removed from its old category and appended to
// the new one, so a category never holds a task with a mismatched state. When
// the state is unchanged the task keeps its position. Unknown ids are a
// no-op.
func (s *Store) EditTask(id string, upd Update) {
	ci, ti := s.locate(id)
	if ci < 0 {
		return
	}

	task := s.categories[ci].Tasks[ti]
	if upd.Title != nil && strings.TrimSpace(*upd.Title) != "" {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.Mode != nil {
		task.Mode = *upd.Mode
	}
	if upd.Running != nil {
		task.Running = *upd.Running
	}
	if upd.Subtasks != nil {
		task.Subtasks = upd.Subtasks
	}
	if upd.FlowType != nil {
		task.FlowType = *upd.FlowType
	}
	if upd.Dependencies != nil {
		task.Dependencies = upd.Dependencies
	}

	if upd.State == nil || *upd.State == task.State {
		s.categories[ci].Tasks[ti] = task
		return
	}

	ni, ok := s.byState[*upd.State]
	if !ok {
		s.categories[ci].Tasks[ti] = task
		return
	}
	task.State = *upd.State
	s.categories[ci].Tasks = append(s.categories[ci].Tasks[:ti], s.categories[ci].Tasks[ti+1:]...)
	s.categories[ni].Tasks = append(s.categories[ni].Tasks, task)
}

// DeleteTask removes the task from whichever category holds it. Deleting an
// unknown or already-removed id is a no-op; deletion is idempotent.
func (s *Store) DeleteTask(id string) {
	ci, ti := s.locate(id)
	if ci < 0 {
		return
	}
	s.categories[ci].Tasks = append(s.categories[ci].Tasks[:ti], s.categories[ci].Tasks[ti+1:]...)
}

// ToggleCategory flips a category's expansion flag. Presentation state only;
// unknown category ids are rejected as a no-op.
func (s *Store) ToggleCategory(id models.TaskState) {
	idx, ok := s.byState[id]
	if !ok {
		return
	}
	s.categories[idx].IsExpanded = !s.categories[idx].IsExpanded
}

// ReplaceAll discards the current mapping and rebuilds it from a host
// snapshot in one pass. Expansion flags survive the rebuild; they are not
// synchronized with the host.
func (s *Store) ReplaceAll(tasks []models.Task) {
	for i := range s.categories {
		s.categories[i].Tasks = nil
	}
	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if seen[task.ID] && task.ID != "" {
			continue
		}
		s.Add(task)
		seen[task.ID] = true
	}
}

// Task returns a copy of the task with the given id, or false when absent.
func (s *Store) Task(id string) (models.Task, bool) {
	ci, ti := s.locate(id)
	if ci < 0 {
		return models.Task{}, false
	}
	return s.categories[ci].Tasks[ti].Clone(), true
}

// Categories returns a copy of the category mapping in fixed order.
func (s *Store) Categories() []Category {
	out := make([]Category, len(s.categories))
	for i, c := range s.categories {
		out[i] = Category{ID: c.ID, IsExpanded: c.IsExpanded}
		out[i].Tasks = make([]models.Task, len(c.Tasks))
		for j, task := range c.Tasks {
			out[i].Tasks[j] = task.Clone()
		}
	}
	return out
}

// Len returns the total number of tasks across all categories.
func (s *Store) Len() int {
	n := 0
	for _, c := range s.categories {
		n += len(c.Tasks)
	}
	return n
}

// AmbientMode returns the default execution mode for new tasks.
func (s *Store) AmbientMode() string {
	return s.ambientMode
}

func (s *Store) locate(id string) (int, int) {
	if id == "" {
		return -1, -1
	}
	for ci, c := range s.categories {
		for ti, task := range c.Tasks {
			if task.ID == id {
				return ci, ti
			}
		}
	}
	return -1, -1
}
