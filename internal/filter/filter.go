// Package filter derives the visible subset of the task collection from the
// current search query and priority filter. It never mutates its input.
package filter

import (
	"strings"

	"github.com/taskdock/taskdock/internal/models"
	"github.com/taskdock/taskdock/internal/store"
)

// PriorityAll is the priority filter value that matches every task.
const PriorityAll = "all"

// Criteria holds the active filter inputs.
type Criteria struct {
	Query    string
	Priority string
}

// Reset returns the identity criteria, guaranteed to include every task.
func Reset() Criteria {
	return Criteria{Query: "", Priority: PriorityAll}
}

// IsIdentity reports whether the criteria filter nothing out.
func (c Criteria) IsIdentity() bool {
	return c.Query == "" && (c.Priority == "" || c.Priority == PriorityAll)
}

// Category is a store category plus its derived filtered view. Ephemeral:
// recomputed on every change to the task list or the criteria.
type Category struct {
	store.Category
	Filtered []models.Task
}

// Apply derives the filtered view per category. Every category is present in
// the output even when nothing matches, so "no matches" can render per
// category or globally.
func Apply(categories []store.Category, c Criteria) []Category {
	query := strings.ToLower(strings.TrimSpace(c.Query))

	out := make([]Category, len(categories))
	for i, cat := range categories {
		out[i] = Category{Category: cat}
		for _, task := range cat.Tasks {
			if Matches(task, query, c.Priority) {
				out[i].Filtered = append(out[i].Filtered, task)
			}
		}
	}
	return out
}

// Matches reports whether a task passes both predicates. The query must
// already be lowercased and trimmed.
func Matches(task models.Task, query, priority string) bool {
	matchesSearch := query == "" ||
		strings.Contains(strings.ToLower(task.Title), query) ||
		strings.Contains(strings.ToLower(task.Description), query)

	matchesPriority := priority == "" || priority == PriorityAll ||
		task.Priority == models.Priority(priority)

	return matchesSearch && matchesPriority
}

// Count returns the total number of tasks in the filtered views.
func Count(categories []Category) int {
	n := 0
	for _, c := range categories {
		n += len(c.Filtered)
	}
	return n
}
