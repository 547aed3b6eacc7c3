// Package models defines the core domain types for taskdock.
package models

import "strings"

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TaskState represents the lifecycle category of a task.
type TaskState string

const (
	TaskStateActive    TaskState = "active"
	TaskStateCompleted TaskState = "completed"
	TaskStateArchived  TaskState = "archived"
)

// FlowType represents how a task's workflow executes its subtasks.
type FlowType string

const (
	FlowSequential FlowType = "sequential"
	FlowParallel   FlowType = "parallel"
	FlowConcurrent FlowType = "concurrent"
	FlowSwarm      FlowType = "swarm"
)

// States returns the fixed category order used everywhere a category list is built.
func States() []TaskState {
	return []TaskState{TaskStateActive, TaskStateCompleted, TaskStateArchived}
}

// ParsePriority maps free text onto a Priority, falling back to medium.
// The codec never stores or restores a value outside the enum.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	case PriorityMedium:
		return PriorityMedium
	default:
		return PriorityMedium
	}
}

// ParseState maps free text onto a TaskState, falling back to active.
func ParseState(s string) TaskState {
	switch TaskState(strings.ToLower(strings.TrimSpace(s))) {
	case TaskStateCompleted:
		return TaskStateCompleted
	case TaskStateArchived:
		return TaskStateArchived
	case TaskStateActive:
		return TaskStateActive
	default:
		return TaskStateActive
	}
}

// ParseFlowType maps free text onto a FlowType, falling back to sequential.
func ParseFlowType(s string) FlowType {
	switch FlowType(strings.ToLower(strings.TrimSpace(s))) {
	case FlowParallel:
		return FlowParallel
	case FlowConcurrent:
		return FlowConcurrent
	case FlowSwarm:
		return FlowSwarm
	default:
		return FlowSequential
	}
}

// Subtask is one checklist entry under a task.
type Subtask struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Task represents one inbox task wrapping a conversational session.
// The host process owns the canonical data; this struct is the panel's
// in-memory projection of it.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	State       TaskState `json:"state"`
	Mode        string    `json:"mode"`
	// Running tracks whether an execution is in flight. UI-local, never
	// carried through the codec.
	Running      bool      `json:"running,omitempty"`
	Subtasks     []Subtask `json:"subtasks,omitempty"`
	FlowType     FlowType  `json:"flow_type,omitempty"`
	Dependencies []string  `json:"dependencies,omitempty"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.Subtasks != nil {
		c.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(c.Subtasks, t.Subtasks)
	}
	if t.Dependencies != nil {
		c.Dependencies = make([]string, len(t.Dependencies))
		copy(c.Dependencies, t.Dependencies)
	}
	return c
}
