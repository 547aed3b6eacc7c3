// Package keymap maps modifier chords onto store and transition operations,
// scoped to the currently selected task. The table is fixed; it is not user
// configurable.
package keymap

import (
	"github.com/taskdock/taskdock/internal/models"
	"github.com/taskdock/taskdock/internal/store"
	"github.com/taskdock/taskdock/internal/transition"
)

// Action tells the caller what UI effect, if any, a chord asks for. State
// changes are applied to the store directly; flows and panel toggles are
// owned by the surrounding view.
type Action int

const (
	ActionNone Action = iota
	ActionStateChanged
	ActionOpenCreate
	ActionOpenEdit
	ActionToggleFilterPanel
)

// Chords, in bubbletea key-string form.
const (
	ChordActivate    = "alt+a"
	ChordComplete    = "alt+c"
	ChordArchive     = "alt+r"
	ChordNew         = "alt+n"
	ChordEdit        = "alt+e"
	ChordFilterPanel = "alt+f"
)

var stateChords = map[string]models.TaskState{
	ChordActivate: models.TaskStateActive,
	ChordComplete: models.TaskStateCompleted,
	ChordArchive:  models.TaskStateArchived,
}

// Dispatcher routes chords to the store and the transition tracker.
type Dispatcher struct {
	store       *store.Store
	transitions *transition.Tracker
}

// NewDispatcher creates a dispatcher over a store and a transition tracker.
func NewDispatcher(s *store.Store, tr *transition.Tracker) *Dispatcher {
	return &Dispatcher{store: s, transitions: tr}
}

// Dispatch handles one chord against the current selection. With no selected
// task, every chord that needs one is a silent no-op; that is the intended
// behavior, not an unreported failure.
func (d *Dispatcher) Dispatch(chord, selectedID string) Action {
	if target, ok := stateChords[chord]; ok {
		return d.setState(selectedID, target)
	}

	switch chord {
	case ChordNew:
		return ActionOpenCreate
	case ChordEdit:
		if selectedID == "" {
			return ActionNone
		}
		if _, ok := d.store.Task(selectedID); !ok {
			return ActionNone
		}
		return ActionOpenEdit
	case ChordFilterPanel:
		return ActionToggleFilterPanel
	}
	return ActionNone
}

func (d *Dispatcher) setState(selectedID string, target models.TaskState) Action {
	if selectedID == "" {
		return ActionNone
	}
	task, ok := d.store.Task(selectedID)
	if !ok || task.State == target {
		return ActionNone
	}

	prev := task.State
	d.store.EditTask(selectedID, store.Update{State: &target})
	if d.transitions != nil {
		d.transitions.Notify(selectedID, prev, target)
	}
	return ActionStateChanged
}
