package host

import (
	"github.com/taskdock/taskdock/internal/models"
	"github.com/taskdock/taskdock/internal/store"
)

// Sender delivers outbound messages to the host.
type Sender interface {
	Send(Outbound) error
}

// Bridge ties the store to the host transport: inbound snapshots rebuild the
// store, mutating operations re-encode through the codec and go back out.
type Bridge struct {
	store  *store.Store
	sender Sender
}

// NewBridge creates a bridge. sender may be nil for a detached panel; store
// operations then apply locally only.
func NewBridge(s *store.Store, sender Sender) *Bridge {
	return &Bridge{store: s, sender: sender}
}

// ApplySnapshot replaces the whole task collection atomically.
func (b *Bridge) ApplySnapshot(snap Snapshot) {
	b.store.ReplaceAll(snap.Tasks(b.store.AmbientMode()))
}

// CreateTask creates a task locally and announces it to the host. A blank
// title is rejected silently by the store; nothing is sent.
func (b *Bridge) CreateTask(title string, priority models.Priority, state models.TaskState, description, mode string) (string, error) {
	id := b.store.CreateTask(title, priority, state, description, mode)
	if id == "" {
		return "", nil
	}
	task, _ := b.store.Task(id)
	if b.sender == nil {
		return id, nil
	}
	return id, b.sender.Send(NewTaskMessage(task))
}

// EditTask applies a partial update and sends the re-encoded task. Unknown
// ids are a no-op.
func (b *Bridge) EditTask(id string, upd store.Update) error {
	if _, ok := b.store.Task(id); !ok {
		return nil
	}
	b.store.EditTask(id, upd)
	task, _ := b.store.Task(id)
	if b.sender == nil {
		return nil
	}
	return b.sender.Send(EditTaskMessage(task))
}

// DeleteTask removes a task and tells the host. Idempotent: deleting an
// already-removed id sends nothing.
func (b *Bridge) DeleteTask(id string) error {
	if _, ok := b.store.Task(id); !ok {
		return nil
	}
	b.store.DeleteTask(id)
	if b.sender == nil {
		return nil
	}
	return b.sender.Send(DeleteTaskMessage(id))
}
