// Package host carries the panel's only asynchronous boundary: opaque text
// messages exchanged with the host process that owns persistence and
// execution. The panel guarantees the structure of the text payloads; the
// envelope and transport belong to the host.
package host

import (
	"github.com/taskdock/taskdock/internal/codec"
	"github.com/taskdock/taskdock/internal/models"
)

// Outbound message types.
const (
	MessageNewTask    = "newTask"
	MessageShowTask   = "showTaskWithId"
	MessageDeleteTask = "deleteTaskWithId"
)

// Outbound is a message sent to the host.
type Outbound struct {
	Type   string   `json:"type"`
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// Record is one opaque session message from the host.
type Record struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Images []string `json:"images,omitempty"`
}

// Session is one conversational task session. Only the first record carries
// task attributes; the rest are conversation turns.
type Session struct {
	ID      string   `json:"id"`
	Records []Record `json:"records"`
}

// Snapshot is a full replacement of the task list. There is no incremental
// patching; the panel discards its mapping and rebuilds in one pass.
type Snapshot struct {
	Sessions []Session `json:"sessions"`
}

// NewTaskMessage builds the create payload. The TaskId marker is omitted; the
// host assigns the canonical id.
func NewTaskMessage(t models.Task) Outbound {
	return Outbound{Type: MessageNewTask, Text: codec.Encode(t, false), Images: []string{}}
}

// EditTaskMessage builds the edit payload with the TaskId marker embedded.
func EditTaskMessage(t models.Task) Outbound {
	return Outbound{Type: MessageShowTask, Text: codec.Encode(t, true), Images: []string{}}
}

// DeleteTaskMessage builds the delete payload; the text is the bare id.
func DeleteTaskMessage(id string) Outbound {
	return Outbound{Type: MessageDeleteTask, Text: id, Images: []string{}}
}

// Tasks decodes a snapshot into task records. The session id becomes the task
// id, falling back to the first record's id for hosts that derive ids from
// message timestamps. Sessions with no records are skipped.
func (s Snapshot) Tasks(ambientMode string) []models.Task {
	var tasks []models.Task
	for _, sess := range s.Sessions {
		if len(sess.Records) == 0 {
			continue
		}
		first := sess.Records[0]
		id := sess.ID
		if id == "" {
			id = first.ID
		}
		d := codec.Decode(first.Text, ambientMode)
		tasks = append(tasks, d.Task(id))
	}
	return tasks
}
