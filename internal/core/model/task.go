package model

import (
	"time"

	"github.com/rs/xid"
)

type TaskID string

func NewTaskID() TaskID {
	return TaskID(xid.New().String())
}

type ChannelID string

type Task interface {
	WithID[TaskID]
	WithOwner

	Text() string
	Completed() bool
	ChannelID() ChannelID
	CreatedAt() time.Time
}

type BaseTask struct {
	id        TaskID
	text      string
	completed bool
	owner     User
	channelID ChannelID
	createdAt time.Time
}

// ID implements Task.
func (t *BaseTask) ID() TaskID {
	return t.id
}

// Text implements Task.
func (t *BaseTask) Text() string {
	return t.text
}

// Completed implements Task.
func (t *BaseTask) Completed() bool {
	return t.completed
}

// Owner implements Task.
func (t *BaseTask) Owner() User {
	return t.owner
}

// ChannelID implements Task.
func (t *BaseTask) ChannelID() ChannelID {
	return t.channelID
}

// CreatedAt implements Task.
func (t *BaseTask) CreatedAt() time.Time {
	return t.createdAt
}

var _ Task = &BaseTask{}

// NewTask returns a new, not yet completed, task created now.
// The identifier is left empty: stores assign it on creation.
func NewTask(text string, owner User, channelID ChannelID) *BaseTask {
	return &BaseTask{
		text:      text,
		owner:     owner,
		channelID: channelID,
		createdAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// RestoreTask rebuilds a task from its persisted state.
func RestoreTask(id TaskID, text string, completed bool, owner User, channelID ChannelID, createdAt time.Time) *BaseTask {
	return &BaseTask{
		id:        id,
		text:      text,
		completed: completed,
		owner:     owner,
		channelID: channelID,
		createdAt: createdAt,
	}
}

// CopyTask returns a detached copy of the given task.
func CopyTask(t Task) *BaseTask {
	return RestoreTask(t.ID(), t.Text(), t.Completed(), t.Owner(), t.ChannelID(), t.CreatedAt())
}

// WithTaskID returns a copy of the task using the given identifier.
func WithTaskID(t Task, id TaskID) *BaseTask {
	cloned := CopyTask(t)
	cloned.id = id
	return cloned
}

// WithTaskCompleted returns a copy of the task with its completion flag set to the given value.
func WithTaskCompleted(t Task, completed bool) *BaseTask {
	cloned := CopyTask(t)
	cloned.completed = completed
	return cloned
}
