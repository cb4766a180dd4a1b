package gorm

import (
	"time"

	"github.com/bornholm/todo/internal/core/model"
)

type Task struct {
	ID string `gorm:"primaryKey;autoIncrement:false"`

	// Unix milliseconds, sortable as an integer column.
	CreatedAt int64 `gorm:"index;autoCreateTime:milli"`
	UpdatedAt int64 `gorm:"autoUpdateTime:milli"`

	Text      string `gorm:"not null"`
	Completed bool   `gorm:"index"`

	UserID    string `gorm:"index;not null"`
	UserName  string
	ChannelID string `gorm:"index;not null"`
}

type wrappedTask struct {
	t *Task
}

// ID implements model.Task.
func (w *wrappedTask) ID() model.TaskID {
	return model.TaskID(w.t.ID)
}

// Text implements model.Task.
func (w *wrappedTask) Text() string {
	return w.t.Text
}

// Completed implements model.Task.
func (w *wrappedTask) Completed() bool {
	return w.t.Completed
}

// Owner implements model.Task.
func (w *wrappedTask) Owner() model.User {
	return model.NewUser(model.UserID(w.t.UserID), w.t.UserName)
}

// ChannelID implements model.Task.
func (w *wrappedTask) ChannelID() model.ChannelID {
	return model.ChannelID(w.t.ChannelID)
}

// CreatedAt implements model.Task.
func (w *wrappedTask) CreatedAt() time.Time {
	return time.UnixMilli(w.t.CreatedAt).UTC()
}

var _ model.Task = &wrappedTask{}

func fromTask(t model.Task) *Task {
	task := &Task{
		ID:        string(t.ID()),
		CreatedAt: t.CreatedAt().UnixMilli(),
		Text:      t.Text(),
		Completed: t.Completed(),
		ChannelID: string(t.ChannelID()),
	}

	if owner := t.Owner(); owner != nil {
		task.UserID = string(owner.ID())
		task.UserName = owner.Name()
	}

	return task
}
