package mongo

import (
	"time"

	"github.com/bornholm/todo/internal/core/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names are kept compatible with the documents written by the
// previous Node.js implementation of the bot.
const (
	fieldID        = "_id"
	fieldCompleted = "completed"
	fieldUserID    = "userId"
	fieldChannelID = "channelId"
	fieldCreatedAt = "createdAt"
)

type Task struct {
	ID        primitive.ObjectID `bson:"_id"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	UserID    string             `bson:"userId"`
	UserName  string             `bson:"userName"`
	ChannelID string             `bson:"channelId"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type wrappedTask struct {
	t *Task
}

// ID implements model.Task.
func (w *wrappedTask) ID() model.TaskID {
	return model.TaskID(w.t.ID.Hex())
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
	return w.t.CreatedAt
}

var _ model.Task = &wrappedTask{}

func fromTask(id primitive.ObjectID, t model.Task) *Task {
	task := &Task{
		ID:        id,
		Text:      t.Text(),
		Completed: t.Completed(),
		ChannelID: string(t.ChannelID()),
		// BSON dates have a millisecond precision
		CreatedAt: t.CreatedAt().UTC().Truncate(time.Millisecond),
	}

	if owner := t.Owner(); owner != nil {
		task.UserID = string(owner.ID())
		task.UserName = owner.Name()
	}

	return task
}
