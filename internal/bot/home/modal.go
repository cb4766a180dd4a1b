package home

import (
	"github.com/slack-go/slack"
)

const (
	CallbackAddTask = "add_todo_modal"

	BlockTask     = "task_block"
	ActionTask    = "task_input"
	BlockChannel  = "channel_block"
	ActionChannel = "channel_select"
)

// AddTaskModal returns the modal used to create a task shared in a channel.
func AddTaskModal() slack.ModalViewRequest {
	taskInput := slack.NewPlainTextInputBlockElement(
		slack.NewTextBlockObject(slack.PlainTextType, "Describe the task", false, false),
		ActionTask,
	)

	channelSelect := slack.NewOptionsSelectBlockElement(
		slack.OptTypeConversations,
		slack.NewTextBlockObject(slack.PlainTextType, "Select a channel", false, false),
		ActionChannel,
	)
	channelSelect.Filter = &slack.SelectBlockElementFilter{
		Include: []string{"public", "private"},
	}

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: CallbackAddTask,
		Title:      plainText("Add a task"),
		Submit:     plainText("Add"),
		Close:      plainText("Cancel"),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewInputBlock(BlockTask, plainText("Task"), nil, taskInput),
				slack.NewInputBlock(BlockChannel, plainText("Share in channel"), nil, channelSelect),
			},
		},
	}
}

// AddTaskValues extracts the task text and the selected channel from a submitted add task modal.
func AddTaskValues(state *slack.ViewState) (text string, channelID string) {
	if state == nil {
		return "", ""
	}

	if block, exists := state.Values[BlockTask]; exists {
		text = block[ActionTask].Value
	}

	if block, exists := state.Values[BlockChannel]; exists {
		channelID = block[ActionChannel].SelectedConversation
	}

	return text, channelID
}
