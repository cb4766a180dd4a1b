package home

import (
	"fmt"

	"github.com/bornholm/todo/internal/core/model"
	"github.com/slack-go/slack"
)

const (
	ActionAddTask        = "add_todo"
	ActionCompleteTask   = "complete_todo"
	ActionDeleteTask     = "delete_todo"
	ActionClearCompleted = "clear_completed"
)

const (
	titleText        = "Your ToDo list"
	instructionsText = "Add, manage and complete your tasks from here."
	addTaskLabel     = "Add a new task"
	clearLabel       = "Clear completed tasks"
	emptyText        = "No tasks yet. Add a new one!"
	activeTitle      = "Active tasks"
	completedTitle   = "Completed tasks"
	completeLabel    = "Complete"
	deleteLabel      = "Delete"
)

type Options struct {
	Notice string
}

type OptionFunc func(opts *Options)

// WithNotice displays a transient message, typically an error, at the top of the view.
func WithNotice(notice string) OptionFunc {
	return func(opts *Options) {
		opts.Notice = notice
	}
}

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// Render builds the whole home tab of a user from its active and completed tasks.
// The view is always generated from scratch.
func Render(active []model.Task, completed []model.Task, funcs ...OptionFunc) slack.HomeTabViewRequest {
	opts := NewOptions(funcs...)

	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText(titleText)),
	}

	if opts.Notice != "" {
		blocks = append(blocks, slack.NewContextBlock("", markdownText(fmt.Sprintf(":warning: %s", opts.Notice))))
	}

	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewSectionBlock(markdownText(instructionsText), nil, nil),
		slack.NewActionBlock("",
			slack.NewButtonBlockElement(ActionAddTask, "", plainText(addTaskLabel)),
			slack.NewButtonBlockElement(ActionClearCompleted, "", plainText(clearLabel)),
		),
		slack.NewDividerBlock(),
	)

	if len(active) == 0 && len(completed) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(markdownText(emptyText), nil, nil))

		return newHomeTab(blocks)
	}

	if len(active) > 0 {
		blocks = append(blocks, slack.NewHeaderBlock(plainText(activeTitle)))

		for _, t := range active {
			button := slack.NewButtonBlockElement(ActionCompleteTask, string(t.ID()), plainText(completeLabel))
			blocks = append(blocks, slack.NewSectionBlock(
				markdownText(fmt.Sprintf("• %s", t.Text())),
				nil, slack.NewAccessory(button),
			))
		}
	}

	if len(completed) > 0 {
		blocks = append(blocks, slack.NewHeaderBlock(plainText(completedTitle)))

		for _, t := range completed {
			button := slack.NewButtonBlockElement(ActionDeleteTask, string(t.ID()), plainText(deleteLabel)).
				WithStyle(slack.StyleDanger)
			blocks = append(blocks, slack.NewSectionBlock(
				markdownText(fmt.Sprintf("~%s~", t.Text())),
				nil, slack.NewAccessory(button),
			))
		}
	}

	return newHomeTab(blocks)
}

func newHomeTab(blocks []slack.Block) slack.HomeTabViewRequest {
	return slack.HomeTabViewRequest{
		Type:   slack.VTHomeTab,
		Blocks: slack.Blocks{BlockSet: blocks},
	}
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

func markdownText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}
