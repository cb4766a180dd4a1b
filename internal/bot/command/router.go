package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/core/service"
	"github.com/bornholm/todo/internal/metrics"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

var ErrUnknownCommand = errors.New("unknown command")

const (
	NameHelp       = "help"
	NameAdd        = "add"
	NameList       = "list"
	NameComplete   = "complete"
	NameUncomplete = "uncomplete"
	NameDelete     = "delete"
	NameClear      = "clear"
)

const (
	GlyphCompleted  = ":white_check_mark:"
	GlyphIncomplete = ":white_large_square:"
)

const (
	messageTextRequired = "Task text required. Example: `%s add Prepare the meeting notes`"
	messageIDRequired   = "Task ID required. Example: `%s %s 5f8d0e5e1c91c7353c6b4d7a`"
	messageNotFound     = "Task ID %s not found."
	messageNoTasks      = "No tasks in this channel."
	messageAdded        = "Task \"%s\" added."
	messageCompleted    = "Task \"%s\" marked as complete."
	messageUncompleted  = "Task \"%s\" marked as incomplete."
	messageDeleted      = "Task \"%s\" deleted."
	messageCleared      = "Removed %d completed task(s)."
	messageUnknown      = "Unknown command: `%s`\n%s"
	messageFailure      = "Something went wrong, please try again later."
)

const helpTemplate = `*How to use the ToDo list*:
• ` + "`%[1]s help`" + ` - show this help message
• ` + "`%[1]s add <task>`" + ` - add a new task
• ` + "`%[1]s list`" + ` - list the tasks of this channel
• ` + "`%[1]s complete <id>`" + ` - mark a task as complete
• ` + "`%[1]s uncomplete <id>`" + ` - mark a task as incomplete
• ` + "`%[1]s delete <id>`" + ` - delete a task
• ` + "`%[1]s clear`" + ` - delete every completed task of this channel`

// Request is a slash command invocation.
type Request struct {
	Text      string
	UserID    model.UserID
	UserName  string
	ChannelID model.ChannelID
}

// Reply is only visible to the user who issued the command.
type Reply struct {
	Text string
}

// Command is a parsed command line.
type Command struct {
	Name string
	Rest string
}

// Parse splits the command text on its first whitespace run.
// The command name is case-insensitive.
func Parse(text string) Command {
	text = strings.TrimSpace(text)

	name, rest := text, ""
	if idx := strings.IndexFunc(text, unicode.IsSpace); idx >= 0 {
		name, rest = text[:idx], text[idx:]
	}

	return Command{
		Name: strings.ToLower(name),
		Rest: strings.TrimSpace(rest),
	}
}

type handlerFunc func(ctx context.Context, req Request, cmd Command) (*Reply, error)

type Router struct {
	taskManager *service.TaskManager
	commandName string
	now         func() time.Time
	handlers    map[string]handlerFunc
}

// Handle executes the given command and returns the reply to display to the caller.
// A reply is always returned; the error is only set on unexpected failures, which
// are already turned into a generic reply.
func (r *Router) Handle(ctx context.Context, req Request) (*Reply, error) {
	cmd := Parse(req.Text)

	ctx = slogx.WithAttrs(ctx,
		slog.String("command", cmd.Name),
		slog.String("userID", string(req.UserID)),
		slog.String("channelID", string(req.ChannelID)),
	)

	handler, err := r.lookup(cmd.Name)
	if err != nil {
		metrics.TotalCommands.WithLabelValues("unknown").Inc()
		return &Reply{Text: fmt.Sprintf(messageUnknown, cmd.Name, r.help())}, nil
	}

	metrics.TotalCommands.WithLabelValues(cmd.Name).Inc()

	reply, err := handler(ctx, req, cmd)
	if err != nil {
		slog.ErrorContext(ctx, "could not handle command", slogx.Error(err))
		return &Reply{Text: messageFailure}, errors.WithStack(err)
	}

	return reply, nil
}

func (r *Router) lookup(name string) (handlerFunc, error) {
	if name == "" {
		name = NameHelp
	}

	handler, exists := r.handlers[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownCommand, "no handler for '%s'", name)
	}

	return handler, nil
}

func (r *Router) help() string {
	return fmt.Sprintf(helpTemplate, r.commandName)
}

func (r *Router) handleHelp(ctx context.Context, req Request, cmd Command) (*Reply, error) {
	return &Reply{Text: r.help()}, nil
}

func (r *Router) handleAdd(ctx context.Context, req Request, cmd Command) (*Reply, error) {
	if cmd.Rest == "" {
		return &Reply{Text: fmt.Sprintf(messageTextRequired, r.commandName)}, nil
	}

	owner := model.NewUser(req.UserID, req.UserName)

	task, err := r.taskManager.AddTask(ctx, cmd.Rest, owner, req.ChannelID)
	if err != nil {
		if errors.Is(err, port.ErrInvalidInput) {
			return &Reply{Text: fmt.Sprintf(messageTextRequired, r.commandName)}, nil
		}

		return nil, errors.WithStack(err)
	}

	return &Reply{Text: fmt.Sprintf(messageAdded, task.Text())}, nil
}

func (r *Router) handleList(ctx context.Context, req Request, cmd Command) (*Reply, error) {
	tasks, err := r.taskManager.ListByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if len(tasks) == 0 {
		return &Reply{Text: messageNoTasks}, nil
	}

	now := r.now()

	var sb strings.Builder

	sb.WriteString("*ToDo list*:\n")

	for _, t := range tasks {
		glyph := GlyphIncomplete
		if t.Completed() {
			glyph = GlyphCompleted
		}

		var ownerName string
		if owner := t.Owner(); owner != nil {
			ownerName = owner.Name()
		}

		age := humanize.RelTime(t.CreatedAt(), now, "ago", "from now")

		fmt.Fprintf(&sb, "%s *ID:* %s - %s (@%s, %s)\n", glyph, t.ID(), t.Text(), ownerName, age)
	}

	return &Reply{Text: sb.String()}, nil
}

func (r *Router) handleSetCompleted(completed bool) handlerFunc {
	return func(ctx context.Context, req Request, cmd Command) (*Reply, error) {
		id, ok := firstField(cmd.Rest)
		if !ok {
			return &Reply{Text: fmt.Sprintf(messageIDRequired, r.commandName, cmd.Name)}, nil
		}

		task, err := r.taskManager.SetCompleted(ctx, model.TaskID(id), completed)
		if err != nil {
			if errors.Is(err, port.ErrNotFound) {
				return &Reply{Text: fmt.Sprintf(messageNotFound, id)}, nil
			}

			return nil, errors.WithStack(err)
		}

		message := messageUncompleted
		if completed {
			message = messageCompleted
		}

		return &Reply{Text: fmt.Sprintf(message, task.Text())}, nil
	}
}

func (r *Router) handleDelete(ctx context.Context, req Request, cmd Command) (*Reply, error) {
	id, ok := firstField(cmd.Rest)
	if !ok {
		return &Reply{Text: fmt.Sprintf(messageIDRequired, r.commandName, cmd.Name)}, nil
	}

	text, err := r.taskManager.DeleteTask(ctx, model.TaskID(id))
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return &Reply{Text: fmt.Sprintf(messageNotFound, id)}, nil
		}

		return nil, errors.WithStack(err)
	}

	return &Reply{Text: fmt.Sprintf(messageDeleted, text)}, nil
}

func (r *Router) handleClear(ctx context.Context, req Request, cmd Command) (*Reply, error) {
	removed, err := r.taskManager.ClearCompleted(ctx, service.ChannelScope(req.ChannelID))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Reply{Text: fmt.Sprintf(messageCleared, removed)}, nil
}

func firstField(s string) (string, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", false
	}

	return fields[0], true
}

type Options struct {
	CommandName string
	Now         func() time.Time
}

type OptionFunc func(opts *Options)

func WithCommandName(name string) OptionFunc {
	return func(opts *Options) {
		opts.CommandName = name
	}
}

func WithClock(now func() time.Time) OptionFunc {
	return func(opts *Options) {
		opts.Now = now
	}
}

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		CommandName: "/todo",
		Now:         time.Now,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func NewRouter(taskManager *service.TaskManager, funcs ...OptionFunc) *Router {
	opts := NewOptions(funcs...)

	r := &Router{
		taskManager: taskManager,
		commandName: opts.CommandName,
		now:         opts.Now,
	}

	r.handlers = map[string]handlerFunc{
		NameHelp:       r.handleHelp,
		NameAdd:        r.handleAdd,
		NameList:       r.handleList,
		NameComplete:   r.handleSetCompleted(true),
		NameUncomplete: r.handleSetCompleted(false),
		NameDelete:     r.handleDelete,
		NameClear:      r.handleClear,
	}

	return r
}
