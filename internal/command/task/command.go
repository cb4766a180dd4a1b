package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/bornholm/todo/internal/command/common"
	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/service"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	paramChannel  = "channel"
	paramUser     = "user"
	paramUserName = "user-name"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "task",
		Usage: "Inspect and manage the stored tasks",
		Subcommands: []*cli.Command{
			listCommand(),
			getCommand(),
			addCommand(),
			setCompletedCommand("complete", "Mark a task as complete", true),
			setCompletedCommand("uncomplete", "Mark a task as incomplete", false),
			deleteCommand(),
			clearCommand(),
		},
	}
}

func listCommand() *cli.Command {
	flags := common.WithCommonFlags(
		&cli.StringFlag{
			Name:    paramChannel,
			Aliases: []string{"c"},
			Usage:   "List the tasks shared in this channel",
		},
		&cli.StringFlag{
			Name:    paramUser,
			Aliases: []string{"u"},
			Usage:   "List the tasks owned by this user",
		},
	)

	return &cli.Command{
		Name:   "list",
		Usage:  "List the tasks of a channel or of a user, oldest first",
		Flags:  flags,
		Before: common.InitConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			output, err := common.GetOutput(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			taskManager, release, err := common.GetTaskManager(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			defer release()

			var tasks []model.Task

			switch {
			case ctx.String(paramChannel) != "":
				tasks, err = taskManager.ListByChannel(ctx.Context, model.ChannelID(ctx.String(paramChannel)))
			case ctx.String(paramUser) != "":
				tasks, err = taskManager.ListByUser(ctx.Context, model.UserID(ctx.String(paramUser)))
			default:
				return errors.Errorf("either --%s or --%s is required", paramChannel, paramUser)
			}
			if err != nil {
				return errors.Wrap(err, "could not list tasks")
			}

			if err := printTasks(ctx.App.Writer, output, tasks, time.Now()); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	}
}

func addCommand() *cli.Command {
	flags := common.WithCommonFlags(
		&cli.StringFlag{
			Name:     paramChannel,
			Aliases:  []string{"c"},
			Usage:    "Channel the task is shared in",
			Required: true,
		},
		&cli.StringFlag{
			Name:     paramUser,
			Aliases:  []string{"u"},
			Usage:    "Owner of the task",
			Required: true,
		},
		&cli.StringFlag{
			Name:  paramUserName,
			Usage: "Display name of the owner",
		},
	)

	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		ArgsUsage: "<text>",
		Flags:     flags,
		Before:    common.InitConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			output, err := common.GetOutput(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			taskManager, release, err := common.GetTaskManager(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			defer release()

			text := strings.Join(ctx.Args().Slice(), " ")
			owner := model.NewUser(model.UserID(ctx.String(paramUser)), ctx.String(paramUserName))

			task, err := taskManager.AddTask(ctx.Context, text, owner, model.ChannelID(ctx.String(paramChannel)))
			if err != nil {
				return errors.Wrap(err, "could not add task")
			}

			if err := printTasks(ctx.App.Writer, output, []model.Task{task}, time.Now()); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	}
}

func setCompletedCommand(name string, usage string, completed bool) *cli.Command {
	flags := common.WithCommonFlags()

	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Flags:     flags,
		Before:    common.InitConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			output, err := common.GetOutput(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			id, err := getTaskID(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			taskManager, release, err := common.GetTaskManager(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			defer release()

			task, err := taskManager.SetCompleted(ctx.Context, id, completed)
			if err != nil {
				return errors.Wrapf(err, "could not update task '%s'", id)
			}

			if err := printTasks(ctx.App.Writer, output, []model.Task{task}, time.Now()); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	}
}

func getCommand() *cli.Command {
	flags := common.WithCommonFlags()

	return &cli.Command{
		Name:      "get",
		Usage:     "Show a task",
		ArgsUsage: "<id>",
		Flags:     flags,
		Before:    common.InitConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			output, err := common.GetOutput(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			id, err := getTaskID(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			taskManager, release, err := common.GetTaskManager(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			defer release()

			task, err := taskManager.GetTask(ctx.Context, id)
			if err != nil {
				return errors.Wrapf(err, "could not find task '%s'", id)
			}

			if err := printTasks(ctx.App.Writer, output, []model.Task{task}, time.Now()); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	flags := common.WithCommonFlags()

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a task",
		ArgsUsage: "<id>",
		Flags:     flags,
		Before:    common.InitConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			id, err := getTaskID(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			taskManager, release, err := common.GetTaskManager(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			defer release()

			text, err := taskManager.DeleteTask(ctx.Context, id)
			if err != nil {
				return errors.Wrapf(err, "could not delete task '%s'", id)
			}

			fmt.Fprintf(ctx.App.Writer, "Task \"%s\" deleted.\n", text)

			return nil
		},
	}
}

func clearCommand() *cli.Command {
	flags := common.WithCommonFlags(
		&cli.StringFlag{
			Name:    paramChannel,
			Aliases: []string{"c"},
			Usage:   "Clear the completed tasks of this channel",
		},
		&cli.StringFlag{
			Name:    paramUser,
			Aliases: []string{"u"},
			Usage:   "Clear the completed tasks of this user",
		},
	)

	return &cli.Command{
		Name:   "clear",
		Usage:  "Delete the completed tasks of a channel or of a user",
		Flags:  flags,
		Before: common.InitConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			var scope service.Scope

			switch {
			case ctx.String(paramChannel) != "":
				scope = service.ChannelScope(model.ChannelID(ctx.String(paramChannel)))
			case ctx.String(paramUser) != "":
				scope = service.UserScope(model.UserID(ctx.String(paramUser)))
			default:
				return errors.Errorf("either --%s or --%s is required", paramChannel, paramUser)
			}

			taskManager, release, err := common.GetTaskManager(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			defer release()

			removed, err := taskManager.ClearCompleted(ctx.Context, scope)
			if err != nil {
				return errors.Wrapf(err, "could not clear completed tasks of %s", scope)
			}

			fmt.Fprintf(ctx.App.Writer, "Removed %d completed task(s).\n", removed)

			return nil
		},
	}
}

func getTaskID(ctx *cli.Context) (model.TaskID, error) {
	id := strings.TrimSpace(ctx.Args().First())
	if id == "" {
		return "", errors.New("task id argument is required")
	}

	return model.TaskID(id), nil
}
