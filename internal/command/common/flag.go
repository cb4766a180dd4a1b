package common

import (
	"context"

	"github.com/bornholm/todo/internal/config"
	"github.com/bornholm/todo/internal/core/service"
	"github.com/bornholm/todo/internal/setup"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"

	// Task store adapters
	_ "github.com/bornholm/todo/internal/adapter/gorm"
	_ "github.com/bornholm/todo/internal/adapter/memory"
	_ "github.com/bornholm/todo/internal/adapter/mongo"
)

const (
	ParamConfig = "config"
	ParamStore  = "store"
	ParamOutput = "output"

	OutputText = "text"
	OutputYAML = "yaml"
)

var (
	flagStore = altsrc.NewStringFlag(&cli.StringFlag{
		Name:     ParamStore,
		Aliases:  []string{"s"},
		EnvVars:  []string{"TODO_STORAGE_URI"},
		Usage:    "Task store URI (mongodb://, mongodb+srv://, sqlite://, memory://)",
		Required: true,
	})
	flagOutput = altsrc.NewStringFlag(&cli.StringFlag{
		Name:    ParamOutput,
		Aliases: []string{"o"},
		Value:   OutputText,
		Usage:   "Output format ('text' or 'yaml')",
	})
)

func WithCommonFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		flagStore,
		flagOutput,
	}, flags...)
}

// InitConfigSource loads flag values from the yaml file given with the --config flag, if any.
func InitConfigSource(flags []cli.Flag) cli.BeforeFunc {
	return altsrc.InitInputSourceWithContext(flags, altsrc.NewYamlSourceFromFlagFunc(ParamConfig))
}

// GetTaskManager opens the task store designated by the --store flag.
// The returned function releases the store.
func GetTaskManager(ctx *cli.Context) (*service.TaskManager, func(), error) {
	conf := &config.Config{
		Storage: config.Storage{
			URI: ctx.String(ParamStore),
		},
	}

	taskManager, err := setup.NewTaskManagerFromConfig(ctx.Context, conf)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	release := func() {
		setup.CloseTaskStore(context.WithoutCancel(ctx.Context), conf)
	}

	return taskManager, release, nil
}

func GetOutput(ctx *cli.Context) (string, error) {
	output := ctx.String(ParamOutput)

	switch output {
	case OutputText, OutputYAML:
		return output, nil
	default:
		return "", errors.Errorf("unknown output format '%s'", output)
	}
}
