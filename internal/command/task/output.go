package task

import (
	"fmt"
	"io"
	"time"

	"github.com/bornholm/todo/internal/command/common"
	"github.com/bornholm/todo/internal/core/model"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type taskOutput struct {
	ID        string    `yaml:"id"`
	Text      string    `yaml:"text"`
	Completed bool      `yaml:"completed"`
	UserID    string    `yaml:"userId"`
	UserName  string    `yaml:"userName,omitempty"`
	ChannelID string    `yaml:"channelId"`
	CreatedAt time.Time `yaml:"createdAt"`
}

func printTasks(w io.Writer, format string, tasks []model.Task, now time.Time) error {
	switch format {
	case common.OutputYAML:
		outputs := make([]taskOutput, 0, len(tasks))
		for _, t := range tasks {
			outputs = append(outputs, toOutput(t))
		}

		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(outputs); err != nil {
			return errors.WithStack(err)
		}

		if err := encoder.Close(); err != nil {
			return errors.WithStack(err)
		}

		return nil

	default:
		if len(tasks) == 0 {
			if _, err := fmt.Fprintln(w, "No tasks."); err != nil {
				return errors.WithStack(err)
			}

			return nil
		}

		for _, t := range tasks {
			out := toOutput(t)

			status := " "
			if out.Completed {
				status = "x"
			}

			age := humanize.RelTime(out.CreatedAt, now, "ago", "from now")

			if _, err := fmt.Fprintf(w, "[%s] %s  %s  (%s in %s, %s)\n", status, out.ID, out.Text, out.UserID, out.ChannelID, age); err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	}
}

func toOutput(t model.Task) taskOutput {
	out := taskOutput{
		ID:        string(t.ID()),
		Text:      t.Text(),
		Completed: t.Completed(),
		ChannelID: string(t.ChannelID()),
		CreatedAt: t.CreatedAt(),
	}

	if owner := t.Owner(); owner != nil {
		out.UserID = string(owner.ID())
		out.UserName = owner.Name()
	}

	return out
}
