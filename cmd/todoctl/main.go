package main

import (
	"github.com/bornholm/todo/internal/command"
	"github.com/bornholm/todo/internal/command/task"
)

func main() {
	command.Main(
		"todoctl", "a maintenance tool for the ToDo task store",
		task.Command(),
	)
}
