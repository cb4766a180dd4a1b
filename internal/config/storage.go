package config

type Storage struct {
	// URI of the task store, e.g. mongodb://localhost:27017/slack-todo,
	// sqlite:///var/lib/todo/data.sqlite or memory://
	URI string `env:"URI,expand,notEmpty"`
}
