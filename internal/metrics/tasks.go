package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTaskOperations = "task_operations_total"
	NameClearedTasks   = "cleared_tasks_total"
	LabelOperation     = "operation"
	LabelStatus        = "status"
)

const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusInvalid  = "invalid"
	StatusError    = "error"
)

var TaskOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTaskOperations,
		Help:      "Total task operations by kind and outcome",
		Namespace: Namespace,
	},
	[]string{LabelOperation, LabelStatus},
)

var ClearedTasks = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameClearedTasks,
		Help:      "Total completed tasks removed by clear operations",
		Namespace: Namespace,
	},
)
