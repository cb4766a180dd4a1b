package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTotalCommands     = "total_commands"
	NameTotalInteractions = "total_interactions"
	NameStoreRetries      = "store_retries_total"
	LabelCommand          = "command"
	LabelAction           = "action"
	LabelStore            = "store"
)

var TotalCommands = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalCommands,
		Help:      "Total slash commands received",
		Namespace: Namespace,
	},
	[]string{LabelCommand},
)

var TotalInteractions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalInteractions,
		Help:      "Total home tab interactions received",
		Namespace: Namespace,
	},
	[]string{LabelAction},
)

var StoreRetries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameStoreRetries,
		Help:      "Total store operations retried after a transient failure",
		Namespace: Namespace,
	},
	[]string{LabelStore},
)
