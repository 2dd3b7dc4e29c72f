package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_checkouts_total",
		Help: "Checkouts by outcome (ok or the failure kind).",
	},
		[]string{"outcome"},
	)

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderflow_orders_created_total",
		Help: "Per-seller orders written by checkout.",
	})

	PartialCheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderflow_partial_checkouts_total",
		Help: "Checkouts that failed after at least one seller order was committed.",
	})

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_status_transitions_total",
		Help: "Order status transitions applied to the cache, by view and target status.",
	},
		[]string{"view", "status"},
	)

	OptimisticRollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderflow_optimistic_rollbacks_total",
		Help: "Optimistic cache updates rolled back after a ledger failure.",
	})

	ReturnTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_return_transitions_total",
		Help: "Return request transitions by target status.",
	},
		[]string{"status"},
	)

	NotificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_notification_failures_total",
		Help: "Fire-and-forget notifications that failed or were dropped.",
	},
		[]string{"kind"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	OrderCacheItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orderflow_order_cache_items",
		Help: "Current number of entries in the order cache, by view.",
	},
		[]string{"view"},
	)
)
