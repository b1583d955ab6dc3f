package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Command metrics.
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quartermaster_commands_total",
			Help: "Commands processed, by command name and outcome.",
		},
		[]string{"command", "outcome"},
	)
)

// Shop metrics.
var (
	ShopTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quartermaster_shop_transactions_total",
			Help: "Shop transactions, by kind (buy, sell) and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	ItemsTraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quartermaster_items_traded_total",
			Help: "Item units bought or sold, by kind, item type and quality.",
		},
		[]string{"kind", "item_type", "quality"},
	)

	GoldFlow = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quartermaster_gold_total",
			Help: "Gold moved through the shop, by direction (spent, earned).",
		},
		[]string{"direction"},
	)
)

// Session metrics.
var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quartermaster_sessions_active",
			Help: "Currently open player sessions.",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quartermaster_http_requests_total",
			Help: "HTTP API requests, by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)
)
