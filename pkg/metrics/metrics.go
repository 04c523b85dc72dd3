package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 購買結果標籤
const (
	OutcomeSold          = "sold"
	OutcomeInvalid       = "invalid"
	OutcomeUnknownTicket = "unknown_ticket"
	OutcomeConflict      = "conflict"
	OutcomeStoreError    = "store_error"
)

var (
	PurchaseAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "raffle_purchase_attempts_total",
		Help: "Purchase attempts grouped by outcome.",
	}, []string{"outcome"})

	TicketsSold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raffle_tickets_sold_total",
		Help: "Tickets sold since process start.",
	})

	PoolResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raffle_pool_resets_total",
		Help: "Administrative pool resets.",
	})

	SaleEventsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raffle_sale_events_recorded_total",
		Help: "Sale events written to the journal by the worker.",
	})
)

// Handler 回傳 /metrics 用的 prometheus handler
func Handler() http.Handler {
	return promhttp.Handler()
}
