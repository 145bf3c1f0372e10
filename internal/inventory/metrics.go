package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_reservations_total",
			Help: "Reserve/release operations by outcome",
		},
		[]string{"op", "outcome"},
	)

	txConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_tx_conflicts_total",
			Help: "Optimistic transaction retries caused by concurrent writers",
		},
	)
)

// ObserveConflict is wired as the remote store's conflict hook.
func ObserveConflict(path string) {
	txConflictsTotal.Inc()
}
