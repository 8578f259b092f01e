// Package metrics defines the Prometheus collectors for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the operational counters for the poll scheduler and store.
type Metrics struct {
	PollCycles    prometheus.Counter
	FetchErrors   prometheus.Counter
	DropsDetected prometheus.Counter
	ItemsSkipped  prometheus.Counter
	WatchlistSize prometheus.Gauge
}

// New registers all collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PollCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "dealbot_poll_cycles_total",
			Help: "Number of completed price poll cycles.",
		}),
		FetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "dealbot_fetch_errors_total",
			Help: "Number of failed price fetch batches.",
		}),
		DropsDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "dealbot_price_drops_total",
			Help: "Number of price drops detected and announced.",
		}),
		ItemsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "dealbot_items_skipped_total",
			Help: "Number of watched items skipped in a cycle because the API returned no data for them.",
		}),
		WatchlistSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dealbot_watchlist_size",
			Help: "Current number of watched games.",
		}),
	}
}
