package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keycabinet_checkouts_total",
		Help: "Count of checkout attempts by result",
	}, []string{"result"})

	returns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keycabinet_returns_total",
		Help: "Count of return attempts by result",
	}, []string{"result"})
)

func RecordCheckout(result string) { checkouts.WithLabelValues(result).Inc() }
func RecordReturn(result string)   { returns.WithLabelValues(result).Inc() }
