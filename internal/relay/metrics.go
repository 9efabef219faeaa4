package relay

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthrelay",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of forwarded prediction requests by outcome",
		},
		[]string{"outcome"},
	)

	upstreamRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "healthrelay",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of upstream prediction calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(upstreamRequestsTotal, upstreamRequestDuration)
}

func observeUpstream(outcome string, d time.Duration) {
	upstreamRequestsTotal.WithLabelValues(outcome).Inc()
	upstreamRequestDuration.Observe(d.Seconds())
}
