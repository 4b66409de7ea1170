package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "loadgen",
		Subsystem: "dispatcher",
		Name:      "in_flight_invocations",
		Help:      "Current number of in-flight invocations.",
	})

	invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loadgen",
		Subsystem: "dispatcher",
		Name:      "invocations_total",
		Help:      "Total number of completed invocations.",
	}, []string{"batch", "outcome"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "loadgen",
		Subsystem: "dispatcher",
		Name:      "invocation_duration",
		Help:      "Invocation latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"batch"})
)
