package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdstack",
			Subsystem: "events",
			Name:      "total",
			Help:      "Events consumed from the shared queue.",
		},
		[]string{"kind"},
	)
	queueDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdstack",
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped because the shared queue was full.",
		},
	)
	rxResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdstack",
			Subsystem: "rx",
			Name:      "total",
			Help:      "Receive completions by transfer result.",
		},
		[]string{"result"},
	)
	decodeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdstack",
			Subsystem: "rx",
			Name:      "decode_failures_total",
			Help:      "Received messages discarded as undecodable.",
		},
	)
	rxArmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdstack",
			Subsystem: "rx",
			Name:      "armed_total",
			Help:      "Receive requests issued to the controller driver.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(events, queueDropped, rxResults, decodeFailures, rxArmed)
	})
}

func RecordEvent(kind string) {
	RegisterMetrics()
	events.WithLabelValues(kind).Inc()
}

func RecordQueueDrop() {
	RegisterMetrics()
	queueDropped.Inc()
}

func RecordRx(result string) {
	RegisterMetrics()
	rxResults.WithLabelValues(result).Inc()
}

func RecordDecodeFailure() {
	RegisterMetrics()
	decodeFailures.Inc()
}

func RecordRxArmed() {
	RegisterMetrics()
	rxArmed.Inc()
}
