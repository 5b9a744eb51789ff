package ddsreader

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// outcome labels the result of a TryTakeOne call for the Metrics.Takes
// counter.
const (
	outcomeDelivered = "delivered"
	outcomeEmpty     = "empty"
	outcomeError     = "error"
)

var latencyBucketsMillis = []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 64, 128, 256}

// Metrics bundles the Prometheus instrumentation for one reader: a take
// counter labelled by outcome, a dispose counter, a status-event counter
// labelled by kind, a latency histogram, and an error counter labelled by
// kind, all optionally registered against the default registry.
type Metrics struct {
	Takes        *prometheus.CounterVec
	Disposes     prometheus.Counter
	StatusEvents *prometheus.CounterVec
	Latency      *prometheus.HistogramVec
	Errors       *prometheus.CounterVec
}

// NewMetrics builds and, if enableRegister is true, registers the
// reader's metrics under the given topic name, with every character that
// is not a letter, digit or underscore replaced by '_' (Prometheus metric
// names cannot contain e.g. '/'). Registration failures are logged and
// otherwise ignored.
func NewMetrics(topicName string, enableRegister bool) *Metrics {
	metricTopic := strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, topicName)
	m := &Metrics{
		Takes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("ddsreader_%s_takes_total", metricTopic),
			Help: "try_take_one outcomes: delivered, empty, error.",
		}, []string{"outcome"}),
		Disposes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("ddsreader_%s_disposes_total", metricTopic),
			Help: "Number of dispose samples delivered.",
		}),
		StatusEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("ddsreader_%s_status_events_total", metricTopic),
			Help: "DataReaderStatus events received, by kind.",
		}, []string{"kind"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    fmt.Sprintf("ddsreader_%s_take_latency_ms", metricTopic),
			Help:    "try_take_one latency in milliseconds.",
			Buckets: latencyBucketsMillis,
		}, []string{"outcome"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("ddsreader_%s_errors_total", metricTopic),
			Help: "Errors encountered by kind.",
		}, []string{"kind"}),
	}
	if enableRegister {
		for _, c := range []prometheus.Collector{m.Takes, m.Disposes, m.StatusEvents, m.Latency, m.Errors} {
			if err := prometheus.Register(c); err != nil {
				log.Warn().Err(err).Str("topic", topicName).Msg("ddsreader: failed to register metric")
			}
		}
	}
	return m
}

// recordTake records one TryTakeOne call's outcome and latency since
// startedAt.
func (m *Metrics) recordTake(outcome string, startedAt time.Time) {
	if m == nil {
		return
	}
	elapsedMs := float64(time.Since(startedAt).Microseconds()) / 1000.0
	m.Takes.WithLabelValues(outcome).Inc()
	m.Latency.WithLabelValues(outcome).Observe(elapsedMs)
}

func (m *Metrics) recordDispose() {
	if m == nil {
		return
	}
	m.Disposes.Inc()
}

func (m *Metrics) recordError(kind Kind) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) recordStatusEvent(kind string) {
	if m == nil {
		return
	}
	m.StatusEvents.WithLabelValues(kind).Inc()
}

// Unregister removes this reader's metrics from the default registry.
// Safe to call on a nil Metrics.
func (m *Metrics) Unregister() {
	if m == nil {
		return
	}
	prometheus.Unregister(m.Takes)
	prometheus.Unregister(m.Disposes)
	prometheus.Unregister(m.StatusEvents)
	prometheus.Unregister(m.Latency)
	prometheus.Unregister(m.Errors)
}
