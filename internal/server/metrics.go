package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "radiocode"

type Metrics struct {
	decodeTotal    *prometheus.CounterVec
	decodeDuration *prometheus.HistogramVec
}

// NewMetrics creates the decode metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decodeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "decode_requests_total",
				Help:      "Count of decode requests by manufacturer and outcome.",
			},
			[]string{"make", "outcome"},
		),
		decodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "decode_duration_seconds",
				Help:      "Time spent computing unlock codes.",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"make"},
		),
	}
	reg.MustRegister(m.decodeTotal, m.decodeDuration)
	return m
}

func (m *Metrics) observeDecode(manufacturer, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.decodeTotal.WithLabelValues(manufacturer, outcome).Inc()
	m.decodeDuration.WithLabelValues(manufacturer).Observe(d.Seconds())
}
