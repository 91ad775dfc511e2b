package server

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bookchat/internal/chat"
)

// Metrics are the chat transport's Prometheus collectors, registered on
// their own registry so several servers can coexist in one process.
type Metrics struct {
	Registry     *prometheus.Registry
	Turns        *prometheus.CounterVec
	TurnErrors   *prometheus.CounterVec
	TurnDuration prometheus.Histogram
	Sessions     prometheus.Gauge
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Turns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookchat_turns_total",
			Help: "Dialogue turns handled, by the step the turn started in",
		}, []string{"step"}),
		TurnErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookchat_turn_errors_total",
			Help: "Turns that did not advance the dialogue, by error kind",
		}, []string{"kind"}),
		TurnDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookchat_turn_duration_seconds",
			Help:    "Time spent handling one dialogue turn",
			Buckets: prometheus.DefBuckets,
		}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "bookchat_sessions",
			Help: "Conversations currently held in the session store",
		}),
	}
}

func (m *Metrics) observe(reply chat.Reply, seconds float64) {
	m.Turns.WithLabelValues(string(reply.From)).Inc()
	m.TurnDuration.Observe(seconds)
	if kind := errorKind(reply.Err); kind != "" {
		m.TurnErrors.WithLabelValues(kind).Inc()
	}
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, chat.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, chat.ErrEmptyResult):
		return "empty_result"
	case errors.Is(err, chat.ErrRecommendation):
		return "recommendation"
	default:
		return "other"
	}
}
