package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the cyclesense collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	estimates      *prometheus.CounterVec
	predictions    *prometheus.CounterVec
	reminders      *prometheus.CounterVec
	insights       *prometheus.CounterVec
	historySamples prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		estimates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cyclesense_estimates_total",
			Help: "Fertility estimates computed, by current phase",
		}, []string{"phase"}),
		predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cyclesense_predictions_total",
			Help: "Cycle predictions computed, by confidence label",
		}, []string{"confidence"}),
		reminders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cyclesense_reminders_sent_total",
			Help: "Reminders delivered, by kind",
		}, []string{"kind"}),
		insights: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cyclesense_insights_requests_total",
			Help: "Health insight requests, by outcome",
		}, []string{"outcome"}),
		historySamples: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cyclesense_prediction_history_samples",
			Help:    "Observed cycle lengths used per prediction",
			Buckets: []float64{0, 1, 2, 3, 6, 9, 12},
		}),
	}
}

func (m *Metrics) ObserveEstimate(phase string) {
	if m == nil {
		return
	}
	m.estimates.WithLabelValues(phase).Inc()
}

func (m *Metrics) ObservePrediction(confidence string, samples int) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(confidence).Inc()
	m.historySamples.Observe(float64(samples))
}

func (m *Metrics) ObserveReminder(kind string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveInsights(outcome string) {
	if m == nil {
		return
	}
	m.insights.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
