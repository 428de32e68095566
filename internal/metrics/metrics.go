// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// TypeNone labels negative predictions, which carry no type.
const TypeNone = "none"

// Metrics groups the collectors.
type Metrics struct {
	Normalizations  prometheus.Counter
	Placeholders    prometheus.Counter
	Predictions     *prometheus.CounterVec
	PredictFailures prometheus.Counter
	ModelLoads      *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Normalizations: factory.NewCounter(prometheus.CounterOpts{
			Name: "cb_normalizations_total",
			Help: "Total texts run through the cleaning pipeline",
		}),
		Placeholders: factory.NewCounter(prometheus.CounterOpts{
			Name: "cb_placeholders_total",
			Help: "Total cleaned cells replaced by the placeholder",
		}),
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cb_predictions_total",
			Help: "Total predictions by bullying type",
		}, []string{"type"}),
		PredictFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cb_prediction_failures_total",
			Help: "Total predictions that returned an error",
		}),
		ModelLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cb_model_loads_total",
			Help: "Total model artifact loads by model and result",
		}, []string{"model", "result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cb_request_duration_seconds",
			Help:    "HTTP request duration by path",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"path"}),
	}
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns collectors registered with the global registry, created once.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// ObservePrediction counts a prediction under its type, or TypeNone.
func (m *Metrics) ObservePrediction(typ *string, err error) {
	if err != nil {
		m.PredictFailures.Inc()
		return
	}
	label := TypeNone
	if typ != nil {
		label = *typ
	}
	m.Predictions.WithLabelValues(label).Inc()
}

// ObserveModelLoad counts a model load attempt.
func (m *Metrics) ObserveModelLoad(model string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.ModelLoads.WithLabelValues(model, result).Inc()
}

// ObserveRequest records how long a request to path took.
func (m *Metrics) ObserveRequest(path string, started time.Time) {
	m.RequestDuration.WithLabelValues(path).Observe(time.Since(started).Seconds())
}
