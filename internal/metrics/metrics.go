// Package metrics provides the Prometheus metrics of the emotion API.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded per modality.
const (
	OutcomeOK      = "ok"
	OutcomeNoFace  = "no_face"
	OutcomeDropped = "dropped"
	OutcomeError   = "error"
)

type Metrics struct {
	Inferences         *prometheus.CounterVec
	ClassifierLoads    *prometheus.CounterVec
	ClassifierLoadTime prometheus.Histogram
	RequestDurations   *prometheus.HistogramVec
	registry           *prometheus.Registry
}

// New registers all metrics on registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		Inferences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emotion_inferences_total",
			Help: "Emotion inferences by modality and outcome",
		}, []string{"modality", "outcome"}),
		ClassifierLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emotion_text_classifier_loads_total",
			Help: "Text classifier load attempts by result",
		}, []string{"result"}),
		ClassifierLoadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "emotion_text_classifier_load_seconds",
			Help:    "Time spent loading the text classifier",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		RequestDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emotion_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "route", "status"}),
	}
	for _, c := range []prometheus.Collector{m.Inferences, m.ClassifierLoads, m.ClassifierLoadTime, m.RequestDurations} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register emotion metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) ObserveInference(modality, outcome string) {
	m.Inferences.WithLabelValues(modality, outcome).Inc()
}

// ObserveLoad matches registry.Registry.OnLoad.
func (m *Metrics) ObserveLoad(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ClassifierLoads.WithLabelValues(result).Inc()
	m.ClassifierLoadTime.Observe(d.Seconds())
}

// Middleware records request latency keyed by the matched route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDurations.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
