package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credits/internal/core/domain"
)

const namespace = "credits"

// PrometheusCollector implementa domain.MetricsCollector com um registry próprio
type PrometheusCollector struct {
	registry         *prometheus.Registry
	operationCounter *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	businessMetrics  *prometheus.GaugeVec
	errorCounter     *prometheus.CounterVec
}

func NewPrometheusCollector() *PrometheusCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &PrometheusCollector{
		registry: registry,

		// Operações por resultado (ok, not_found, rejected, conflict)
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of account operations by outcome",
			},
			[]string{"operation", "outcome"},
		),

		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Account operation duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms a ~16s
			},
			[]string{"operation"},
		),

		// Valores de negócio: limite concedido, valor movimentado
		businessMetrics: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "business_metrics",
				Help:      "Last observed business value by product",
			},
			[]string{"metric_name", "product", "kind"},
		),

		errorCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors by type",
			},
			[]string{"error_type"},
		),
	}
}

func (c *PrometheusCollector) IncrementOperationCounter(operation string, outcome domain.Outcome) {
	c.operationCounter.WithLabelValues(operation, string(outcome)).Inc()
}

func (c *PrometheusCollector) RecordOperationLatency(operation string, duration float64) {
	c.operationLatency.WithLabelValues(operation).Observe(duration)
}

// RecordBusinessMetric usa apenas os labels product e kind; os demais são ignorados
// para manter a cardinalidade baixa
func (c *PrometheusCollector) RecordBusinessMetric(metricName string, value float64, labels map[string]string) {
	c.businessMetrics.WithLabelValues(metricName, labels["product"], labels["kind"]).Set(value)
}

func (c *PrometheusCollector) IncrementErrorCounter(errorType string) {
	c.errorCounter.WithLabelValues(errorType).Inc()
}

func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler expõe o registry no formato de exposição do Prometheus
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
