package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics gerencia métricas das chamadas feitas à API Sentinela
type ClientMetrics struct {
	requestCounter     *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	activeRequests     *prometheus.GaugeVec
	errorsTotal        *prometheus.CounterVec
	uploadsTotal       *prometheus.CounterVec
	uploadBytes        *prometheus.SummaryVec
	circuitBreakerOpen *prometheus.GaugeVec
	cacheHitRatio      *prometheus.GaugeVec
}

var (
	// DefaultRegistry é o registro padrão para métricas
	DefaultRegistry = prometheus.NewRegistry()
	// DefaultRegisterer é o registrador padrão para métricas
	DefaultRegisterer = prometheus.WrapRegistererWith(nil, DefaultRegistry)
)

// NewClientMetrics cria e registra métricas do prometheus no registrador
// informado; nil usa o registro padrão do pacote
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		reg = DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &ClientMetrics{
		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinela_client_requests_total",
				Help: "Total number of API requests by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status"},
		),

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinela_client_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "method"},
		),

		activeRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinela_client_active_requests",
				Help: "Number of in-flight API requests",
			},
			[]string{"endpoint", "method"},
		),

		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinela_client_errors_total",
				Help: "Total number of request errors by type",
			},
			[]string{"endpoint", "method", "error_type"},
		),

		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinela_client_uploads_total",
				Help: "Total number of binary uploads by category and outcome",
			},
			[]string{"category", "status"},
		),

		uploadBytes: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "sentinela_client_upload_size_bytes",
				Help:       "Uploaded binary size in bytes",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"category"},
		),

		circuitBreakerOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinela_client_circuit_breaker_open",
				Help: "Indicates if the API circuit breaker is open (1) or closed (0)",
			},
			[]string{"host"},
		),

		cacheHitRatio: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinela_client_cache_hit_ratio",
				Help: "Cache hit ratio (0.0 to 1.0)",
			},
			[]string{"cache_type"},
		),
	}
}

// RequestStarted registra o início de uma requisição
func (m *ClientMetrics) RequestStarted(endpoint, method string) {
	m.activeRequests.WithLabelValues(endpoint, method).Inc()
}

// RequestCompleted registra a conclusão de uma requisição
func (m *ClientMetrics) RequestCompleted(endpoint, method, status string, duration time.Duration) {
	m.requestCounter.WithLabelValues(endpoint, method, status).Inc()
	m.requestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
	m.activeRequests.WithLabelValues(endpoint, method).Dec()
}

// RequestFailed registra uma falha sem resposta do servidor
func (m *ClientMetrics) RequestFailed(endpoint, method, errorType string) {
	m.errorsTotal.WithLabelValues(endpoint, method, errorType).Inc()
	m.activeRequests.WithLabelValues(endpoint, method).Dec()
}

// UploadCompleted registra o resultado de um upload de binário
func (m *ClientMetrics) UploadCompleted(category, status string, size int) {
	m.uploadsTotal.WithLabelValues(category, status).Inc()
	if size > 0 {
		m.uploadBytes.WithLabelValues(category).Observe(float64(size))
	}
}

// SetCircuitBreakerState registra o estado do circuit breaker
func (m *ClientMetrics) SetCircuitBreakerState(host string, open bool) {
	value := 0.0
	if open {
		value = 1.0
	}
	m.circuitBreakerOpen.WithLabelValues(host).Set(value)
}

// UpdateCacheHitRatio atualiza a taxa de acerto do cache
func (m *ClientMetrics) UpdateCacheHitRatio(cacheType string, ratio float64) {
	m.cacheHitRatio.WithLabelValues(cacheType).Set(ratio)
}
