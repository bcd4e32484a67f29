package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ValidationMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_messages_total",
			Help: "Total number of messages checked against the schema (count)",
		},
		[]string{"status"},
	)

	ValidationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "validation_duration_ms",
			Help:    "Schema validation duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"status"},
	)

	SignalMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_messages_total",
			Help: "Total number of mean reversion signals computed, by classification (count)",
		},
		[]string{"signal"},
	)

	SignalComputeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signal_compute_duration_ms",
			Help:    "Signal computation duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"status"},
	)

	ValidationActiveRules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "validation_active_rules",
			Help: "Number of compiled schema rules (count)",
		},
	)

	IdempotencyMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idempotency_messages_total",
			Help: "Total number of messages checked by the idempotency gate (count)",
		},
		[]string{"status"},
	)

	IdempotencyCheckDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "idempotency_check_duration_ms",
			Help:    "Idempotency check duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"status"},
	)

	SeenCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "idempotency_seen_cache_size",
			Help: "Approximate size of the seen-message cache (count)",
		},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of fallback decisions taken on errors (count)",
		},
		[]string{"component", "action", "reason"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)
)

func RegisterValidationMetrics() {
	prometheus.MustRegister(ValidationMessagesTotal)
	prometheus.MustRegister(ValidationDuration)
	prometheus.MustRegister(ValidationActiveRules)
}

func RegisterSignalMetrics() {
	prometheus.MustRegister(SignalMessagesTotal)
	prometheus.MustRegister(SignalComputeDuration)
}

func RegisterIdempotencyMetrics() {
	prometheus.MustRegister(IdempotencyMessagesTotal)
	prometheus.MustRegister(IdempotencyCheckDuration)
	prometheus.MustRegister(SeenCacheSize)
	prometheus.MustRegister(FallbackUsageTotal)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(DLQMessagesTotal)
	prometheus.MustRegister(KafkaMessagesReadTotal)
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
}

func ObserveValidationDuration(duration time.Duration, status string) {
	ValidationDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveSignalComputeDuration(duration time.Duration, status string) {
	SignalComputeDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveIdempotencyDuration(duration time.Duration, status string) {
	IdempotencyCheckDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func SetValidationActiveRules(count int) {
	ValidationActiveRules.Set(float64(count))
}

func SetSeenCacheSize(size int) {
	SeenCacheSize.Set(float64(size))
}
