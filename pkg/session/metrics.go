package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("gokanscore.session")

var (
	// sessionsBuilt counts sessions by backend.
	sessionsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gokanscore",
		Subsystem: "session",
		Name:      "built_total",
		Help:      "Sessions built, by backend",
	}, []string{"backend"})

	// factOperations counts working memory changes by backend and operation.
	factOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gokanscore",
		Subsystem: "session",
		Name:      "fact_operations_total",
		Help:      "Fact inserts, updates and retracts, by backend and operation",
	}, []string{"backend", "operation"})

	// calculations counts score calculations by backend and result.
	calculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gokanscore",
		Subsystem: "session",
		Name:      "score_calculations_total",
		Help:      "Score calculations, by backend and result",
	}, []string{"backend", "result"})

	// calculationDuration tracks score calculation latency.
	calculationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gokanscore",
		Subsystem: "session",
		Name:      "score_calculation_duration_seconds",
		Help:      "Score calculation duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16), // 10µs to ~330ms
	}, []string{"backend"})
)
