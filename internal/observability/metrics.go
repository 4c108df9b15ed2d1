package observability

import (
	"warbler/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// OperationsTotal counts core operations by component, operation and result code.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_operations_total",
		Help: "Total number of core operations by outcome",
	}, []string{"component", "operation", "result"})

	// AuthenticationsTotal counts login attempts by outcome.
	AuthenticationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_authentications_total",
		Help: "Total number of authentication attempts",
	}, []string{"result"})
)

// RecordOperation increments OperationsTotal with "ok" or the error's AppError code.
func RecordOperation(component, operation string, err error) {
	result := "ok"
	if err != nil {
		result = models.Code(err)
	}
	OperationsTotal.WithLabelValues(component, operation, result).Inc()
}
