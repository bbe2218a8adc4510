package metrics

import "github.com/prometheus/client_golang/prometheus"

// ErrorMetrics counts errors returned to HTTP clients.
type ErrorMetrics struct {
	ErrorsTotal *prometheus.CounterVec
}

func NewErrorMetrics(reg prometheus.Registerer) *ErrorMetrics {
	m := &ErrorMetrics{
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors returned to clients, by type and status code.",
		}, []string{"type", "status_code"}),
	}

	reg.MustRegister(m.ErrorsTotal)
	return m
}
