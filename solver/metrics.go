package solver

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "gopoisson"

type Metrics struct {
	Solves          *prometheus.CounterVec
	Iterations      *prometheus.CounterVec
	Residual        *prometheus.GaugeVec
	OperatorApplies prometheus.Counter
}

// NewMetrics registers the solver metrics with reg.
func NewMetrics(reg prometheus.Registerer) (m *Metrics) {
	m = &Metrics{
		Solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cg",
			Name:      "solves_total",
			Help:      "Completed CG solves by field and final status.",
		}, []string{"field", "status"}),
		Iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cg",
			Name:      "iterations_total",
			Help:      "CG iterations performed by field.",
		}, []string{"field"}),
		Residual: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "cg",
			Name:      "relative_residual",
			Help:      "Relative residual at the end of the last solve by field.",
		}, []string{"field"}),
		OperatorApplies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cg",
			Name:      "operator_applications_total",
			Help:      "Global operator applications made by the solver.",
		}),
	}
	reg.MustRegister(m.Solves, m.Iterations, m.Residual, m.OperatorApplies)
	return
}

func (m *Metrics) observe(field string, res Result, applies int) {
	if m == nil {
		return
	}
	m.Solves.WithLabelValues(field, res.Status.String()).Inc()
	m.Iterations.WithLabelValues(field).Add(float64(res.Iterations))
	m.Residual.WithLabelValues(field).Set(res.Tolerance)
	m.OperatorApplies.Add(float64(applies))
}
