package pipeline

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	submissions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pypln_pipeline_submissions_total",
				Help: "Pipeline jobs handed to the broker.",
			},
			[]string{"pipeline", "status"},
		),
	}
	if err := reg.Register(m.submissions); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.submissions = already.ExistingCollector.(*prometheus.CounterVec)
	}
	return m, nil
}

func (m *Metrics) observe(pipeline string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.submissions.WithLabelValues(pipeline, status).Inc()
}
