package observer

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dcshock/respipe/pipeline"
)

// MetricsObserver records Prometheus metrics for pipeline runs:
//
//	<namespace>_runs_total{pipeline,outcome}
//	<namespace>_steps_total{step,kind,outcome}
//	<namespace>_step_duration_seconds{step}
type MetricsObserver struct {
	runsTotal    *prometheus.CounterVec
	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

// NewMetricsObserver creates the collectors and registers them on reg
// (prometheus.DefaultRegisterer if nil). namespace defaults to "respipe".
func NewMetricsObserver(namespace string, reg prometheus.Registerer) (*MetricsObserver, error) {
	if namespace == "" {
		namespace = "respipe"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &MetricsObserver{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of pipeline runs by outcome",
			},
			[]string{"pipeline", "outcome"},
		),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Total number of executed pipeline steps by outcome",
			},
			[]string{"step", "kind", "outcome"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Pipeline step duration in seconds",
				Buckets: []float64{
					.0001, .0005, .001, .005, .01,
					.05, .1, .5, 1, 5,
				},
			},
			[]string{"step"},
		),
	}

	for _, c := range []prometheus.Collector{m.runsTotal, m.stepsTotal, m.stepDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// BeforeRun implements pipeline.Observer.
func (m *MetricsObserver) BeforeRun(ctx context.Context, runID, name string) error {
	return nil
}

// AfterRun implements pipeline.Observer.
func (m *MetricsObserver) AfterRun(ctx context.Context, runID, name string, ok bool, err error) error {
	m.runsTotal.WithLabelValues(name, outcome(ok, err)).Inc()
	return nil
}

// BeforeStep implements pipeline.Observer.
func (m *MetricsObserver) BeforeStep(ctx context.Context, runID string, step pipeline.StepInfo) error {
	return nil
}

// AfterStep implements pipeline.Observer.
func (m *MetricsObserver) AfterStep(ctx context.Context, runID string, step pipeline.StepInfo, ok bool, stepErr error, d time.Duration) error {
	m.stepsTotal.WithLabelValues(step.Name, step.Kind.String(), outcome(ok, stepErr)).Inc()
	m.stepDuration.WithLabelValues(step.Name).Observe(d.Seconds())
	return nil
}
