package gd

import (
	"fmt"
	"time"

	"github.com/cwbudde/numopt/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

// TraceRecorder appends one store.TraceEntry per iteration to a run trace.
type TraceRecorder struct {
	writer *store.TraceWriter

	// WithParams includes the parameter vector in every entry
	WithParams bool
}

// NewTraceRecorder records into w. The caller closes w after training.
func NewTraceRecorder(w *store.TraceWriter, withParams bool) *TraceRecorder {
	return &TraceRecorder{writer: w, WithParams: withParams}
}

// OnIteration writes the entry for state.
func (r *TraceRecorder) OnIteration(state *TrainerState) error {
	entry := store.TraceEntry{
		Iteration:   state.Iteration,
		Value:       state.Value,
		GradNormInf: state.GradNormInf,
		Timestamp:   time.Now(),
	}
	if state.Config != nil {
		entry.LearningRate = state.Config.LearningRate
	}
	if r.WithParams {
		entry.Params = append([]float64(nil), state.X...)
	}
	return r.writer.Write(entry)
}

// MetricsRecorder exports the trainer progress as Prometheus metrics.
type MetricsRecorder struct {
	value        prometheus.Gauge
	gradNorm     prometheus.Gauge
	learningRate prometheus.Gauge
	iterations   prometheus.Counter
}

// NewMetricsRecorder creates the gd metrics and registers them on reg.
func NewMetricsRecorder(reg prometheus.Registerer) (*MetricsRecorder, error) {
	m := &MetricsRecorder{
		value: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "numopt_gd_value",
			Help: "Objective value at the latest iteration",
		}),
		gradNorm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "numopt_gd_grad_norm_inf",
			Help: "Gradient infinity norm at the latest iteration",
		}),
		learningRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "numopt_gd_learning_rate",
			Help: "Learning rate in effect at the latest iteration",
		}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "numopt_gd_iterations_total",
			Help: "Number of trainer iterations observed",
		}),
	}
	for _, c := range []prometheus.Collector{m.value, m.gradNorm, m.learningRate, m.iterations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register gd metrics: %w", err)
		}
	}
	return m, nil
}

// OnIteration updates the metrics from state.
func (m *MetricsRecorder) OnIteration(state *TrainerState) error {
	m.value.Set(state.Value)
	m.gradNorm.Set(state.GradNormInf)
	if state.Config != nil {
		m.learningRate.Set(state.Config.LearningRate)
	}
	m.iterations.Inc()
	return nil
}
