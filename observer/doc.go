// Package observer provides pipeline.Observer implementations for the
// pipeline package.
//
//   - LogObserver: writes each run and step outcome as structured zap logs.
//   - MetricsObserver: counts runs and steps by outcome and records step
//     durations as Prometheus metrics on a caller-supplied registerer.
//   - TraceObserver: opens an OpenTelemetry span per run and a child span per
//     step.
//
// Combine them with pipeline.MultiObserver:
//
//	metrics, err := observer.NewMetricsObserver("respipe", prometheus.DefaultRegisterer)
//	obs := pipeline.MultiObserver(observer.NewLogObserver(logger), metrics, observer.NewTraceObserver(nil))
//	ok, err := p.Execute(ctx, msg, acc, &pipeline.RunOptions{Observer: obs})
//
// Outcomes are "success" when the run or step succeeded, "failed" when it
// returned false and "error" when it returned an error.
package observer
