package observer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dcshock/respipe/pipeline"
)

// LogObserver logs pipeline runs and steps. Run and step starts are logged at
// debug, successful completions at debug, failures at info and errors at warn.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver returns an Observer writing to l. With a nil l it writes to the
// logger carried by the run context (see pipeline.LoggerFrom).
func NewLogObserver(l *zap.Logger) *LogObserver {
	return &LogObserver{logger: l}
}

func (o *LogObserver) log(ctx context.Context) *zap.Logger {
	if o.logger != nil {
		return o.logger
	}
	return pipeline.LoggerFrom(ctx)
}

// BeforeRun implements pipeline.Observer.
func (o *LogObserver) BeforeRun(ctx context.Context, runID, name string) error {
	o.log(ctx).Debug("pipeline run started",
		zap.String("run_id", runID),
		zap.String("pipeline_name", name),
	)
	return nil
}

// AfterRun implements pipeline.Observer.
func (o *LogObserver) AfterRun(ctx context.Context, runID, name string, ok bool, err error) error {
	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.String("pipeline_name", name),
		zap.String("outcome", outcome(ok, err)),
	}
	l := o.log(ctx)
	switch {
	case err != nil:
		l.Warn("pipeline run errored", append(fields, zap.Error(err))...)
	case !ok:
		l.Info("pipeline run failed", fields...)
	default:
		l.Debug("pipeline run succeeded", fields...)
	}
	return nil
}

// BeforeStep implements pipeline.Observer.
func (o *LogObserver) BeforeStep(ctx context.Context, runID string, step pipeline.StepInfo) error {
	o.log(ctx).Debug("step started",
		zap.String("run_id", runID),
		zap.Int("step_index", step.Index),
		zap.String("step", step.Name),
		zap.Stringer("kind", step.Kind),
	)
	return nil
}

// AfterStep implements pipeline.Observer.
func (o *LogObserver) AfterStep(ctx context.Context, runID string, step pipeline.StepInfo, ok bool, stepErr error, d time.Duration) error {
	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.Int("step_index", step.Index),
		zap.String("step", step.Name),
		zap.Stringer("kind", step.Kind),
		zap.String("outcome", outcome(ok, stepErr)),
		zap.Duration("duration", d),
	}
	l := o.log(ctx)
	switch {
	case stepErr != nil:
		l.Warn("step errored", append(fields, zap.Error(stepErr))...)
	case !ok:
		l.Info("step failed", fields...)
	default:
		l.Debug("step succeeded", fields...)
	}
	return nil
}
