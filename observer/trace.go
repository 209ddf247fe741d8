package observer

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dcshock/respipe/pipeline"
)

const tracerName = "github.com/dcshock/respipe/observer"

type stepKey struct {
	runID string
	index int
}

// TraceObserver opens a span per pipeline run and a child span per step. Spans
// are tracked by run ID, so one observer can serve concurrent runs.
type TraceObserver struct {
	tracer trace.Tracer

	mu    sync.Mutex
	runs  map[string]trace.Span
	steps map[stepKey]trace.Span
}

// NewTraceObserver returns an Observer using tp (the global provider if nil).
func NewTraceObserver(tp trace.TracerProvider) *TraceObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TraceObserver{
		tracer: tp.Tracer(tracerName),
		runs:   make(map[string]trace.Span),
		steps:  make(map[stepKey]trace.Span),
	}
}

// BeforeRun implements pipeline.Observer. The run span is a child of any span in ctx.
func (o *TraceObserver) BeforeRun(ctx context.Context, runID, name string) error {
	_, span := o.tracer.Start(ctx, "pipeline "+name,
		trace.WithAttributes(
			attribute.String("pipeline.name", name),
			attribute.String("pipeline.run_id", runID),
		),
	)
	o.mu.Lock()
	o.runs[runID] = span
	o.mu.Unlock()
	return nil
}

// AfterRun implements pipeline.Observer. Step spans of the run that never saw
// AfterStep, because a hook returned an error in between, are ended here with
// the run's result so they are not leaked.
func (o *TraceObserver) AfterRun(ctx context.Context, runID, name string, ok bool, err error) error {
	o.mu.Lock()
	span, found := o.runs[runID]
	delete(o.runs, runID)
	var pending []trace.Span
	for key, s := range o.steps {
		if key.runID == runID {
			pending = append(pending, s)
			delete(o.steps, key)
		}
	}
	o.mu.Unlock()
	for _, s := range pending {
		end(s, false, err)
	}
	if !found {
		return nil
	}
	end(span, ok, err)
	return nil
}

// BeforeStep implements pipeline.Observer.
func (o *TraceObserver) BeforeStep(ctx context.Context, runID string, step pipeline.StepInfo) error {
	o.mu.Lock()
	parent, found := o.runs[runID]
	o.mu.Unlock()
	if found {
		ctx = trace.ContextWithSpan(ctx, parent)
	}
	_, span := o.tracer.Start(ctx, "step "+step.Name,
		trace.WithAttributes(
			attribute.String("pipeline.run_id", runID),
			attribute.Int("step.index", step.Index),
			attribute.String("step.name", step.Name),
			attribute.String("step.kind", step.Kind.String()),
		),
	)
	o.mu.Lock()
	o.steps[stepKey{runID, step.Index}] = span
	o.mu.Unlock()
	return nil
}

// AfterStep implements pipeline.Observer.
func (o *TraceObserver) AfterStep(ctx context.Context, runID string, step pipeline.StepInfo, ok bool, stepErr error, d time.Duration) error {
	key := stepKey{runID, step.Index}
	o.mu.Lock()
	span, found := o.steps[key]
	delete(o.steps, key)
	o.mu.Unlock()
	if !found {
		return nil
	}
	end(span, ok, stepErr)
	return nil
}

func end(span trace.Span, ok bool, err error) {
	span.SetAttributes(attribute.String("outcome", outcome(ok, err)))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !ok:
		span.SetStatus(codes.Error, "failed")
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
