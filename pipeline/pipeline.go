package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dcshock/respipe/message"
)

// ErrConsumed is returned by Execute when the pipeline has already been executed.
// A pipeline drains its steps while running and cannot be re-run.
var ErrConsumed = errors.New("pipeline already executed")

// ErrNilMessage is returned by Execute when msg is nil.
var ErrNilMessage = errors.New("pipeline: nil message")

// Kind tags what a step does to the message.
type Kind int

const (
	// KindPredicate steps check the message and may fail.
	KindPredicate Kind = iota
	// KindAction steps observe the message and always succeed.
	KindAction
	// KindTransform steps replace (part of) the message and always succeed.
	KindTransform
)

func (k Kind) String() string {
	switch k {
	case KindPredicate:
		return "predicate"
	case KindAction:
		return "action"
	case KindTransform:
		return "transform"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// StepFunc is the uniform shape every step is stored as. It reports false for
// an ordinary failure (wrong content type, missing header, malformed JSON) and
// a non-nil error only for faults that must abort the run: codec failures,
// body read errors and cancellation.
type StepFunc[A any] func(ctx context.Context, msg *message.Message, acc A) (bool, error)

// Step is a single unit of pipeline work over a message and a caller-owned
// accumulator of type A. A step must not retain msg after it returns.
type Step[A any] struct {
	Name string
	Kind Kind
	Fn   StepFunc[A]
}

// Predicate returns a step that succeeds iff fn returns true.
func Predicate[A any](name string, fn func(ctx context.Context, msg *message.Message, acc A) (bool, error)) Step[A] {
	if fn == nil {
		panic("pipeline.Predicate: fn must not be nil")
	}
	return Step[A]{Name: name, Kind: KindPredicate, Fn: fn}
}

// Action returns a step that runs fn and always succeeds unless fn returns an error.
func Action[A any](name string, fn func(ctx context.Context, msg *message.Message, acc A) error) Step[A] {
	if fn == nil {
		panic("pipeline.Action: fn must not be nil")
	}
	return Step[A]{Name: name, Kind: KindAction, Fn: alwaysTrue(fn)}
}

// Transform is like Action but marks the step as one that mutates the message
// (e.g. replaces its content).
func Transform[A any](name string, fn func(ctx context.Context, msg *message.Message, acc A) error) Step[A] {
	if fn == nil {
		panic("pipeline.Transform: fn must not be nil")
	}
	return Step[A]{Name: name, Kind: KindTransform, Fn: alwaysTrue(fn)}
}

func alwaysTrue[A any](fn func(ctx context.Context, msg *message.Message, acc A) error) StepFunc[A] {
	return func(ctx context.Context, msg *message.Message, acc A) (bool, error) {
		if err := fn(ctx, msg, acc); err != nil {
			return false, err
		}
		return true, nil
	}
}

// StepInfo describes a step to an Observer.
type StepInfo struct {
	Index int
	Name  string
	Kind  Kind
}

// Observer provides pre/post hooks for a pipeline run and each of its steps,
// e.g. for logging, metrics or tracing. A hook returning an error aborts the run.
type Observer interface {
	BeforeRun(ctx context.Context, runID, name string) error
	AfterRun(ctx context.Context, runID, name string, ok bool, err error) error
	BeforeStep(ctx context.Context, runID string, step StepInfo) error
	AfterStep(ctx context.Context, runID string, step StepInfo, ok bool, stepErr error, duration time.Duration) error
}

// RunOptions configures Execute. A nil *RunOptions halts on the first failure,
// has no observer and logs nothing.
//
// If Observer is set and RunID is empty, a new UUID is generated for the run.
// StepTimeout, when positive, bounds each step with a context deadline.
type RunOptions struct {
	ContinueOnFailure bool
	Observer          Observer
	RunID             string
	StepTimeout       time.Duration
	Logger            *zap.Logger
}

// Unit is the accumulator of pipelines that collect results through closures
// instead of a caller-supplied record.
type Unit = struct{}

// Pipeline is an ordered, append-only list of steps executed once against one
// message. Steps run in the order they were added.
type Pipeline[A any] struct {
	Name     string
	steps    []Step[A]
	consumed bool
}

// New returns an empty pipeline whose steps receive an accumulator of type A.
func New[A any](name string) *Pipeline[A] {
	return &Pipeline[A]{Name: name}
}

// NewReader returns an empty pipeline without an accumulator.
func NewReader(name string) *Pipeline[Unit] {
	return New[Unit](name)
}

// Add appends steps and returns p for chaining.
func (p *Pipeline[A]) Add(steps ...Step[A]) *Pipeline[A] {
	for _, s := range steps {
		if s.Fn == nil {
			panic(fmt.Sprintf("pipeline %q: step %q has nil Fn", p.Name, s.Name))
		}
	}
	p.steps = append(p.steps, steps...)
	return p
}

// Len returns the number of steps not yet executed.
func (p *Pipeline[A]) Len() int { return len(p.steps) }

// Steps returns a copy of the pending steps.
func (p *Pipeline[A]) Steps() []Step[A] { return append([]Step[A](nil), p.steps...) }

// Execute runs the steps in order against msg, threading acc through each one.
// The result is the logical AND of every step result observed. Unless
// opts.ContinueOnFailure is set, the first failing step stops the run and the
// remaining steps are discarded. A step error stops the run immediately and is
// returned wrapped with the step index and name.
//
// Execute drains the pipeline: a second call returns ErrConsumed.
func (p *Pipeline[A]) Execute(ctx context.Context, msg *message.Message, acc A, opts *RunOptions) (bool, error) {
	if msg == nil {
		return false, ErrNilMessage
	}
	if p.consumed {
		return false, ErrConsumed
	}
	p.consumed = true
	steps := p.steps
	p.steps = nil

	if opts == nil {
		opts = &RunOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = LoggerFrom(ctx)
	}
	ctx = WithLogger(ctx, logger.With(zap.String("pipeline", p.Name)))

	if opts.Observer == nil {
		return p.runSteps(ctx, steps, msg, acc, opts, "")
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	if err := opts.Observer.BeforeRun(ctx, runID, p.Name); err != nil {
		return false, fmt.Errorf("before run: %w", err)
	}
	ok, err := p.runSteps(ctx, steps, msg, acc, opts, runID)
	if postErr := opts.Observer.AfterRun(ctx, runID, p.Name, ok, err); postErr != nil {
		// Don't mask the step error
		if err == nil {
			ok, err = false, fmt.Errorf("after run: %w", postErr)
		}
	}
	return ok, err
}

func (p *Pipeline[A]) runStep(ctx context.Context, step Step[A], msg *message.Message, acc A, timeout time.Duration) (bool, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return step.Fn(ctx, msg, acc)
}

func (p *Pipeline[A]) runSteps(ctx context.Context, steps []Step[A], msg *message.Message, acc A, opts *RunOptions, runID string) (bool, error) {
	obs := opts.Observer
	logger := LoggerFrom(ctx)
	success := true
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return false, fmt.Errorf("step %d (%s): %w", i, step.Name, err)
		}
		info := StepInfo{Index: i, Name: step.Name, Kind: step.Kind}
		if obs != nil {
			if err := obs.BeforeStep(ctx, runID, info); err != nil {
				return false, fmt.Errorf("before step %d: %w", i, err)
			}
		}
		start := time.Now()
		ok, stepErr := p.runStep(ctx, step, msg, acc, opts.StepTimeout)
		duration := time.Since(start)
		if stepErr != nil {
			ok = false
		}
		if obs != nil {
			if postErr := obs.AfterStep(ctx, runID, info, ok, stepErr, duration); postErr != nil {
				if stepErr == nil {
					stepErr = fmt.Errorf("after step: %w", postErr)
				}
			}
		}
		if stepErr != nil {
			return false, fmt.Errorf("step %d (%s): %w", i, step.Name, stepErr)
		}
		if !ok {
			logger.Debug("step failed",
				zap.Int("step_index", i),
				zap.String("step", step.Name),
				zap.Stringer("kind", step.Kind),
			)
		}
		success = success && ok
		if !success && !opts.ContinueOnFailure {
			break
		}
	}
	return success, nil
}

// Sequence runs several pipelines in order against the same message and
// accumulator, like the stages of one longer pipeline. It stops after the first
// pipeline that fails unless ContinueOnFailure is set, and stops on the first error.
type Sequence[A any] struct {
	Name      string
	Pipelines []*Pipeline[A]
}

// Execute runs each pipeline in order and returns the AND of their results.
// Each pipeline is consumed as by Pipeline.Execute.
func (s *Sequence[A]) Execute(ctx context.Context, msg *message.Message, acc A, opts *RunOptions) (bool, error) {
	continueOnFailure := opts != nil && opts.ContinueOnFailure
	success := true
	for i, p := range s.Pipelines {
		ok, err := p.Execute(ctx, msg, acc, opts)
		if err != nil {
			return false, fmt.Errorf("pipeline %d (%s): %w", i, p.Name, err)
		}
		success = success && ok
		if !success && !continueOnFailure {
			break
		}
	}
	return success, nil
}
