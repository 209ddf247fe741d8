package pipeline

import (
	"context"
	"errors"
	"time"
)

// MultiObserver returns an Observer that calls each of observers in order.
// Every observer is called even if an earlier one fails; the errors are joined.
// Nil entries are skipped.
func MultiObserver(observers ...Observer) Observer {
	list := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return multiObserver(list)
}

type multiObserver []Observer

func (m multiObserver) BeforeRun(ctx context.Context, runID, name string) error {
	var errs []error
	for _, o := range m {
		errs = append(errs, o.BeforeRun(ctx, runID, name))
	}
	return errors.Join(errs...)
}

func (m multiObserver) AfterRun(ctx context.Context, runID, name string, ok bool, err error) error {
	var errs []error
	for _, o := range m {
		errs = append(errs, o.AfterRun(ctx, runID, name, ok, err))
	}
	return errors.Join(errs...)
}

func (m multiObserver) BeforeStep(ctx context.Context, runID string, step StepInfo) error {
	var errs []error
	for _, o := range m {
		errs = append(errs, o.BeforeStep(ctx, runID, step))
	}
	return errors.Join(errs...)
}

func (m multiObserver) AfterStep(ctx context.Context, runID string, step StepInfo, ok bool, stepErr error, d time.Duration) error {
	var errs []error
	for _, o := range m {
		errs = append(errs, o.AfterStep(ctx, runID, step, ok, stepErr, d))
	}
	return errors.Join(errs...)
}
