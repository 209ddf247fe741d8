// Package pipeline: standard steps for common pipeline patterns.

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dcshock/respipe/message"
)

// Noop returns a step that does nothing and succeeds.
// Useful as a placeholder or an observer boundary.
func Noop[A any]() Step[A] {
	return Action("noop", func(context.Context, *message.Message, A) error { return nil })
}

// Tap returns an action step that calls fn with the message and accumulator.
// Use for logging, metrics, or side effects without affecting the result.
func Tap[A any](name string, fn func(ctx context.Context, msg *message.Message, acc A)) Step[A] {
	if fn == nil {
		panic("pipeline.Tap: fn must not be nil")
	}
	return Action(name, func(ctx context.Context, msg *message.Message, acc A) error {
		fn(ctx, msg, acc)
		return nil
	})
}

// Check returns a predicate step that succeeds iff predicate(msg, acc) is true.
func Check[A any](name string, predicate func(msg *message.Message, acc A) bool) Step[A] {
	if predicate == nil {
		panic("pipeline.Check: predicate must not be nil")
	}
	return Predicate(name, func(_ context.Context, msg *message.Message, acc A) (bool, error) {
		return predicate(msg, acc), nil
	})
}

// WithTimeout wraps inner so it runs with a context deadline of now+timeout.
// Body reads honour the deadline; if inner does not return in time its error is
// context.DeadlineExceeded.
func WithTimeout[A any](inner Step[A], timeout time.Duration) Step[A] {
	fn := inner.Fn
	inner.Fn = func(ctx context.Context, msg *message.Message, acc A) (bool, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(ctx, msg, acc)
	}
	return inner
}

// Named returns s renamed to name. Observers and error messages use the name.
func Named[A any](s Step[A], name string) Step[A] {
	s.Name = name
	return s
}

// Not returns a predicate step that succeeds iff s fails. Errors of s are returned as is.
func Not[A any](s Step[A]) Step[A] {
	fn := s.Fn
	return Step[A]{
		Name: fmt.Sprintf("not(%s)", s.Name),
		Kind: KindPredicate,
		Fn: func(ctx context.Context, msg *message.Message, acc A) (bool, error) {
			ok, err := fn(ctx, msg, acc)
			if err != nil {
				return false, err
			}
			return !ok, nil
		},
	}
}
