package httpstages

import (
	"context"

	"github.com/dcshock/respipe/message"
	"github.com/dcshock/respipe/pipeline"
)

// EnsureHeader returns a step that looks up name in the message headers and
// then in the content headers. The step fails if the header is absent from
// both; otherwise it succeeds iff predicate(values, acc) is true.
func EnsureHeader[A any](name string, predicate func(values []string, acc A) bool) pipeline.Step[A] {
	if predicate == nil {
		panic("httpstages.EnsureHeader: predicate must not be nil")
	}
	return pipeline.Predicate("ensure-header:"+name, func(_ context.Context, msg *message.Message, acc A) (bool, error) {
		values, ok := msg.LookupHeader(name)
		if !ok {
			return false, nil
		}
		return predicate(values, acc), nil
	})
}

// RequireHeader is like EnsureHeader but calls action instead of a predicate:
// the step fails only when the header is absent.
func RequireHeader[A any](name string, action func(values []string, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.RequireHeader: action must not be nil")
	}
	return EnsureHeader(name, func(values []string, acc A) bool {
		action(values, acc)
		return true
	})
}

// UseHeader returns a step that calls action with the values of an optional
// header. It never fails; action is skipped when the header is absent.
func UseHeader[A any](name string, action func(values []string, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.UseHeader: action must not be nil")
	}
	return pipeline.Action("use-header:"+name, func(_ context.Context, msg *message.Message, acc A) error {
		if values, ok := msg.LookupHeader(name); ok {
			action(values, acc)
		}
		return nil
	})
}
