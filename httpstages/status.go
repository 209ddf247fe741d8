package httpstages

import (
	"context"
	"slices"

	"github.com/dcshock/respipe/message"
	"github.com/dcshock/respipe/pipeline"
)

// UseResponseCode returns a step that calls action with the status code. It always succeeds.
func UseResponseCode[A any](action func(code int, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.UseResponseCode: action must not be nil")
	}
	return pipeline.Action("use-response-code", func(_ context.Context, msg *message.Message, acc A) error {
		action(msg.StatusCode, acc)
		return nil
	})
}

// UseReasonPhrase returns a step that calls action with the reason phrase. It always succeeds.
func UseReasonPhrase[A any](action func(reason string, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.UseReasonPhrase: action must not be nil")
	}
	return pipeline.Action("use-reason-phrase", func(_ context.Context, msg *message.Message, acc A) error {
		action(msg.ReasonPhrase, acc)
		return nil
	})
}

// EnsureStatus returns a step that succeeds iff the status code is one of codes.
func EnsureStatus[A any](codes ...int) pipeline.Step[A] {
	if len(codes) == 0 {
		panic("httpstages.EnsureStatus: at least one code required")
	}
	codes = slices.Clone(codes)
	return pipeline.Check("ensure-status", func(msg *message.Message, _ A) bool {
		return slices.Contains(codes, msg.StatusCode)
	})
}

// EnsureSuccessStatus returns a step that succeeds iff the status code is 2xx.
func EnsureSuccessStatus[A any]() pipeline.Step[A] {
	return pipeline.Check("ensure-success-status", func(msg *message.Message, _ A) bool {
		return msg.StatusCode >= 200 && msg.StatusCode < 300
	})
}
