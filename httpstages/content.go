package httpstages

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/dcshock/respipe/codec"
	"github.com/dcshock/respipe/mediatype"
	"github.com/dcshock/respipe/message"
	"github.com/dcshock/respipe/pipeline"
)

// contentType returns the parsed Content-Type of msg. A missing content, a
// missing header or a malformed value report false.
func contentType(ctx context.Context, msg *message.Message) (mediatype.MediaType, bool) {
	if msg.Content == nil {
		return mediatype.MediaType{}, false
	}
	mt, err := msg.Content.MediaType()
	if err != nil {
		pipeline.LoggerFrom(ctx).Debug("unusable content type", zap.Error(err))
		return mediatype.MediaType{}, false
	}
	return mt, true
}

func body(ctx context.Context, msg *message.Message) ([]byte, error) {
	if msg.Content == nil {
		return nil, message.ErrNoContent
	}
	b, err := msg.Content.Bytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

// gated returns a predicate step that succeeds only when gate accepts the
// content type and consume succeeds on the body.
func gated[A any](name string, gate func(mediatype.MediaType) bool, consume func(ctx context.Context, data []byte, acc A) bool) pipeline.Step[A] {
	return pipeline.Predicate(name, func(ctx context.Context, msg *message.Message, acc A) (bool, error) {
		mt, ok := contentType(ctx, msg)
		if !ok || !gate(mt) {
			return false, nil
		}
		data, err := body(ctx, msg)
		if err != nil {
			return false, err
		}
		return consume(ctx, data, acc), nil
	})
}

// EnsureContentType returns a step that succeeds iff the content type of the
// message is more specific than required (see mediatype.MediaType.IsMoreSpecific).
func EnsureContentType[A any](required mediatype.MediaType) pipeline.Step[A] {
	return pipeline.Predicate("ensure-content-type:"+required.String(), func(ctx context.Context, msg *message.Message, _ A) (bool, error) {
		mt, ok := contentType(ctx, msg)
		return ok && mt.IsMoreSpecific(required), nil
	})
}

// UseContentType returns a step that calls action with the content type. It
// always succeeds; a missing or malformed Content-Type is passed as the zero MediaType.
func UseContentType[A any](action func(mt mediatype.MediaType, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.UseContentType: action must not be nil")
	}
	return pipeline.Action("use-content-type", func(ctx context.Context, msg *message.Message, acc A) error {
		mt, _ := contentType(ctx, msg)
		action(mt, acc)
		return nil
	})
}

// EnsureHTMLContent returns a step that requires a content type more specific
// than text/html and calls action with the body.
func EnsureHTMLContent[A any](action func(html string, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.EnsureHTMLContent: action must not be nil")
	}
	return gated("ensure-html", func(mt mediatype.MediaType) bool {
		return mt.IsMoreSpecific(mediatype.HTML)
	}, func(_ context.Context, data []byte, acc A) bool {
		action(string(data), acc)
		return true
	})
}

// EnsureTextContent returns a step that requires any text/* content type and
// calls action with the body.
func EnsureTextContent[A any](action func(text string, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.EnsureTextContent: action must not be nil")
	}
	return gated("ensure-text", func(mt mediatype.MediaType) bool {
		return mt.Type() == "text"
	}, func(_ context.Context, data []byte, acc A) bool {
		action(string(data), acc)
		return true
	})
}

// EnsureXMLContent returns a step that requires a */xml content type (e.g.
// application/xml or text/xml), parses the body and calls action with the
// document. A malformed document fails the step.
func EnsureXMLContent[A any](action func(doc *etree.Document, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.EnsureXMLContent: action must not be nil")
	}
	return gated("ensure-xml", func(mt mediatype.MediaType) bool {
		return mt.SubType() == "xml"
	}, func(ctx context.Context, data []byte, acc A) bool {
		doc, err := codec.ParseXML(data)
		if err != nil {
			pipeline.LoggerFrom(ctx).Debug("xml content rejected", zap.Error(err))
			return false
		}
		action(doc, acc)
		return true
	})
}

// EnsureJSONContent returns a step that requires a content type more specific
// than application/json, decodes the body as a JSON object and calls action
// with it. A body that is not a JSON object, null included, fails the step.
func EnsureJSONContent[A any](action func(obj map[string]any, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.EnsureJSONContent: action must not be nil")
	}
	return jsonStep(func(ctx context.Context, obj map[string]any, acc A) bool {
		if obj == nil {
			pipeline.LoggerFrom(ctx).Debug("json content rejected", zap.String("reason", "not an object"))
			return false
		}
		action(obj, acc)
		return true
	})
}

// EnsureJSONContentAs is like EnsureJSONContent but decodes the body into T.
func EnsureJSONContentAs[T, A any](action func(v T, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.EnsureJSONContentAs: action must not be nil")
	}
	return jsonStep(func(_ context.Context, v T, acc A) bool {
		action(v, acc)
		return true
	})
}

func jsonStep[T, A any](accept func(ctx context.Context, v T, acc A) bool) pipeline.Step[A] {
	return gated("ensure-json", func(mt mediatype.MediaType) bool {
		return mt.IsMoreSpecific(mediatype.JSON)
	}, func(ctx context.Context, data []byte, acc A) bool {
		var v T
		if err := codec.DecodeJSON(data, &v); err != nil {
			pipeline.LoggerFrom(ctx).Debug("json content rejected", zap.Error(err))
			return false
		}
		return accept(ctx, v, acc)
	})
}

// UseContent returns a step that calls action with the content type and the
// full body. It succeeds unless the body cannot be read.
func UseContent[A any](action func(mt mediatype.MediaType, data []byte, acc A)) pipeline.Step[A] {
	if action == nil {
		panic("httpstages.UseContent: action must not be nil")
	}
	return pipeline.Action("use-content", func(ctx context.Context, msg *message.Message, acc A) error {
		data, err := body(ctx, msg)
		if err != nil {
			return err
		}
		mt, _ := contentType(ctx, msg)
		action(mt, data, acc)
		return nil
	})
}
