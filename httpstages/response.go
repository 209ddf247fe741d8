package httpstages

import (
	"context"
	"errors"
	"net/http"

	"github.com/dcshock/respipe/message"
	"github.com/dcshock/respipe/pipeline"
)

// ReadResponse adapts resp with message.FromResponse, executes p against it and
// closes the response body (or whatever content replaced it) afterwards.
func ReadResponse[A any](ctx context.Context, resp *http.Response, p *pipeline.Pipeline[A], acc A, opts *pipeline.RunOptions) (bool, error) {
	if resp == nil {
		return false, errors.New("httpstages: nil response")
	}
	msg := message.FromResponse(resp)
	defer msg.Close()
	return p.Execute(ctx, msg, acc, opts)
}
