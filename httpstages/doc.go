// Package httpstages provides the built-in pipeline steps for processing a
// received HTTP response: header checks, content-type gates, content consumers
// (HTML, text, JSON, XML), decompression and status observers.
//
// Every step is generic over the pipeline accumulator A, so results can be
// written into a caller-owned record:
//
//	type Result struct {
//	    Page string
//	    Code int
//	}
//
//	p := pipeline.New[*Result]("homepage").Add(
//	    httpstages.UseBrotliDecompression[*Result](),
//	    httpstages.UseGzipDecompression[*Result](),
//	    httpstages.EnsureHTMLContent(func(html string, r *Result) { r.Page = html }),
//	    httpstages.UseResponseCode(func(code int, r *Result) { r.Code = code }),
//	)
//	var res Result
//	ok, err := httpstages.ReadResponse(ctx, resp, p, &res, nil)
//
// Content gates and their consumers form a single step on purpose: when the
// content type does not match, the consumer is not called, even with
// ContinueOnFailure, so a consumer never sees a body of the wrong kind. To
// receive the body whatever its type, use UseContent or UseContentType and
// check the media type in the action.
//
// Decompression steps act only when the first Content-Encoding token matches.
// By default they copy every content header, Content-Encoding included, onto
// the decompressed content; pass StripEncoding to drop the consumed token.
package httpstages
