// Package pipeline provides single-use response-processing pipelines. A Pipeline
// is an ordered list of steps declared in advance and executed once against a
// received message (see package message). Each step is a predicate (may fail),
// an action (observes the message) or a transform (replaces its content).
//
// Steps run strictly in the order they were added. The result of Execute is the
// logical AND of every step result observed: by default the first failing step
// stops the run; with RunOptions.ContinueOnFailure every step runs and failures
// are aggregated. Ordinary mismatches never produce an error; only faults that
// cannot be recovered (codec failures, body read errors, cancellation) do.
//
//	p := pipeline.New[*Result]("fetch-user").Add(
//	    httpstages.UseGzipDecompression[*Result](),
//	    httpstages.EnsureJSONContentAs(func(u User, r *Result) { r.User = u }),
//	    httpstages.UseResponseCode(func(code int, r *Result) { r.Code = code }),
//	)
//	ok, err := p.Execute(ctx, message.FromResponse(resp), &res, nil)
//
// The accumulator is any caller-owned value threaded through every step so
// results can be written into a record instead of captured by closures.
// Pipelines that do not need one use NewReader and the Unit accumulator.
//
// A pipeline drains its steps while running; calling Execute a second time
// returns ErrConsumed. Build a fresh pipeline per message (package config can
// build one from a YAML definition).
//
// Optional pre/post hooks (Observer) let you log, measure or trace each run:
// BeforeRun, BeforeStep/AfterStep (result, error, duration) and AfterRun.
// Pass RunOptions{Observer: myObserver}. A Sequence runs several pipelines over
// the same message and accumulator in order.
package pipeline
