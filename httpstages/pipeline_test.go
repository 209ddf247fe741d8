package httpstages

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/dcshock/respipe/mediatype"
	"github.com/dcshock/respipe/pipeline"
)

type apiResult struct {
	Value  map[string]any
	Code   int
	Reason string
	Html   string
}

// TestPipeline_GzipJSON runs gzip decompression followed by a JSON consumer
// storing into the accumulator.
func TestPipeline_GzipJSON(t *testing.T) {
	msg := encodedMessage("gzip", gzipped(t, `{"a":1}`))

	p := pipeline.New[*apiResult]("gzip-json").Add(
		UseGzipDecompression[*apiResult](),
		EnsureJSONContent(func(v map[string]any, r *apiResult) { r.Value = v }),
	)
	var res apiResult
	ok, err := p.Execute(context.Background(), msg, &res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected success")
	}
	if res.Value["a"] != float64(1) {
		t.Errorf("accumulator: %v", res.Value)
	}
}

// TestPipeline_HaltVersusContinue checks that a failing gate hides the next
// step's side effect only when halting.
func TestPipeline_HaltVersusContinue(t *testing.T) {
	build := func(code *int) *pipeline.Pipeline[pipeline.Unit] {
		return pipeline.NewReader("gates").Add(
			EnsureContentType[pipeline.Unit](mediatype.JSON),
			UseResponseCode(func(c int, _ pipeline.Unit) { *code = c }),
		)
	}

	var code int
	ok, err := build(&code).Execute(context.Background(), newMessage("text/html", "<p/>"), pipeline.Unit{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ok || code != 0 {
		t.Errorf("halt: ok=%v code=%d, want false and 0", ok, code)
	}

	code = 0
	ok, err = build(&code).Execute(context.Background(), newMessage("text/html", "<p/>"), pipeline.Unit{}, &pipeline.RunOptions{ContinueOnFailure: true})
	if err != nil {
		t.Fatal(err)
	}
	if ok || code != 200 {
		t.Errorf("continue: ok=%v code=%d, want false and 200", ok, code)
	}
}

// TestPipeline_FusedGateSkipsConsumer checks that a content consumer behind a
// failed gate is never called, even when the run continues past failures,
// while a later UseContent still sees the body.
func TestPipeline_FusedGateSkipsConsumer(t *testing.T) {
	var res apiResult
	var seen string
	p := pipeline.New[*apiResult]("fused").Add(
		EnsureJSONContent(func(v map[string]any, r *apiResult) { r.Value = v }),
		UseContent(func(_ mediatype.MediaType, data []byte, _ *apiResult) { seen = string(data) }),
	)
	ok, err := p.Execute(context.Background(), newMessage("text/html", `{"a":1}`), &res, &pipeline.RunOptions{ContinueOnFailure: true})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("the json gate should fail the run")
	}
	if res.Value != nil {
		t.Errorf("json consumer called behind a failed gate: %v", res.Value)
	}
	if seen != `{"a":1}` {
		t.Errorf("UseContent: got %q", seen)
	}
}

func TestReadResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte("<html>hello</html>"))
		gz.Close()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("X-Served-By", "test")
		w.WriteHeader(http.StatusCreated)
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	// Ask for gzip explicitly so the transport does not decode it for us.
	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}

	var servedBy string
	p := pipeline.New[*apiResult]("read").Add(
		UseGzipDecompression[*apiResult](StripEncoding()),
		EnsureSuccessStatus[*apiResult](),
		RequireHeader("X-Served-By", func(v []string, _ *apiResult) { servedBy = v[0] }),
		EnsureHTMLContent(func(html string, r *apiResult) { r.Html = html }),
		UseResponseCode(func(c int, r *apiResult) { r.Code = c }),
		UseReasonPhrase(func(s string, r *apiResult) { r.Reason = s }),
	)
	var res apiResult
	ok, err := ReadResponse(context.Background(), resp, p, &res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected success")
	}
	if res.Html != "<html>hello</html>" || res.Code != 201 || res.Reason != "Created" || servedBy != "test" {
		t.Errorf("result: %+v servedBy=%q", res, servedBy)
	}
}

func TestReadResponse_Nil(t *testing.T) {
	if _, err := ReadResponse(context.Background(), nil, pipeline.NewReader("x"), pipeline.Unit{}, nil); err == nil {
		t.Fatal("expected error for nil response")
	}
}
