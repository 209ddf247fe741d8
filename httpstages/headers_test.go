package httpstages

import (
	"testing"

	"github.com/dcshock/respipe/pipeline"
)

func TestEnsureHeader(t *testing.T) {
	msg := newMessage("text/plain", "")
	msg.Header.Set("X-Rate-Limit", "10")

	var seen []string
	s := EnsureHeader("x-rate-limit", func(values []string, _ pipeline.Unit) bool {
		seen = values
		return values[0] == "10"
	})
	if !run(t, s, msg) {
		t.Fatal("expected success")
	}
	if len(seen) != 1 || seen[0] != "10" {
		t.Errorf("values: %v", seen)
	}

	reject := EnsureHeader("X-Rate-Limit", func([]string, pipeline.Unit) bool { return false })
	if run(t, reject, msg) {
		t.Error("predicate returning false should fail the step")
	}
}

func TestEnsureHeader_FallsBackToContentHeaders(t *testing.T) {
	msg := newMessage("text/plain", "")
	s := EnsureHeader("Content-Type", func(values []string, _ pipeline.Unit) bool {
		return values[0] == "text/plain"
	})
	if !run(t, s, msg) {
		t.Error("Content-Type should be found in content headers")
	}
}

func TestEnsureHeader_Missing(t *testing.T) {
	called := false
	s := EnsureHeader("X-Missing", func([]string, pipeline.Unit) bool {
		called = true
		return true
	})
	if run(t, s, newMessage("text/plain", "")) {
		t.Error("missing header should fail")
	}
	if called {
		t.Error("predicate must not be called for a missing header")
	}
}

func TestRequireHeader(t *testing.T) {
	msg := newMessage("text/plain", "")
	msg.Header.Set("ETag", `"abc"`)
	var etag string
	if !run(t, RequireHeader("etag", func(v []string, _ pipeline.Unit) { etag = v[0] }), msg) {
		t.Fatal("expected success")
	}
	if etag != `"abc"` {
		t.Errorf("etag: %q", etag)
	}
	if run(t, RequireHeader("X-None", func([]string, pipeline.Unit) {}), msg) {
		t.Error("missing header should fail")
	}
}

func TestUseHeader(t *testing.T) {
	msg := newMessage("text/plain", "")
	msg.Header.Add("Set-Cookie", "a=1")
	msg.Header.Add("Set-Cookie", "b=2")

	var cookies []string
	if !run(t, UseHeader("Set-Cookie", func(v []string, _ pipeline.Unit) { cookies = v }), msg) {
		t.Fatal("UseHeader should succeed")
	}
	if len(cookies) != 2 {
		t.Errorf("cookies: %v", cookies)
	}

	called := false
	if !run(t, UseHeader("X-None", func([]string, pipeline.Unit) { called = true }), msg) {
		t.Error("UseHeader should succeed when the header is absent")
	}
	if called {
		t.Error("action must be skipped for an absent header")
	}
}
