package httpstages

import (
	"context"
	"testing"

	"github.com/dcshock/respipe/pipeline"
)

func TestUseResponseCode(t *testing.T) {
	msg := newMessage("text/plain", "x")
	msg.StatusCode = 404
	var code int
	ok, err := UseResponseCode(func(c int, _ pipeline.Unit) { code = c }).Fn(context.Background(), msg, pipeline.Unit{})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if code != 404 {
		t.Errorf("code: got %d", code)
	}
}

func TestUseReasonPhrase(t *testing.T) {
	msg := newMessage("text/plain", "x")
	msg.ReasonPhrase = "Not Found"
	var reason string
	ok, _ := UseReasonPhrase(func(r string, _ pipeline.Unit) { reason = r }).Fn(context.Background(), msg, pipeline.Unit{})
	if !ok || reason != "Not Found" {
		t.Errorf("ok=%v reason=%q", ok, reason)
	}
}

func TestEnsureStatus(t *testing.T) {
	s := EnsureStatus[pipeline.Unit](200, 204)
	msg := newMessage("text/plain", "x")
	for code, want := range map[int]bool{200: true, 204: true, 500: false} {
		msg.StatusCode = code
		ok, err := s.Fn(context.Background(), msg, pipeline.Unit{})
		if err != nil {
			t.Fatal(err)
		}
		if ok != want {
			t.Errorf("EnsureStatus(%d): got %v, want %v", code, ok, want)
		}
	}
}

func TestEnsureStatus_NoCodesPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("EnsureStatus() should panic")
		}
	}()
	EnsureStatus[pipeline.Unit]()
}

func TestEnsureSuccessStatus(t *testing.T) {
	s := EnsureSuccessStatus[pipeline.Unit]()
	msg := newMessage("text/plain", "x")
	for code, want := range map[int]bool{199: false, 200: true, 299: true, 301: false} {
		msg.StatusCode = code
		if ok, _ := s.Fn(context.Background(), msg, pipeline.Unit{}); ok != want {
			t.Errorf("EnsureSuccessStatus(%d): got %v, want %v", code, ok, want)
		}
	}
}
