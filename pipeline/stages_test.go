package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dcshock/respipe/message"
)

func TestNoop(t *testing.T) {
	s := Noop[Unit]()
	ok, err := s.Fn(context.Background(), newMsg(), Unit{})
	if err != nil || !ok {
		t.Errorf("Noop: ok=%v err=%v", ok, err)
	}
	if s.Kind != KindAction {
		t.Errorf("Noop kind: %s", s.Kind)
	}
}

func TestTap(t *testing.T) {
	ctx := context.Background()
	var seenCtx context.Context
	var seenMsg *message.Message
	s := Tap("tap", func(c context.Context, m *message.Message, _ Unit) {
		seenCtx = c
		seenMsg = m
	})
	msg := newMsg()
	ok, err := s.Fn(ctx, msg, Unit{})
	if err != nil || !ok {
		t.Fatalf("Tap: ok=%v err=%v", ok, err)
	}
	if seenCtx != ctx || seenMsg != msg {
		t.Errorf("Tap: fn called with ctx=%v msg=%v", seenCtx, seenMsg)
	}
}

func TestCheck(t *testing.T) {
	s := Check("is-200", func(m *message.Message, _ Unit) bool { return m.StatusCode == 200 })
	msg := newMsg()
	if ok, _ := s.Fn(context.Background(), msg, Unit{}); !ok {
		t.Error("Check(200): expected success")
	}
	msg.StatusCode = 500
	if ok, _ := s.Fn(context.Background(), msg, Unit{}); ok {
		t.Error("Check(500): expected failure")
	}
}

func TestCheck_NilPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Check(nil) should panic")
		}
	}()
	Check[Unit]("x", nil)
}

func TestWithTimeout_Deadline(t *testing.T) {
	slow := Predicate("slow", func(ctx context.Context, _ *message.Message, _ Unit) (bool, error) {
		select {
		case <-time.After(time.Second):
			return true, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	})
	s := WithTimeout(slow, 10*time.Millisecond)
	if s.Name != "slow" || s.Kind != KindPredicate {
		t.Errorf("WithTimeout should keep name and kind: %+v", s)
	}
	_, err := s.Fn(context.Background(), newMsg(), Unit{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestNamed(t *testing.T) {
	s := Named(Noop[Unit](), "renamed")
	if s.Name != "renamed" {
		t.Errorf("Named: got %q", s.Name)
	}
}

func TestNot(t *testing.T) {
	pass := Check("pass", func(*message.Message, Unit) bool { return true })
	s := Not(pass)
	if ok, _ := s.Fn(context.Background(), newMsg(), Unit{}); ok {
		t.Error("Not(pass): expected failure")
	}
	if s.Name != "not(pass)" {
		t.Errorf("Not name: %q", s.Name)
	}
	boom := errors.New("boom")
	failing := Predicate("err", func(context.Context, *message.Message, Unit) (bool, error) { return false, boom })
	if _, err := Not(failing).Fn(context.Background(), newMsg(), Unit{}); !errors.Is(err, boom) {
		t.Errorf("Not should pass errors through, got %v", err)
	}
}
