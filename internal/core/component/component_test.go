package component

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arung-agamani/streamgraph/internal/core/channel"
)

func waitStatus(b *Base, want Status) bool {
	deadline := time.After(time.Second)
	for {
		if b.Status() == want {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(time.Millisecond):
		}
	}
}

func TestStartTransitionsToRunningThenStopped(t *testing.T) {
	b := NewBase("noop", nil, func(ctx context.Context, inputs map[string]channel.Typed) error {
		<-ctx.Done()
		return nil
	})
	if b.Status() != StatusStartup {
		t.Fatalf("expected startup, got %s", b.Status())
	}
	b.Start(nil)
	if !waitStatus(b, StatusRunning) {
		t.Fatal("never reached running")
	}
	b.Stop()
	if !waitStatus(b, StatusStopped) {
		t.Fatal("never reached stopped")
	}
}

func TestStartIsNoOpWhenAlreadyRunning(t *testing.T) {
	starts := 0
	b := NewBase("noop", nil, func(ctx context.Context, inputs map[string]channel.Typed) error {
		starts++
		<-ctx.Done()
		return nil
	})
	b.Start(nil)
	waitStatus(b, StatusRunning)
	b.Start(nil)
	time.Sleep(10 * time.Millisecond)
	if starts != 1 {
		t.Fatalf("expected exactly one run invocation, got %d", starts)
	}
	b.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	b := NewBase("noop", nil, func(ctx context.Context, inputs map[string]channel.Typed) error {
		<-ctx.Done()
		return nil
	})
	b.Start(nil)
	waitStatus(b, StatusRunning)
	b.Stop()
	b.Stop()
	if !waitStatus(b, StatusStopped) {
		t.Fatal("never reached stopped")
	}
}

func TestRunErrorRecordedAsFault(t *testing.T) {
	want := errors.New("boom")
	b := NewBase("noop", nil, func(ctx context.Context, inputs map[string]channel.Typed) error {
		return want
	})
	b.Start(nil)
	if !waitStatus(b, StatusStopped) {
		t.Fatal("never reached stopped")
	}
	snap := b.Snapshot()
	if snap.Fault == nil || snap.Fault.Message != want.Error() {
		t.Fatalf("expected fault with message %q, got %+v", want.Error(), snap.Fault)
	}
}

func TestPanicInRunRecordedAsFault(t *testing.T) {
	b := NewBase("noop", nil, func(ctx context.Context, inputs map[string]channel.Typed) error {
		panic("kaboom")
	})
	b.Start(nil)
	if !waitStatus(b, StatusStopped) {
		t.Fatal("never reached stopped")
	}
	snap := b.Snapshot()
	if snap.Fault == nil || snap.Fault.Kind != "panic" {
		t.Fatalf("expected panic fault, got %+v", snap.Fault)
	}
}

func TestStartNeverRestartsAStoppedInstance(t *testing.T) {
	starts := 0
	b := NewBase("noop", nil, func(ctx context.Context, inputs map[string]channel.Typed) error {
		starts++
		return nil
	})
	b.Start(nil)
	waitStatus(b, StatusStopped)
	b.Start(nil)
	time.Sleep(10 * time.Millisecond)
	if starts != 1 {
		t.Fatalf("expected stopped instance to reject restart, got %d starts", starts)
	}
}
