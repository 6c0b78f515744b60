package authcore

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/recipeshare/authcore/kv"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type captureSink struct {
	events chan AuditEvent
}

func newCaptureSink(buffer int) *captureSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &captureSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *captureSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func buildAuditTestController(t *testing.T, sink AuditSink, gw *scriptedGateway) *Controller {
	t.Helper()

	cfg := defaultConfig()
	cfg.Reconcile.Interval = time.Minute
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64

	c, err := New().
		WithConfig(cfg).
		WithStore(kv.NewMemory()).
		WithGateway(gw).
		WithClock(newManualClock(0).Now).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := &countingSink{}

	cfg := defaultConfig()
	cfg.Reconcile.Interval = time.Minute
	cfg.Audit.Enabled = false

	c, err := New().
		WithConfig(cfg).
		WithStore(kv.NewMemory()).
		WithGateway(&scriptedGateway{steps: []loginStep{failureStep()}}).
		WithClock(newManualClock(0).Now).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer c.Close()

	_ = c.Login(context.Background(), "ada@example.com", "bad")
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditLoginFailureEvents(t *testing.T) {
	sink := newCaptureSink(64)
	gw := &scriptedGateway{steps: []loginStep{failureStep(), failureStep(), failureStep()}}
	c := buildAuditTestController(t, sink, gw)

	for i := 0; i < 3; i++ {
		_ = c.Login(context.Background(), "ada@example.com", "bad")
	}
	c.Close()

	seen := map[string]int{}
	for {
		select {
		case event := <-sink.events:
			seen[event.EventType]++
		default:
			if seen[auditEventLoginFailure] != 2 {
				t.Fatalf("expected 2 login_failure events, got %d (all: %v)", seen[auditEventLoginFailure], seen)
			}
			if seen[auditEventLockoutTriggered] != 1 {
				t.Fatalf("expected 1 lockout_triggered event, got %d", seen[auditEventLockoutTriggered])
			}
			return
		}
	}
}

func TestAuditLoginSuccessCarriesIdentity(t *testing.T) {
	sink := newCaptureSink(16)
	gw := &scriptedGateway{steps: []loginStep{successStep()}}
	c := buildAuditTestController(t, sink, gw)

	if err := c.Login(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	c.Close()

	for {
		select {
		case event := <-sink.events:
			if event.EventType != auditEventLoginSuccess {
				continue
			}
			if !event.Success || event.UserID != "u1" || event.Email != "ada@example.com" {
				t.Fatalf("unexpected login_success event: %+v", event)
			}
			return
		default:
			t.Fatal("login_success event never emitted")
		}
	}
}

func TestAuditDispatcherDropsWhenFull(t *testing.T) {
	blocked := make(chan struct{})
	sink := blockingSink{gate: blocked}

	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer func() {
		close(blocked)
		d.Close()
	}()

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "login_failure"})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events with a full buffer")
	}
}

type blockingSink struct {
	gate chan struct{}
}

func (s blockingSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func TestAuditDispatcherDrainsOnClose(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: false}, sink)

	for i := 0; i < 8; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "logout"})
	}
	d.Close()

	if sink.Count() != 8 {
		t.Fatalf("expected all buffered events delivered on close, got %d", sink.Count())
	}
}
