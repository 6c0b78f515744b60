package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/recipeshare/authcore/gateway"
	"github.com/recipeshare/authcore/kv"
	"github.com/recipeshare/authcore/lockout"
	"github.com/recipeshare/authcore/session"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	store   kv.Store
	gateway gateway.Gateway

	auditSink AuditSink
	clock     func() int64

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore describes the withstore operation and its observable behavior.
//
// WithStore may return an error when input validation, dependency calls, or security checks fail.
// WithStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStore(store kv.Store) *Builder {
	b.store = store
	return b
}

// WithGateway describes the withgateway operation and its observable behavior.
//
// WithGateway may return an error when input validation, dependency calls, or security checks fail.
// WithGateway does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithGateway(gw gateway.Gateway) *Builder {
	b.gateway = gw
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the epoch-millisecond time source. Intended for
// tests; production callers leave the wall clock in place.
func (b *Builder) WithClock(now func() int64) *Builder {
	b.clock = now
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Build restores persisted session and lockout state synchronously, runs
// one reconciliation pass so an already-expired lock is never visible,
// and starts the background reconciliation ticker.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config

	if b.store == nil {
		return nil, errors.New("durable store required")
	}
	if b.gateway == nil {
		return nil, errors.New("auth gateway required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.clock
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	c := &Controller{
		config:   cfg,
		policy:   lockout.New(cfg.Lockout.MaxAttempts, cfg.Lockout.Duration),
		sessions: session.NewStore(b.store),
		lockouts: newLockoutStore(b.store),
		gateway:  b.gateway,
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:  NewMetrics(cfg.Metrics),
		now:      now,
		subs:     make(map[uint64]chan Snapshot),
		done:     make(chan struct{}),
	}

	c.restore(context.Background())

	c.wg.Add(1)
	go c.reconcileLoop()

	b.built = true

	return c, nil
}
