package authcore

import (
	"context"
	"sync"
	"time"

	"github.com/recipeshare/authcore/gateway"
	"github.com/recipeshare/authcore/lockout"
	"github.com/recipeshare/authcore/session"
)

// Controller defines a public type used by authcore APIs.
//
// Controller instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Controller is the only component UI code talks to. It owns the lockout
// state machine, the persisted session, and the subscriber read model.
type Controller struct {
	config   Config
	policy   lockout.Policy
	sessions *session.Store
	lockouts *lockoutStore
	gateway  gateway.Gateway
	audit    *auditDispatcher
	metrics  *Metrics
	now      func() int64

	mu      sync.Mutex
	state   lockout.State
	current *session.Session
	loading bool
	// generation is bumped by Logout so that a login response arriving
	// after the logout is discarded instead of resurrecting a session.
	generation uint64
	closed     bool
	subs       map[uint64]chan Snapshot
	nextSub    uint64

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// restore populates state from the durable store. Corrupt entries fall
// back to the safe default and are never surfaced to the caller.
func (c *Controller) restore(ctx context.Context) {
	sess, err := c.sessions.Load(ctx)
	switch {
	case err != nil:
		c.metricInc(MetricSessionRestoreFailed)
		c.emitAudit(ctx, auditEventSessionRestoreFailed, false, "", "", err, nil)
	case sess != nil:
		c.current = sess
		c.metricInc(MetricSessionRestored)
		c.emitAudit(ctx, auditEventSessionRestored, true, sess.User.ID, sess.User.Email, nil, nil)
	}

	state, err := c.lockouts.Load(ctx)
	if err != nil {
		c.metricInc(MetricSessionRestoreFailed)
		c.emitAudit(ctx, auditEventSessionRestoreFailed, false, "", "", err, func() map[string]string {
			return map[string]string{
				"scope": "lockout",
			}
		})
		state = lockout.State{}
	}

	// Reconcile before first publish so a reload after the lock already
	// expired never flashes a locked read model.
	now := c.now()
	reconciled := c.policy.Reconcile(state, now)
	if reconciled != state {
		_ = c.lockouts.Save(ctx, reconciled)
	}
	c.state = reconciled
}

func (c *Controller) reconcileLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.Reconcile.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.reconcileTick()
		case <-c.done:
			return
		}
	}
}

func (c *Controller) reconcileTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.reconcileLocked(context.Background(), c.now())
}

// reconcileLocked folds an expired lock into state, persisting and
// reporting the transition. Every expiry goes through here whether the
// ticker or a login preflight detects it. Caller holds c.mu.
func (c *Controller) reconcileLocked(ctx context.Context, now int64) {
	next := c.policy.Reconcile(c.state, now)
	if next == c.state {
		return
	}

	c.state = next
	_ = c.lockouts.Save(ctx, next)
	c.metricInc(MetricLockoutExpired)
	c.emitAuditLocked(auditEventLockoutExpired, true, nil, nil)
	c.publishLocked()
}

// Reconcile describes the reconcile operation and its observable behavior.
//
// Reconcile may return an error when input validation, dependency calls, or security checks fail.
// Reconcile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Reconcile runs one expiry check outside the ticker, for hosts that
// drive the controller from their own scheduler.
func (c *Controller) Reconcile() {
	c.reconcileTick()
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		for id, ch := range c.subs {
			close(ch)
			delete(c.subs, id)
		}
		c.mu.Unlock()

		close(c.done)
		c.wg.Wait()
		if c.audit != nil {
			c.audit.Close()
		}
	})
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		IsLoading:      c.loading,
		FailedAttempts: c.state.FailedAttempts,
		LockoutTime:    c.state.LockedUntil,
		IsLocked:       c.state.Locked(c.now()),
	}
	if c.current != nil {
		user := c.current.User
		snap.User = &user
	}
	return snap
}

// Subscribe registers a read-model subscriber. The returned channel
// receives a snapshot after every published state change, coalescing to
// the latest value when the subscriber lags. cancel removes the
// subscription and closes the channel.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	// Seed with the current state so subscribers render immediately.
	ch <- c.snapshotLocked()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot; only the latest matters.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Controller) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}
