package otpgate

import (
	"context"

	"github.com/velmor/otpgate/jwt"
	"github.com/velmor/otpgate/password"
)

// Engine coordinates the OTP issuance gates, the verification state
// machine, credential issuance, and the password-reset flow. Instances are
// built once through [Builder.Build] and are safe for concurrent use; the
// engine holds no in-process locks and relies on the KV store's atomicity
// for cross-request coordination.
type Engine struct {
	config   Config
	guard    *lockGuard
	tracker  *requestTracker
	otpStore *otpStore
	issuer   *otpIssuer
	verifier *otpVerifier
	users    UserStore
	hasher   *password.Argon2
	tokens   *jwt.Manager
	mail     *mailDispatcher
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close stops the detached mail and audit workers after draining their
// queues. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.mail != nil {
		e.mail.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded by a full queue.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType, identity string, success bool, failure error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		EventType: eventType,
		Identity:  identity,
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
