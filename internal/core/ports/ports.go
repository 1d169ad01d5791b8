package ports

import (
	"context"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
)

// Clock supplies the current time. Injected so scheduled-processing code paths
// are deterministic under test.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the wrapped instant. Test helper.
type FixedClock struct{ Instant time.Time }

func (c FixedClock) Now() time.Time { return c.Instant }

// CacheInvalidator invalidates cached list/detail views after mutations.
// Best effort and non-transactional: implementations log failures and return
// them for observability, but callers never fail the business operation on an
// invalidation error.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keyPattern string) error
}

// NoopInvalidator is used when no cache backend is configured.
type NoopInvalidator struct{}

func (NoopInvalidator) Invalidate(ctx context.Context, keyPattern string) error { return nil }

// AuditLogger is the fire-and-forget audit sink. Implementations must swallow
// their own failures (logging them internally); callers never check for
// business purposes.
type AuditLogger interface {
	Log(ctx context.Context, event domain.AuditEvent)
}

// NoopAuditLogger discards events. Test helper.
type NoopAuditLogger struct{}

func (NoopAuditLogger) Log(ctx context.Context, event domain.AuditEvent) {}
