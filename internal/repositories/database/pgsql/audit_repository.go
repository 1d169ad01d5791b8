package pgsql

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
)

type PgxAuditRepository struct {
	BaseRepository
}

// NewPgxAuditRepository creates the audit event sink.
func NewPgxAuditRepository(pool *pgxpool.Pool) ports.AuditLogger {
	return &PgxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ ports.AuditLogger = (*PgxAuditRepository)(nil)

// Log appends one audit event. Failures are logged and swallowed; an audit
// write must never fail the business operation that produced it.
func (r *PgxAuditRepository) Log(ctx context.Context, event domain.AuditEvent) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			logger.Error("failed to marshal audit metadata",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()))
			metadata = nil
		}
	}

	query := `
		INSERT INTO audit_events (event_id, organization_id, action, actor_id, resource_type, resource_id, reason, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		event.EventID,
		event.OrganizationID,
		event.Action,
		event.ActorID,
		event.ResourceType,
		event.ResourceID,
		event.Reason,
		metadata,
		event.Timestamp,
	)
	if err != nil {
		logger.Error("failed to write audit event",
			slog.String("event_id", event.EventID),
			slog.String("action", event.Action),
			slog.String("error", err.Error()))
	}
}
