package domain

import "time"

// AuditEvent records one externally visible state change (who, what, when).
// Emission is fire-and-forget: an audit failure never fails the business
// operation that produced it.
type AuditEvent struct {
	EventID        string         `json:"eventID"`
	OrganizationID string         `json:"organizationID"`
	Action         string         `json:"action"` // e.g. "fiscal_year.close", "entry.post"
	ActorID        string         `json:"actorID"`
	ResourceType   string         `json:"resourceType"`
	ResourceID     string         `json:"resourceID"`
	Reason         string         `json:"reason,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}
