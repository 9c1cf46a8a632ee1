package domain

import "time"

// AuditEntry records one mutation of one field of one record.
type AuditEntry struct {
	ID         string
	Timestamp  time.Time
	EntityType EntityType
	EntityID   string
	Field      string
	OldValue   string
	NewValue   string
	Actor      string
}

// SystemActor is the actor recorded for writes made by automatic recalculation.
const SystemActor = "system"

type Alert struct {
	ID         string
	EntityType EntityType
	EntityID   string
	Condition  AlertCondition
	Severity   AlertSeverity
	Message    string
	Resolved   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// SyncSnapshot is a daily measurement of the two-track synchronization gap.
type SyncSnapshot struct {
	ID              string
	TakenAt         time.Time
	TechnicalPct    float64
	MobilizationPct float64
	Gap             float64
}
