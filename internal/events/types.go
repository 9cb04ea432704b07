// Package events provides event management functionality.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// Workspace and rate configuration
	WorkspaceSettingsChanged EventType = "WORKSPACE_SETTINGS_CHANGED"
	RatesChanged             EventType = "RATES_CHANGED"

	// Live analysis state
	AnalysisUpdated  EventType = "ANALYSIS_UPDATED"
	PaymentRecorded  EventType = "PAYMENT_RECORDED"
	PaymentDeleted   EventType = "PAYMENT_DELETED"
	PropertyUpserted EventType = "PROPERTY_UPSERTED"

	// Snapshot history
	SnapshotCaptured           EventType = "SNAPSHOT_CAPTURED"
	SnapshotDeleted            EventType = "SNAPSHOT_DELETED"
	SnapshotIntegrityViolation EventType = "SNAPSHOT_INTEGRITY_VIOLATION"

	// Operations
	BackupCompleted EventType = "BACKUP_COMPLETED"
	JobCompleted    EventType = "JOB_COMPLETED"
	JobFailed       EventType = "JOB_FAILED"
	ErrorOccurred   EventType = "ERROR_OCCURRED"
)

// AllEventTypes lists every type streamed to clients when no filter is given.
var AllEventTypes = []EventType{
	WorkspaceSettingsChanged,
	RatesChanged,
	AnalysisUpdated,
	PaymentRecorded,
	PaymentDeleted,
	PropertyUpserted,
	SnapshotCaptured,
	SnapshotDeleted,
	SnapshotIntegrityViolation,
	BackupCompleted,
	JobCompleted,
	JobFailed,
	ErrorOccurred,
}

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// PropertyID returns the property the event concerns, if any.
func (e *Event) PropertyID() string {
	if e.Data == nil {
		return ""
	}
	id, _ := e.Data["property_id"].(string)
	return id
}
