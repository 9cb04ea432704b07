package events

import "encoding/json"

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// AnalysisUpdatedData is emitted after live inputs are saved and recomputed
type AnalysisUpdatedData struct {
	PropertyID string  `json:"property_id"`
	Kind       string  `json:"kind"`
	IsPartial  bool    `json:"is_partial"`
	ROI        float64 `json:"roi"`
	NetProfit  float64 `json:"net_profit"`
}

// EventType returns the event type for AnalysisUpdatedData
func (d *AnalysisUpdatedData) EventType() EventType { return AnalysisUpdated }

// PaymentData is emitted when a financing payment is recorded or deleted
type PaymentData struct {
	PropertyID string  `json:"property_id"`
	PlanID     string  `json:"plan_id"`
	PaymentID  string  `json:"payment_id"`
	MonthIndex int     `json:"month_index"`
	Amount     float64 `json:"amount"`
	Deleted    bool    `json:"-"`
}

// EventType returns PaymentDeleted or PaymentRecorded
func (d *PaymentData) EventType() EventType {
	if d.Deleted {
		return PaymentDeleted
	}
	return PaymentRecorded
}

// RatesChangedData is emitted when a property's custom rates change
type RatesChangedData struct {
	PropertyID string `json:"property_id"`
	Preset     string `json:"preset,omitempty"`
}

// EventType returns the event type for RatesChangedData
func (d *RatesChangedData) EventType() EventType { return RatesChanged }

// WorkspaceSettingsChangedData is emitted when workspace default rates change
type WorkspaceSettingsChangedData struct {
	WorkspaceID string `json:"workspace_id"`
	Region      string `json:"region,omitempty"`
}

// EventType returns the event type for WorkspaceSettingsChangedData
func (d *WorkspaceSettingsChangedData) EventType() EventType { return WorkspaceSettingsChanged }

// SnapshotData is emitted when a snapshot is captured or deleted
type SnapshotData struct {
	PropertyID string `json:"property_id"`
	SnapshotID string `json:"snapshot_id"`
	Kind       string `json:"kind"`
	Deleted    bool   `json:"-"`
}

// EventType returns SnapshotDeleted or SnapshotCaptured
func (d *SnapshotData) EventType() EventType {
	if d.Deleted {
		return SnapshotDeleted
	}
	return SnapshotCaptured
}

// IntegrityViolationData reports a snapshot whose payload no longer matches its checksum
type IntegrityViolationData struct {
	PropertyID string `json:"property_id"`
	SnapshotID string `json:"snapshot_id"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
}

// EventType returns the event type for IntegrityViolationData
func (d *IntegrityViolationData) EventType() EventType { return SnapshotIntegrityViolation }

// BackupCompletedData is emitted after an offsite backup upload
type BackupCompletedData struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
	Rotated   int    `json:"rotated"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType { return BackupCompleted }

// JobStatusData reports a scheduled job run
type JobStatusData struct {
	Job        string `json:"job"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// EventType returns JobFailed when Error is set, JobCompleted otherwise
func (d *JobStatusData) EventType() EventType {
	if d.Error != "" {
		return JobFailed
	}
	return JobCompleted
}

// ToMap flattens typed event data into the map carried by Event.
func ToMap(data EventData) map[string]interface{} {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
