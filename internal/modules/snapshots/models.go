// Package snapshots stores immutable point-in-time copies of an analysis.
//
// Snapshots are append-only records in the ledger database. There is no update
// operation; a trigger aborts any UPDATE that reaches the table. Each payload
// carries a SHA-256 checksum so silent corruption can be detected later.
package snapshots

import (
	"time"

	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// Snapshot is a frozen copy of an analysis at capture time.
type Snapshot[I any, O any] struct {
	ID                      string                    `json:"id"`
	PropertyID              string                    `json:"property_id"`
	Kind                    domain.AnalysisKind       `json:"kind"`
	Inputs                  I                         `json:"inputs"`
	Outputs                 O                         `json:"outputs"`
	EffectiveRates          domain.RateSet            `json:"effective_rates"`
	Payments                []domain.FinancingPayment `json:"payments,omitempty"`
	StatusPipelineAtCapture string                    `json:"status_pipeline_at_capture"`
	Checksum                string                    `json:"checksum"`
	CreatedAt               time.Time                 `json:"created_at"`
}

// CashSnapshot is a snapshot of a cash analysis.
type CashSnapshot = Snapshot[domain.CashInputs, domain.CashOutputs]

// FinancingSnapshot is a snapshot of a financing analysis.
type FinancingSnapshot = Snapshot[domain.FinancingInputs, domain.FinancingOutputs]

// CaptureResult is returned after a successful capture.
type CaptureResult struct {
	SnapshotID string    `json:"snapshot_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistorySummary compares the snapshots of one property and kind over time.
type HistorySummary struct {
	PropertyID    string              `json:"property_id"`
	Kind          domain.AnalysisKind `json:"kind"`
	Count         int                 `json:"count"`
	FirstROI      float64             `json:"first_roi"`
	LatestROI     float64             `json:"latest_roi"`
	ROIChange     float64             `json:"roi_change"`
	MinROI        float64             `json:"min_roi"`
	MaxROI        float64             `json:"max_roi"`
	MeanROI       float64             `json:"mean_roi"`
	StdDevROI     float64             `json:"stddev_roi"`
	MeanNetProfit float64             `json:"mean_net_profit"`
	FirstAt       *time.Time          `json:"first_at,omitempty"`
	LatestAt      *time.Time          `json:"latest_at,omitempty"`
}

// IntegrityReport lists snapshots whose payload no longer matches its checksum.
type IntegrityReport struct {
	Checked    int                  `json:"checked"`
	Violations []IntegrityViolation `json:"violations"`
}

// IntegrityViolation is one corrupted snapshot.
type IntegrityViolation struct {
	SnapshotID string `json:"snapshot_id"`
	PropertyID string `json:"property_id"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
}

// payload is the msgpack-encoded body of a snapshot row.
type payload[I any, O any] struct {
	Inputs         I                         `msgpack:"inputs"`
	Outputs        O                         `msgpack:"outputs"`
	EffectiveRates domain.RateSet            `msgpack:"effective_rates"`
	Payments       []domain.FinancingPayment `msgpack:"payments,omitempty"`
}

// record is a raw snapshot row.
type record struct {
	ID             string
	PropertyID     string
	Kind           domain.AnalysisKind
	StatusPipeline string
	Payload        []byte
	Checksum       string
	ROI            float64
	NetProfit      float64
	CreatedAt      time.Time
}
