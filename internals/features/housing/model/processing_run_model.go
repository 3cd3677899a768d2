// file: internals/features/housing/model/processing_run_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type ProcessingTrigger string

const (
	TriggerManual    ProcessingTrigger = "manual"
	TriggerScheduled ProcessingTrigger = "scheduled"
)

// ProcessingRunModel mencatat satu kali jalan batch auto-process.
// Ditulis di transaksi yang sama dengan keputusan-keputusannya.
type ProcessingRunModel struct {
	ProcessingRunID      uuid.UUID         `json:"processing_run_id" gorm:"column:processing_run_id;type:uuid;primaryKey"`
	ProcessingRunTrigger ProcessingTrigger `json:"processing_run_trigger" gorm:"column:processing_run_trigger;type:varchar(16);not null"`

	ProcessingRunStartedAt  time.Time `json:"processing_run_started_at" gorm:"column:processing_run_started_at;type:timestamptz;not null"`
	ProcessingRunFinishedAt time.Time `json:"processing_run_finished_at" gorm:"column:processing_run_finished_at;type:timestamptz;not null"`

	ProcessingRunProcessed int `json:"processing_run_processed" gorm:"column:processing_run_processed;not null;default:0"`
	ProcessingRunAllocated int `json:"processing_run_allocated" gorm:"column:processing_run_allocated;not null;default:0"`
	ProcessingRunApproved  int `json:"processing_run_approved" gorm:"column:processing_run_approved;not null;default:0"`
	ProcessingRunRejected  int `json:"processing_run_rejected" gorm:"column:processing_run_rejected;not null;default:0"`

	ProcessingRunApplicationIDs pq.Int64Array  `json:"processing_run_application_ids" gorm:"column:processing_run_application_ids;type:bigint[]"`
	ProcessingRunSummary        datatypes.JSON `json:"processing_run_summary" gorm:"column:processing_run_summary;type:jsonb;not null;default:'{}'"`
}

func (ProcessingRunModel) TableName() string { return "application_processing_runs" }
