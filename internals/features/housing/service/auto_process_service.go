package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"dormitory_backend/internals/features/housing/dto"
	"dormitory_backend/internals/features/housing/model"
	rmodel "dormitory_backend/internals/features/registry/model"
	"dormitory_backend/internals/metrics"
)

type autoDecision struct {
	ApplicationID int64                   `json:"application_id"`
	StudentID     int64                   `json:"student_id"`
	Status        model.ApplicationStatus `json:"status"`
	RoomID        *int64                  `json:"room_id,omitempty"`
}

// AutoProcess decides every pending application in one transaction:
// non-residents get the first free room (or wait approved), everybody else
// is rejected. The run is recorded alongside the decisions.
func (s *HousingService) AutoProcess(ctx context.Context, trigger model.ProcessingTrigger) (*dto.ProcessingSummaryResponse, error) {
	t0 := time.Now()
	started := s.now()
	run := model.ProcessingRunModel{
		ProcessingRunID:        uuid.New(),
		ProcessingRunTrigger:   trigger,
		ProcessingRunStartedAt: started,
	}
	log := s.Log.WithFields(logrus.Fields{"run_id": run.ProcessingRunID.String(), "trigger": trigger})

	err := s.Store.Transaction(ctx, func(tx Store) error {
		pending, err := tx.LockPendingApplications(ctx)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(pending))
		for i := range pending {
			ids = append(ids, pending[i].ApplicationStudentID)
		}
		students := map[int64]*rmodel.StudentModel{}
		if len(ids) > 0 {
			found, err := s.Directory.FindByIDs(ctx, ids)
			if err != nil {
				return err
			}
			for i := range found {
				students[found[i].ID] = &found[i]
			}
		}

		decisions := make([]autoDecision, 0, len(pending))
		appIDs := make(pq.Int64Array, 0, len(pending))
		for i := range pending {
			app := &pending[i]
			st, ok := students[app.ApplicationStudentID]
			switch {
			case !ok:
				app.ApplicationStatus = model.ApplicationRejected
				app.ApplicationRejectionReason = strPtr(ReasonStudentMissing)
				run.ProcessingRunRejected++
			case st.IsForeign:
				allocated, err := s.allocateFirstFree(ctx, tx, app, ReasonAutoAwaitingRoom)
				if err != nil {
					return err
				}
				if allocated {
					run.ProcessingRunAllocated++
				} else {
					run.ProcessingRunApproved++
				}
			default:
				app.ApplicationStatus = model.ApplicationRejected
				app.ApplicationRejectionReason = strPtr(ReasonNotNonResident)
				run.ProcessingRunRejected++
			}
			if err := tx.SaveApplication(ctx, app); err != nil {
				return err
			}
			run.ProcessingRunProcessed++
			appIDs = append(appIDs, app.ApplicationID)
			decisions = append(decisions, autoDecision{
				ApplicationID: app.ApplicationID,
				StudentID:     app.ApplicationStudentID,
				Status:        app.ApplicationStatus,
				RoomID:        app.ApplicationAllocatedRoomID,
			})
		}

		summary, err := sonic.Marshal(map[string]any{"decisions": decisions})
		if err != nil {
			return err
		}
		run.ProcessingRunApplicationIDs = appIDs
		run.ProcessingRunSummary = datatypes.JSON(summary)
		run.ProcessingRunFinishedAt = s.now()
		return tx.CreateProcessingRun(ctx, &run)
	})

	elapsed := time.Since(t0)
	if err != nil {
		metrics.RecordAutoProcess(string(trigger), elapsed, 0, 0, 0, false)
		log.WithError(err).Error("auto processing failed, nothing committed")
		return nil, err
	}

	metrics.RecordAutoProcess(string(trigger), elapsed,
		run.ProcessingRunAllocated, run.ProcessingRunApproved, run.ProcessingRunRejected, true)
	log.WithFields(logrus.Fields{
		"processed": run.ProcessingRunProcessed,
		"allocated": run.ProcessingRunAllocated,
		"approved":  run.ProcessingRunApproved,
		"rejected":  run.ProcessingRunRejected,
	}).Info("auto processing finished")

	out := dto.FromProcessingRunModel(&run)
	return &out, nil
}
