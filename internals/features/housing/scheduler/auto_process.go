package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"dormitory_backend/internals/features/housing/dto"
	"dormitory_backend/internals/features/housing/model"
)

type AutoProcessor interface {
	AutoProcess(ctx context.Context, trigger model.ProcessingTrigger) (*dto.ProcessingSummaryResponse, error)
}

const jobTimeout = 2 * time.Minute

// StartAutoProcessCron menjadwalkan batch auto-process. schedule kosong = nonaktif
// (return nil, nil). Run yang masih jalan tidak ditumpuk.
func StartAutoProcessCron(schedule string, proc AutoProcessor) (*cron.Cron, error) {
	if schedule == "" {
		logrus.Info("[AUTO-PROCESS] AUTO_PROCESS_CRON kosong, scheduler tidak dijalankan")
		return nil, nil
	}

	cl := cron.PrintfLogger(logrus.StandardLogger())
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	if _, err := c.AddFunc(schedule, func() { runOnce(context.Background(), proc) }); err != nil {
		return nil, err
	}
	logrus.WithField("schedule", schedule).Info("[AUTO-PROCESS] started")
	c.Start()
	return c, nil
}

// StopAutoProcessCron menunggu job yang sedang jalan selesai (maks ctx).
func StopAutoProcessCron(ctx context.Context, c *cron.Cron) {
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		logrus.Warn("[AUTO-PROCESS] stop timeout, job masih berjalan")
	}
}

func runOnce(parent context.Context, proc AutoProcessor) {
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	out, err := proc.AutoProcess(ctx, model.TriggerScheduled)
	if err != nil {
		logrus.WithError(err).Error("[AUTO-PROCESS] run gagal")
		return
	}
	logrus.WithFields(logrus.Fields{
		"run_id":    out.RunID,
		"processed": out.Processed,
		"allocated": out.Allocated,
		"approved":  out.Approved,
		"rejected":  out.Rejected,
	}).Info("[AUTO-PROCESS] run selesai")
}
