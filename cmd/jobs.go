package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"statustracker/internal/jobs"
	"statustracker/internal/service"
	"statustracker/pkg/logger"
)

func (app *Application) initJobs(interval time.Duration) error {
	if app.trackerService == nil {
		return fmt.Errorf("service layer not initialized")
	}

	manager := jobs.NewManager(app.ctx)
	manager.RegisterAligned(newUpdateJob(interval, app.trackerService))

	app.jobsManager = manager
	return nil
}

// updateJob records one snapshot per interval, on interval boundaries.
type updateJob struct {
	interval time.Duration
	tracker  *service.TrackerService
}

func newUpdateJob(interval time.Duration, svc *service.TrackerService) jobs.Job {
	return &updateJob{
		interval: interval,
		tracker:  svc,
	}
}

func (j *updateJob) Name() string { return "status-update" }

func (j *updateJob) Interval() time.Duration { return j.interval }

func (j *updateJob) Run(ctx context.Context) error {
	if j.tracker == nil {
		return fmt.Errorf("tracker service not configured")
	}

	ctx = logger.WithRunID(ctx)
	res, err := j.tracker.Update(ctx)
	if errors.Is(err, service.ErrUpdateInProgress) {
		logger.DebugCtx(ctx, "another instance is updating, skipping this cycle")
		return nil
	}
	if err != nil {
		return err
	}

	logger.DebugCtx(ctx, "update %s done: %d rows, %d columns", res.Path, res.Rows, res.Columns)
	return nil
}
