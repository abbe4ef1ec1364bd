package main

import (
	"context"
	"fmt"
	"time"

	"statustracker/internal/jobs"
	"statustracker/internal/service"
	"statustracker/pkg/config"
	"statustracker/pkg/logger"
	"statustracker/pkg/provider/divera"
	mysqlstore "statustracker/pkg/store/mysql"
	"statustracker/pkg/store/parquet"
	redisstore "statustracker/pkg/store/redis"
)

// Application manages the lifecycle of one invocation
type Application struct {
	command string
	opts    globalOptions

	// Infrastructure components
	config      *config.Config
	tableStore  *parquet.Store
	mysqlRepo   *mysqlstore.Repository
	redisClient *redisstore.RedisClient

	// Status source
	diveraClient *divera.Client

	// Service layer
	trackerService *service.TrackerService

	// Background tasks
	jobsManager *jobs.Manager

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Cleanup functions, run in reverse registration order
	cleanupFuncs []func()
}

// NewApplication creates a new Application instance. Every invocation gets
// its own run id.
func NewApplication(parent context.Context, command string, opts globalOptions) *Application {
	ctx, cancel := context.WithCancel(logger.WithRunID(parent))
	return &Application{
		command:      command,
		opts:         opts,
		ctx:          ctx,
		cancel:       cancel,
		cleanupFuncs: make([]func(), 0),
	}
}

// Initialize initializes all application components
func (app *Application) Initialize() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"Configuration", app.initConfig},
		{"Logging", app.initLogger},
		{"Table Store", app.initTableStore},
		{"Redis", app.initRedis},
		{"MySQL", app.initMySQL},
		{"Status Source", app.initStatusSource},
		{"Service Layer", app.initServices},
	}

	for _, step := range steps {
		logger.DebugCtx(app.ctx, "Initializing %s...", step.name)
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
	}

	logger.DebugCtx(app.ctx, "Application initialization completed")
	return nil
}

// Watch runs updates every interval until the context is canceled. A zero
// interval uses watch.interval from the configuration.
func (app *Application) Watch(interval time.Duration) error {
	if interval <= 0 {
		interval = app.config.Watch.Interval
	}
	if err := app.initJobs(interval); err != nil {
		return err
	}

	logger.InfoCtx(app.ctx, "Watching %s, one update every %v", app.tableStore.Dir(), interval)
	app.jobsManager.Start()

	<-app.ctx.Done()
	logger.InfoCtx(app.ctx, "Stopping watch...")
	app.jobsManager.Stop()
	app.jobsManager.Wait()
	return nil
}

// Shutdown releases all resources
func (app *Application) Shutdown(timeout time.Duration) {
	app.cancel()

	if app.jobsManager != nil {
		app.jobsManager.Stop()
		done := make(chan struct{})
		go func() {
			app.jobsManager.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(timeout):
			logger.WarnCtx(app.ctx, "Shutdown timeout, an update may not have completed")
		}
	}

	for i := len(app.cleanupFuncs) - 1; i >= 0; i-- {
		app.cleanupFuncs[i]()
	}
	app.cleanupFuncs = nil
}

// registerCleanup registers cleanup function
func (app *Application) registerCleanup(cleanup func()) {
	app.cleanupFuncs = append(app.cleanupFuncs, cleanup)
}
