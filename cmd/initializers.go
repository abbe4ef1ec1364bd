package main

import (
	"statustracker/internal/service"
	"statustracker/pkg/config"
	"statustracker/pkg/interfaces"
	"statustracker/pkg/logger"
	"statustracker/pkg/provider/divera"
	mysqlstore "statustracker/pkg/store/mysql"
	"statustracker/pkg/store/parquet"
	redisstore "statustracker/pkg/store/redis"
)

// initConfig loads the configuration file; --data takes precedence over data.dir
func (app *Application) initConfig() error {
	if err := config.Init(app.opts.configPath); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	if app.opts.dataDir != "" {
		app.config.Data.Dir = app.opts.dataDir
	}
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(app.config.Logger, app.opts.debug); err != nil {
		return err
	}
	app.registerCleanup(func() {
		_ = logger.Sync()
	})
	return nil
}

func (app *Application) initTableStore() error {
	app.tableStore = parquet.NewStore(app.config.Data.Dir)
	logger.DebugCtx(app.ctx, "Status files are kept in %s", app.tableStore.Dir())
	return nil
}

// initRedis connects the update lock backend. Without redis.addr writers
// are not serialized.
func (app *Application) initRedis() error {
	if app.config.Redis.Addr == "" {
		logger.DebugCtx(app.ctx, "Redis not configured, update lock disabled")
		return nil
	}

	client, err := redisstore.NewRedisClient(app.ctx, &app.config.Redis)
	if err != nil {
		return err
	}

	app.redisClient = client
	app.registerCleanup(func() {
		client.Close()
		logger.DebugCtx(app.ctx, "Redis connection has been closed")
	})
	return nil
}

// initMySQL connects the observation mirror. The mirror is optional, so a
// failure only disables it.
func (app *Application) initMySQL() error {
	if !app.config.MySQL.Enabled {
		return nil
	}

	repo, err := mysqlstore.NewRepository(app.config.MySQL.DSN)
	if err != nil {
		logger.WarnCtx(app.ctx, "MySQL mirror disabled: %v", err)
		return nil
	}
	if err := repo.Migrate(app.ctx); err != nil {
		logger.WarnCtx(app.ctx, "MySQL mirror disabled: %v", err)
		repo.Close()
		return nil
	}

	app.mysqlRepo = repo
	app.registerCleanup(func() {
		repo.Close()
		logger.DebugCtx(app.ctx, "MySQL connection has been closed")
	})
	return nil
}

// initStatusSource builds the Divera client for commands that record
// statuses; print only reads tables and runs without an access key.
func (app *Application) initStatusSource() error {
	if !app.recordsStatuses() {
		return nil
	}
	if err := app.config.RequireAccessKey(); err != nil {
		return err
	}
	app.diveraClient = divera.NewClient(&app.config.Divera, divera.LabelClassifier(app.config.Divera.OffDutyLabel))
	return nil
}

// initServices initializes service layer
func (app *Application) initServices() error {
	var source interfaces.StatusSource
	if app.diveraClient != nil {
		source = app.diveraClient
	}
	app.trackerService = service.NewTrackerService(source, app.tableStore)

	if app.redisClient != nil {
		client := app.redisClient.GetClient()
		ttl := app.config.Redis.LockTTL
		app.trackerService.SetLockFactory(func(path string) interfaces.UpdateLock {
			return redisstore.NewUpdateLock(client, redisstore.LockKey(path), ttl)
		})
	}

	if app.mysqlRepo != nil {
		app.trackerService.SetMirror(app.mysqlRepo.Observation)
	}
	return nil
}

func (app *Application) recordsStatuses() bool {
	return app.command == "update" || app.command == "watch"
}
