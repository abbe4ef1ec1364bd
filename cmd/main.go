package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statustracker/internal/service"
	"statustracker/pkg/config"
	"statustracker/pkg/logger"
)

func main() {
	cmd, err := parseCommand(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "statustracker: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cmd, os.Stdout)
	stop()

	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "statustracker %s: %v\n", cmd.name, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *command, stdout io.Writer) error {
	if cmd.name == "init" {
		return runInit(cmd)
	}

	app := NewApplication(ctx, cmd.name, cmd.global)
	if err := app.Initialize(); err != nil {
		app.Shutdown(5 * time.Second)
		return err
	}
	defer app.Shutdown(30 * time.Second)

	switch cmd.name {
	case "update":
		_, err := app.trackerService.Update(app.ctx)
		return err
	case "print":
		year := cmd.year
		if year == 0 {
			year = app.trackerService.CurrentYear()
		}
		return app.trackerService.Report(app.ctx, year, stdout)
	case "watch":
		return app.Watch(cmd.interval)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd.name)
}

// runInit writes a configuration holding only the access key
func runInit(cmd *command) error {
	path := config.ResolvePath(cmd.global.configPath)
	if !cmd.force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite it", path)
		}
	}

	cfg := config.New(cmd.accessKey)
	if cmd.global.dataDir != "" {
		cfg.Data.Dir = cmd.global.dataDir
	}
	if err := cfg.Write(path); err != nil {
		return err
	}
	logger.Infof("configuration written to %s", path)
	return nil
}
