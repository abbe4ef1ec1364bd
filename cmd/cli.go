package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"
)

const usage = `Usage: statustracker [--config path] [--data dir] [--debug] <command> [flags]

Commands:
  init    --access-key KEY [--force]   write a new configuration file
  update                               record the current statuses
  print   [--year N]                   print the on-duty summary of a year
  watch   [--interval 15m]             record statuses periodically
`

// globalOptions are accepted before the command name
type globalOptions struct {
	configPath string
	dataDir    string
	debug      bool
}

// command is one parsed invocation
type command struct {
	name   string
	global globalOptions

	// init
	accessKey string
	force     bool

	// print
	year int

	// watch
	interval time.Duration
}

var errUsage = errors.New("invalid usage")

func parseCommand(args []string, stderr io.Writer) (*command, error) {
	fs := flag.NewFlagSet("statustracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	cmd := &command{}
	fs.StringVar(&cmd.global.configPath, "config", "", "path of the configuration file")
	fs.StringVar(&cmd.global.dataDir, "data", "", "directory of the status files")
	fs.BoolVar(&cmd.global.debug, "debug", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: missing command", errUsage)
	}

	cmd.name = fs.Arg(0)
	sub := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	sub.SetOutput(stderr)

	switch cmd.name {
	case "init":
		sub.StringVar(&cmd.accessKey, "access-key", "", "Divera 24/7 access key")
		sub.BoolVar(&cmd.force, "force", false, "overwrite an existing configuration file")
	case "update":
	case "print":
		sub.IntVar(&cmd.year, "year", 0, "year to summarize (default: current year)")
	case "watch":
		sub.DurationVar(&cmd.interval, "interval", 0, "time between updates (default: watch.interval)")
	default:
		fs.Usage()
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, cmd.name)
	}

	if err := sub.Parse(fs.Args()[1:]); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if sub.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, sub.Args())
	}

	switch cmd.name {
	case "init":
		if cmd.accessKey == "" {
			return nil, fmt.Errorf("%w: init requires --access-key", errUsage)
		}
	case "print":
		if cmd.year < 0 {
			return nil, fmt.Errorf("%w: invalid year %d", errUsage, cmd.year)
		}
	case "watch":
		if cmd.interval < 0 {
			return nil, fmt.Errorf("%w: invalid interval %v", errUsage, cmd.interval)
		}
	}

	return cmd, nil
}
