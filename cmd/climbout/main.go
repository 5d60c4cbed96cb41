// cmd/climbout/main.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// climbout replays a scenario of departing traffic against the automatic
// initial altitude engine and reports the altitudes it clears aircraft
// to.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/goforj/godump"
	"github.com/spf13/pflag"

	"github.com/climbout/climbout/host"
	"github.com/climbout/climbout/initalt"
	"github.com/climbout/climbout/log"
	"github.com/climbout/climbout/settings"
)

var (
	configFile   = pflag.String("config", "", "YAML file with initial altitude assignment settings")
	catalogFiles = pflag.StringSlice("sids", nil, "SID altitude catalog files (JSON, optionally zstd compressed); may be repeated")
	settingsFile = pflag.String("settings", "", "user settings file (default: settings.json in the user config directory)")
	scenarioFile = pflag.String("scenario", "", "scenario file to replay (YAML or JSON, optionally zstd compressed)")
	logLevel     = pflag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = pflag.String("logdir", "", "log file directory")
	dumpConfig   = pflag.Bool("dump-config", false, "print the effective configuration and exit")
	dumpState    = pflag.Bool("dump-state", false, "print the state of all aircraft after the replay")
	showEvents   = pflag.Bool("events", false, "print all replay events, not just clearances")
)

func main() {
	pflag.Parse()

	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	if err := run(lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "climbout: %v\n", err)
		os.Exit(1)
	}
}

func run(lg *log.Logger) error {
	cfg, err := initalt.LoadConfigFile(*configFile)
	if err != nil {
		return err
	}
	if *dumpConfig {
		godump.Dump(cfg)
		return nil
	}

	if *scenarioFile == "" {
		return fmt.Errorf("no scenario given; use --scenario")
	}
	sc, err := host.LoadScenario(*scenarioFile)
	if err != nil {
		return err
	}

	var catalog *initalt.SIDAltitudeCatalog
	if len(*catalogFiles) > 0 {
		if catalog, err = initalt.LoadCatalog(*catalogFiles, "sids.msgpack", lg); err != nil {
			return err
		}
	}

	path := *settingsFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "climbout", "settings.json")
	}
	st, err := settings.Load(path)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	h := host.New(cfg, catalog, st, sc, lg)
	r, err := h.Run(ctx)
	if err != nil {
		return err
	}

	report := r.Clearances
	if *showEvents {
		report = r.Events
	}
	for _, ev := range report {
		fmt.Println(ev)
	}
	fmt.Printf("%d clearances issued, %d retries still pending\n", len(r.Clearances), r.PendingRetries)

	if *dumpState {
		godump.Dump(r.Aircraft)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return st.Save()
}
