// Package main is the entry point for the volinkd volume link daemon.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmsalzman/volink/internal/config"
	"github.com/jmsalzman/volink/internal/daemon"
	"github.com/jmsalzman/volink/internal/device"
	"github.com/jmsalzman/volink/internal/journal"
	"github.com/jmsalzman/volink/internal/link"
	"github.com/jmsalzman/volink/internal/platform"
	"github.com/jmsalzman/volink/internal/platform/fake"
	"github.com/jmsalzman/volink/internal/store"
)

const appName = "volinkd"

var (
	// Build-time variables
	version = "dev"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Run against simulated audio devices (no real volume changes)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Path to config file (default: XDG config dir)")
	flag.Parse()

	if *showVersion {
		println(appName, "version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting volinkd", "version", version)

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.EnsureDataDir(); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Audio backend
	var plat device.Platform
	if *dryRun {
		logger.Info("dry-run mode, using simulated devices")
		sim := fake.New()
		sim.AddOutput("sim-a", "Simulated Speakers", 0.50)
		sim.AddOutput("sim-b", "Simulated Headphones", 0.25)
		plat = sim
	} else {
		plat, err = platform.New(logger)
		if err != nil {
			logger.Error("failed to initialize audio backend", "error", err)
			os.Exit(1)
		}
	}

	// Shared state carries runtime toggles from the CLI.
	state, err := store.Load()
	if err != nil {
		logger.Error("failed to load shared state", "error", err)
		os.Exit(1)
	}

	// Device pair: shared state wins over config, so `volink use` takes
	// effect without a config edit.
	aID, aName := cfg.Devices.AID, cfg.Devices.AName
	bID, bName := cfg.Devices.BID, cfg.Devices.BName
	if state.HasDevicePair() {
		aID, aName = state.DeviceAID, state.DeviceAName
		bID, bName = state.DeviceBID, state.DeviceBName
	}

	a := resolveSlot(plat, aID, aName, logger)
	b := resolveSlot(plat, bID, bName, logger)
	if a == nil || b == nil {
		logger.Warn("device pair incomplete, link will idle until devices are selected",
			"a_resolved", a != nil, "b_resolved", b != nil)
	}

	linker := link.New(a, b, logger)
	linker.SetPollInterval(cfg.Link.PollInterval.Duration())
	linker.SetRecoveryInterval(cfg.Link.RecoveryInterval.Duration())
	linker.SetTolerance(cfg.Link.Tolerance)
	linker.SetEnabled(cfg.Link.Enabled && state.LinkEnabled)

	// Sync journal
	var jnl *journal.Journal
	if cfg.Journal.Enabled {
		jnl, err = journal.Open(config.JournalPath())
		if err != nil {
			logger.Warn("failed to open journal, sync history disabled", "error", err)
		} else {
			maxEntries := cfg.Journal.MaxEntries
			linker.SetSyncCallback(func(ev link.Event) {
				if err := jnl.Record(ev); err != nil {
					logger.Warn("failed to record sync event", "error", err)
					return
				}
				if maxEntries > 0 && jnl.Count() > maxEntries {
					if err := jnl.Prune(maxEntries); err != nil {
						logger.Warn("failed to prune journal", "error", err)
					}
				}
			})
		}
	}

	linker.Start()
	logger.Info("volume link started",
		"enabled", linker.Enabled(),
		"poll_interval", cfg.Link.PollInterval.Duration(),
		"tolerance", cfg.Link.Tolerance)

	// Config hot-reload
	configWatcher, err := daemon.NewConfigWatcher(path, logger)
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		configWatcher.SetReloadCallback(func(newCfg *config.Config) {
			logger.Info("config reloaded")
			linker.SetPollInterval(newCfg.Link.PollInterval.Duration())
			linker.SetRecoveryInterval(newCfg.Link.RecoveryInterval.Duration())
			linker.SetTolerance(newCfg.Link.Tolerance)

			current, err := store.Load()
			if err != nil {
				logger.Warn("failed to reload shared state", "error", err)
				return
			}
			linker.SetEnabled(newCfg.Link.Enabled && current.LinkEnabled)
			if !current.HasDevicePair() && newCfg.HasDevicePair() {
				applyPair(linker, plat, newCfg.Devices.AID, newCfg.Devices.AName,
					newCfg.Devices.BID, newCfg.Devices.BName, logger)
			}
		})
		configWatcher.SetErrorCallback(func(err error) {
			logger.Warn("config reload failed, keeping previous config", "error", err)
		})
		if err := configWatcher.Start(cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
			configWatcher = nil
		}
	}

	// Shared state watcher picks up CLI toggles and device selection.
	stateWatcher := daemon.NewStateWatcher(config.StatePath(), logger)
	stateWatcher.SetChangeCallback(func() {
		current, err := store.Load()
		if err != nil {
			logger.Warn("failed to reload shared state", "error", err)
			return
		}

		activeCfg := cfg
		if configWatcher != nil {
			activeCfg = configWatcher.CurrentConfig()
		}
		linker.SetEnabled(activeCfg.Link.Enabled && current.LinkEnabled)

		if current.HasDevicePair() {
			applyPair(linker, plat, current.DeviceAID, current.DeviceAName,
				current.DeviceBID, current.DeviceBName, logger)
		}
	})
	if err := stateWatcher.Start(); err != nil {
		logger.Warn("failed to start state watcher", "error", err)
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	stateWatcher.Stop()
	if configWatcher != nil {
		configWatcher.Stop()
	}
	linker.Stop()
	if jnl != nil {
		if err := jnl.Close(); err != nil {
			logger.Warn("error closing journal", "error", err)
		}
	}

	logger.Info("volinkd stopped")
}

// resolveSlot resolves one endpoint slot, trying the stored ID first and
// falling back to the display name. Either key may be empty.
func resolveSlot(p device.Platform, id, name string, logger *slog.Logger) *device.Endpoint {
	if id != "" {
		if ep := device.ResolveByID(p, id, logger); ep != nil {
			return ep
		}
	}
	if name != "" {
		if ep := device.ResolveByName(p, name, logger); ep != nil {
			return ep
		}
	}
	return nil
}

// applyPair swaps the linker onto a new device pair. A pair that already
// occupies both slots is left alone, so unrelated state-file writes (a link
// toggle, say) do not re-resolve and re-bind the devices.
func applyPair(l *link.Linker, p device.Platform, aID, aName, bID, bName string, logger *slog.Logger) {
	st := l.Status()
	if st.A != nil && st.B != nil && st.A.ID == aID && st.B.ID == bID {
		return
	}

	a := resolveSlot(p, aID, aName, logger)
	b := resolveSlot(p, bID, bName, logger)
	if a == nil || b == nil {
		logger.Warn("new device pair did not fully resolve, keeping current pair",
			"a_resolved", a != nil, "b_resolved", b != nil)
		return
	}
	l.SetEndpoints(a, b)
	logger.Info("device pair updated", "a", a.Name(), "b", b.Name())
}
