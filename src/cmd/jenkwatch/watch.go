package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jenkwatch-agent/src/ci"
	"jenkwatch-agent/src/events"
	"jenkwatch-agent/src/logger"
	"jenkwatch-agent/src/mcp"
	"jenkwatch-agent/src/notify"
	"jenkwatch-agent/src/poller"
	"jenkwatch-agent/src/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive build watcher (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func runTUI(cmd *cobra.Command) error {
	// The TUI owns the terminal; everything else stays quiet.
	log := logger.NewSilentLogger()
	bus := events.NewInMemoryBus()
	defer bus.Close()

	surface := tui.NewSurface()
	manager := newSessionManager(ci.DefaultJobPath, log)
	coordinator, err := poller.NewCoordinator(
		manager, newSettingsStore(log), bus, notify.NewDesktopSink(log), surface, log)
	if err != nil {
		return err
	}

	restored, err := coordinator.Restore(cmd.Context())
	if err != nil {
		return err
	}
	if !restored {
		return fmt.Errorf("not logged in; run `jenkwatch login` first")
	}

	coordinator.Start()
	defer coordinator.Stop()

	return tui.Run(cmd.Context(), coordinator, bus, surface)
}

var watchConsoleNotifications bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the job headlessly and notify on build transitions",
	Long: `Runs the polling loop without a UI. Build transitions raise desktop
notifications (or log lines with --console-notifications) and, when
REDPANDA_BROKERS is set, are also published to a Kafka-compatible cluster
for downstream automation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.NewConsoleLogger()

		var bus events.Bus
		if appConfig.PublishingEnabled() {
			redpanda, err := events.NewRedpandaBus(appConfig.RedpandaBrokers)
			if err != nil {
				return err
			}
			log.Info("publishing events to %v", appConfig.RedpandaBrokers)
			bus = redpanda
		} else {
			bus = events.NewInMemoryBus()
		}
		defer bus.Close()

		var sink notify.Sink
		if watchConsoleNotifications {
			sink = notify.NewConsoleSink(log)
		} else {
			sink = notify.NewDesktopSink(log)
		}

		manager := newSessionManager(ci.DefaultJobPath, log)
		coordinator, err := poller.NewCoordinator(
			manager, newSettingsStore(log), bus, sink, nil, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		restored, err := coordinator.Restore(ctx)
		if err != nil {
			return err
		}
		if !restored {
			return fmt.Errorf("not logged in; run `jenkwatch login` first")
		}

		settings := coordinator.Settings()
		log.Info("watching %s every %s", settings.JobPath, settings.RefreshInterval.DisplayName())
		coordinator.Start()
		defer coordinator.Stop()

		<-ctx.Done()
		log.Info("shutting down")
		return nil
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve build state over the Model Context Protocol (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdio belongs to the protocol.
		log := logger.NewSilentLogger()

		settings := newSettingsStore(log).Load()
		manager := newSessionManager(settings.JobPath, log)
		restored, err := manager.Restore()
		if err != nil {
			return err
		}
		if !restored {
			return fmt.Errorf("not logged in; run `jenkwatch login` first")
		}

		return mcp.NewServer(manager.Repository(), settings.JobPath).Run()
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchConsoleNotifications, "console-notifications", false,
		"log notifications instead of showing desktop alerts")
}
