// Package main provides the jenkwatch CLI: a Jenkins build watcher with a
// terminal UI, a headless watch mode, and an MCP server surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jenkwatch-agent/src/config"
	"jenkwatch-agent/src/logger"
	"jenkwatch-agent/src/session"
	"jenkwatch-agent/src/store"
)

const version = "1.0.0"

var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "jenkwatch",
	Short: "jenkwatch - a Jenkins build watcher for the terminal",
	Long: `jenkwatch polls a Jenkins job on a schedule, keeps an authenticated
session alive, and raises notifications when the latest build's outcome
changes.

Credentials live in the OS keyring (run 'jenkwatch login' once); settings
live in ~/.config/jenkwatch/settings.yaml. Set REDPANDA_BROKERS to also
publish build transitions to a Kafka-compatible cluster in watch mode.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		appConfig = config.Load()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Running without a subcommand opens the TUI.
		return runTUI(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jenkwatch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("jenkwatch " + version)
	},
}

// newSessionManager wires the credential store and repository factory for
// one-shot commands (login, logout, jobs, mcp) that do not need the timer.
func newSessionManager(jobPath string, log logger.Logger) *session.Manager {
	return session.NewManager(store.NewKeyringStore(), jobPath, nil, log)
}

// newSettingsStore opens the settings file configured by the environment.
func newSettingsStore(log logger.Logger) store.SettingsStore {
	return store.NewFileSettingsStore(appConfig.SettingsPath, log)
}

func main() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
