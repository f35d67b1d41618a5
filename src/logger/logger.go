// Package logger defines the logging interface used across the application.
package logger

import (
	"fmt"
	"os"
)

// Logger is implemented by the console and silent loggers. The silent form
// exists because the TUI and the MCP server own the terminal and stdio;
// stray log lines would corrupt their output.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ConsoleLogger writes human-readable lines to stdout/stderr. Used by the
// headless watcher and the one-shot CLI commands.
type ConsoleLogger struct {
	// Verbose enables Debug output.
	Verbose bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (c *ConsoleLogger) Info(msg string, args ...any) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Error(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...any) {
	if c.Verbose {
		fmt.Printf("[DEBUG] "+msg+"\n", args...)
	}
}

// SilentLogger discards everything.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...any)  {}
func (s *SilentLogger) Error(msg string, args ...any) {}
func (s *SilentLogger) Debug(msg string, args ...any) {}
