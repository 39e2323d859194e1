package testutil

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprlingo/internal/observability"
)

const (
	// DefaultTimeout bounds a single test's blocking waits.
	DefaultTimeout = 5 * time.Second
	// PollInterval is how often WaitForCondition re-checks.
	PollInterval = 10 * time.Millisecond
)

// SilenceLogs sends logs to io.Discard and keeps only errors, for packages
// whose tests run whole sessions.
func SilenceLogs() {
	observability.SetOutput(io.Discard)
	observability.InitLogger("error", false)
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultTimeout)
}

// WaitForCondition polls condition every PollInterval until it holds or
// timeout passes.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(PollInterval)
	defer tick.Stop()

	for !condition() {
		select {
		case <-deadline.C:
			t.Fatalf("Condition not met within %v", timeout)
		case <-tick.C:
		}
	}
}

// CaptureOutput captures stdout for testing
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	return string(out)
}
