package testutil

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSilenceLogs(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	defer func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	}()

	SilenceLogs()

	if got := zerolog.GlobalLevel(); got != zerolog.ErrorLevel {
		t.Errorf("GlobalLevel() = %v, want error", got)
	}
	if log.Debug().Enabled() || log.Info().Enabled() {
		t.Error("debug and info events should be disabled")
	}
}

func TestWaitForCondition(t *testing.T) {
	var calls atomic.Int32
	start := time.Now()
	WaitForCondition(t, func() bool { return calls.Add(1) >= 3 }, time.Second)

	if calls.Load() != 3 {
		t.Errorf("condition checked %d times, want 3", calls.Load())
	}
	if elapsed := time.Since(start); elapsed < 2*PollInterval {
		t.Errorf("returned after %v, expected at least two poll intervals", elapsed)
	}
}

func TestTestContextHasDeadline(t *testing.T) {
	ctx, cancel := TestContext()
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("TestContext() has no deadline")
	}
	if remaining := time.Until(deadline); remaining > DefaultTimeout || remaining <= 0 {
		t.Errorf("deadline in %v, want within %v", remaining, DefaultTimeout)
	}
}
