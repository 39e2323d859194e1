// Package injection hands finished session text to the desktop.
package injection

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Injector delivers text somewhere the user can paste or read it.
type Injector interface {
	Inject(ctx context.Context, text string) error
}

var ErrEmpty = errors.New("cannot inject empty text")

// Clipboard copies text with wl-copy.
type Clipboard struct {
	Timeout time.Duration
	// Run executes name with stdin attached. Defaults to os/exec.
	Run func(ctx context.Context, stdin string, name string, args ...string) error
}

func NewClipboard() Clipboard {
	return Clipboard{Timeout: 3 * time.Second, Run: run}
}

func (c Clipboard) Inject(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmpty
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runFn := c.Run
	if runFn == nil {
		runFn = run
	}
	if err := runFn(ctx, text, "wl-copy"); err != nil {
		return fmt.Errorf("wl-copy failed: %w", err)
	}
	return nil
}

func CheckClipboardAvailable() error {
	if _, err := exec.LookPath("wl-copy"); err != nil {
		return fmt.Errorf("wl-copy not found: %w (install wl-clipboard)", err)
	}
	return nil
}

func run(ctx context.Context, stdin string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.Run()
}
