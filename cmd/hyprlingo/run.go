package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leonardotrapani/hyprlingo/internal/bus"
	"github.com/leonardotrapani/hyprlingo/internal/config"
	"github.com/leonardotrapani/hyprlingo/internal/injection"
	"github.com/leonardotrapani/hyprlingo/internal/observability"
	"github.com/leonardotrapani/hyprlingo/internal/recording"
	"github.com/leonardotrapani/hyprlingo/internal/session"
	"github.com/leonardotrapani/hyprlingo/internal/tui"
	"github.com/leonardotrapani/hyprlingo/internal/view"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type runFlags struct {
	mode   string
	lang   string
	server string
	input  string
	plain  bool
	linger time.Duration
	copy   string
}

func runCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a session in the foreground",
		Long: `Capture audio, stream it to the recognizer and show the transcript and
translation live. Press q or Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := applyRunFlags(cfg, f); err != nil {
				return err
			}
			return runSession(cmd.Context(), cfg, f)
		},
	}

	cmd.Flags().StringVar(&f.mode, "mode", "", "Language mode: auto, fixed or multilang")
	cmd.Flags().StringVar(&f.lang, "lang", "", "Spoken language for fixed mode (implies --mode fixed)")
	cmd.Flags().StringVar(&f.server, "server", "", "Recognizer base URL")
	cmd.Flags().StringVar(&f.input, "input", "", "Replay a WAV file instead of the microphone")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "Print transcript lines instead of the live view")
	cmd.Flags().StringVar(&f.copy, "copy", "", "Copy the result to the clipboard when the session ends: transcript or translation")
	cmd.Flags().DurationVar(&f.linger, "linger", 3*time.Second, "With --input, how long to wait for final results after the file ends")

	return cmd
}

// applyRunFlags layers command line choices over the loaded config.
func applyRunFlags(cfg *config.Config, f runFlags) error {
	if f.server != "" {
		cfg.Server.URL = f.server
	}
	if f.mode != "" {
		cfg.Session.Mode = f.mode
	}
	if f.lang != "" {
		cfg.Session.Language = f.lang
		if f.mode == "" {
			cfg.Session.Mode = string(session.ModeFixed)
		}
	}
	if f.input != "" {
		cfg.Recording.Backend = recording.BackendWAV
		cfg.Recording.File = f.input
	}
	switch f.copy {
	case "", "transcript", "translation":
	default:
		return fmt.Errorf("--copy must be transcript or translation, got %q", f.copy)
	}
	return cfg.Validate()
}

func runSession(ctx context.Context, cfg *config.Config, f runFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	params, err := cfg.SessionParams()
	if err != nil {
		return err
	}
	header, err := cfg.ServerHeader()
	if err != nil {
		return err
	}

	// a WAV replay ends the session on its own once the file is spent
	replayed := make(chan (<-chan struct{}), 1)
	opts := session.Options{
		ServerURL: cfg.Server.URL,
		Header:    header,
		Recording: cfg.ToRecordingConfig(),
		NewSource: func(rc recording.Config) (recording.Source, error) {
			src, err := recording.New(rc)
			if w, ok := src.(*recording.WAVSource); ok {
				replayed <- w.Done()
			}
			return src, err
		},
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var final session.Snapshot
	if f.plain || !isTerminal(os.Stdout) {
		final, err = runPlain(ctx, opts, params, replayed, f.linger)
	} else {
		final, err = runLive(ctx, opts, params, replayed, f.linger, cfg.Logging.Level)
	}
	if f.copy != "" && final.SessionID != "" {
		copyResult(final, f.copy == "translation")
	}
	return err
}

// isTerminal reports whether f can host the live view.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func copyResult(final session.Snapshot, translation bool) {
	text := view.Text(final, translation)
	if text == "" {
		return
	}
	if err := injection.NewClipboard().Inject(context.Background(), text); err != nil {
		fmt.Fprintln(os.Stderr, tui.StyleWarning.Render("copy failed: "+err.Error()))
		return
	}
	fmt.Fprintln(os.Stderr, tui.StyleMuted.Render("copied to clipboard"))
}

func runPlain(ctx context.Context, opts session.Options, params session.Params, replayed <-chan (<-chan struct{}), linger time.Duration) (session.Snapshot, error) {
	printer := view.NewPrinter(os.Stdout)
	ended := make(chan session.Snapshot, 1)
	opts.OnSnapshot = printer.Update
	opts.OnEnd = func(s session.Snapshot) { ended <- s }

	ctrl := session.NewController(opts)
	if _, err := ctrl.Start(ctx, params); err != nil {
		return ctrl.Snapshot(), err
	}
	go stopAfterReplay(ctx, ctrl, replayed, linger)

	var final session.Snapshot
	select {
	case <-ctx.Done():
		ctrl.Stop()
		final = <-ended
	case final = <-ended:
	}
	printer.Summary(final)
	return final, final.Err
}

func runLive(ctx context.Context, opts session.Options, params session.Params, replayed <-chan (<-chan struct{}), linger time.Duration, logLevel string) (session.Snapshot, error) {
	// the live view owns the terminal; logs go to a file next to the socket
	if dir, err := bus.Dir(); err == nil {
		if file, err := os.OpenFile(filepath.Join(dir, "run.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
			defer file.Close()
			observability.SetOutput(file)
			observability.InitLogger(logLevel, false)
		}
	}

	model := view.NewModel(view.NewStyles(lipgloss.DefaultRenderer()))
	p := tea.NewProgram(model, tea.WithContext(ctx))

	opts.OnSnapshot = func(s session.Snapshot) { p.Send(view.SnapshotMsg(s)) }
	opts.OnLevel = func(l float64) { p.Send(view.LevelMsg(l)) }
	opts.OnEnd = func(s session.Snapshot) { p.Send(view.EndedMsg(s)) }
	ctrl := session.NewController(opts)

	startCtx, cancelStart := context.WithCancel(ctx)
	started := make(chan error, 1)
	go func() {
		_, err := ctrl.Start(startCtx, params)
		if err != nil {
			p.Send(view.EndedMsg(ctrl.Snapshot()))
		}
		started <- err
	}()
	go stopAfterReplay(ctx, ctrl, replayed, linger)

	out, runErr := p.Run()
	cancelStart()
	startErr := <-started
	ctrl.Stop()

	final := ctrl.Snapshot()

	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}
	if runErr != nil {
		return final, fmt.Errorf("live view: %w", runErr)
	}
	if startErr != nil {
		return final, startErr
	}
	if m, ok := out.(view.Model); ok && !m.Stopped {
		return final, m.Snapshot().Err
	}
	return final, nil
}

// stopAfterReplay stops the session once a replayed file has been sent and
// the recognizer had linger to finish.
func stopAfterReplay(ctx context.Context, ctrl *session.Controller, replayed <-chan (<-chan struct{}), linger time.Duration) {
	var done <-chan struct{}
	select {
	case done = <-replayed:
	case <-ctx.Done():
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
		return
	}
	select {
	case <-time.After(linger):
		ctrl.Stop()
	case <-ctx.Done():
	}
}
