package daemon

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/leonardotrapani/hyprlingo/internal/bus"
	"github.com/leonardotrapani/hyprlingo/internal/config"
	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/notify"
	"github.com/leonardotrapani/hyprlingo/internal/observability"
	"github.com/leonardotrapani/hyprlingo/internal/recording"
	"github.com/leonardotrapani/hyprlingo/internal/session"
	"github.com/rs/zerolog"
)

type Options struct {
	Config   *config.Config
	Notifier notify.Notifier
	Version  string

	// NewSource overrides capture construction, for tests.
	NewSource func(recording.Config) (recording.Source, error)
	// Watch, when set, is subscribed to so file edits apply to the next
	// session.
	Watch *config.Manager
}

// Daemon owns one session controller and serves the control socket.
type Daemon struct {
	mu       sync.RWMutex
	notifier notify.Notifier
	params   session.Params
	cfg      *config.Config

	ctx    context.Context
	cancel context.CancelFunc

	ctrl      *session.Controller
	newSource func(recording.Config) (recording.Source, error)
	version   string
	logger    zerolog.Logger
}

func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	n := opts.Notifier
	if n == nil {
		n = notify.Desktop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		notifier:  n,
		ctx:       ctx,
		cancel:    cancel,
		newSource: opts.NewSource,
		version:   opts.Version,
		logger:    observability.Component("daemon"),
	}

	sessionOpts, params, err := d.sessionOptions(opts.Config)
	if err != nil {
		cancel()
		return nil, err
	}
	d.params = params
	d.cfg = opts.Config
	d.ctrl = session.NewController(sessionOpts)

	if opts.Watch != nil {
		opts.Watch.OnChange(func(c *config.Config) {
			if err := d.Apply(c); err != nil {
				d.logger.Warn().Err(err).Msg("ignoring reloaded config")
			}
		})
	}
	return d, nil
}

func (d *Daemon) sessionOptions(cfg *config.Config) (session.Options, session.Params, error) {
	params, err := cfg.SessionParams()
	if err != nil {
		return session.Options{}, session.Params{}, err
	}
	header, err := cfg.ServerHeader()
	if err != nil {
		return session.Options{}, session.Params{}, err
	}
	return session.Options{
		ServerURL: cfg.Server.URL,
		Header:    header,
		Recording: cfg.ToRecordingConfig(),
		NewSource: d.newSource,
		OnEnd:     d.sessionEnded,
	}, params, nil
}

// Apply makes cfg the configuration of the next session. A running session
// is not affected.
func (d *Daemon) Apply(cfg *config.Config) error {
	opts, params, err := d.sessionOptions(cfg)
	if err != nil {
		return err
	}
	d.ctrl.Reconfigure(opts)

	d.mu.Lock()
	d.params = params
	d.cfg = cfg
	d.mu.Unlock()

	d.logger.Info().Str("mode", string(params.Mode)).Msg("configuration applied to next session")
	return nil
}

func (d *Daemon) Controller() *session.Controller {
	return d.ctrl
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			d.logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	d.mu.RLock()
	metrics, metricsAddr := d.cfg.Metrics.Enabled, d.cfg.Metrics.Addr
	d.mu.RUnlock()
	if metrics {
		go func() {
			status := func() string { return string(d.ctrl.Status()) }
			if err := observability.ServeMetrics(d.ctx, metricsAddr, d.version, status); err != nil {
				d.logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	d.logger.Info().Msg("daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				d.ctrl.Stop()
				d.logger.Info().Msg("shutdown complete")
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

// Shutdown stops the session and makes Run return.
func (d *Daemon) Shutdown() {
	d.cancel()
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		d.logger.Debug().Err(err).Msg("client read error")
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}
	cmd := line[0]

	switch cmd {
	case bus.CmdToggle:
		fmt.Fprintln(c, d.toggle())
	case bus.CmdStatus:
		fmt.Fprintln(c, StatusLine(d.ctrl.Snapshot()))
	case bus.CmdStop:
		if d.ctrl.Status() == session.Idle {
			fmt.Fprint(c, "OK idle\n")
			return
		}
		d.ctrl.Stop()
		fmt.Fprint(c, "OK stopped\n")
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s version=%s\n", bus.ProtoVer, d.version)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		d.logger.Warn().Str("cmd", string(cmd)).Msg("unknown command")
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

func (d *Daemon) toggle() string {
	if d.ctrl.Status() != session.Idle {
		d.ctrl.Stop()
		return "OK stopped"
	}

	d.mu.RLock()
	params := d.params
	d.mu.RUnlock()

	id, err := d.ctrl.Start(d.ctx, params)
	if err != nil {
		go d.notifier.Error(err.Error())
		return "ERR start: " + oneLine(err.Error())
	}
	go d.notifier.SessionStarted(string(params.Mode))
	return "OK started session=" + id
}

func (d *Daemon) sessionEnded(s session.Snapshot) {
	if s.Err != nil {
		go d.notifier.Error(s.Err.Error())
		return
	}
	summary := fmt.Sprintf("%d lines, %d translations", len(s.Lines), len(s.Translations))
	go d.notifier.SessionEnded(summary)
}

// StatusLine is the 's' reply: space separated key=value pairs.
func StatusLine(s session.Snapshot) string {
	fields := []string{"STATUS", "status=" + string(s.Status)}
	if s.SessionID != "" {
		lang := s.Lock.Display
		if lang == "" {
			lang = "-"
		}
		fields = append(fields,
			"session="+s.SessionID,
			"mode="+string(s.Mode),
			"lang="+lang,
			"lock="+s.Lock.Status.String(),
			fmt.Sprintf("lines=%d", len(s.Lines)),
			fmt.Sprintf("translations=%d", len(s.Translations)),
			fmt.Sprintf("sent=%d", s.FramesSent),
			fmt.Sprintf("dropped=%d", s.FramesDropped),
			fmt.Sprintf("ignored=%d", s.Inbound.Ignored()),
		)
	}
	if s.Err != nil {
		fields = append(fields, "error="+url.PathEscape(s.Err.Error()))
	}
	return strings.Join(fields, " ")
}

// DescribeStatus turns a status reply into text for the terminal.
func DescribeStatus(reply string) string {
	kind, f := bus.ParseReply(reply)
	if kind != "STATUS" {
		return reply
	}
	lastErr := ""
	if e, err := url.PathUnescape(f["error"]); err == nil && e != "" {
		lastErr = "\nlast error: " + e
	}
	if f["session"] == "" {
		return "status: " + f["status"] + lastErr
	}
	lang := "detecting"
	if code := f["lang"]; code != "-" && code != "" {
		lang = language.Label(code)
	}
	out := fmt.Sprintf("status: %s\nsession: %s\nmode: %s\nlanguage: %s (%s)\nlines: %s, translations: %s\nframes: %s sent, %s dropped\nignored messages: %s",
		f["status"], f["session"], f["mode"], lang, f["lock"],
		f["lines"], f["translations"], f["sent"], f["dropped"], f["ignored"])
	return out + lastErr
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
