package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/leonardotrapani/hyprlingo/internal/bus"
	"github.com/leonardotrapani/hyprlingo/internal/config"
	"github.com/leonardotrapani/hyprlingo/internal/daemon"
	"github.com/leonardotrapani/hyprlingo/internal/notify"
	"github.com/leonardotrapani/hyprlingo/internal/observability"
	"github.com/leonardotrapani/hyprlingo/internal/tui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "hyprlingo",
	Short:        "Live speech transcription and translation from your microphone",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		runCmd(),
		serveCmd(),
		toggleCmd(),
		statusCmd(),
		stopCmd(),
		quitCmd(),
		versionCmd(),
		configureCmd(),
		doctorCmd(),
	)
}

// loadConfig reads the config file and sets up logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	observability.InitLogger(cfg.Logging.Level, cfg.Logging.Pretty)
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		Long: `Run the background daemon. Sessions are started and stopped with
"hyprlingo toggle", typically bound to a hotkey. Edits to config.toml apply
to the next session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager("")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg := mgr.GetConfig()
			observability.InitLogger(cfg.Logging.Level, cfg.Logging.Pretty)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if err := mgr.StartWatching(ctx); err != nil {
				log.Warn().Err(err).Msg("config file watching disabled")
			}
			defer mgr.Stop()

			d, err := daemon.New(daemon.Options{
				Config:   cfg,
				Notifier: notify.New(cfg.Notifications.Type, cfg.Notifications.Enabled),
				Version:  version,
				Watch:    mgr,
			})
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Start or stop the daemon's session",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdToggle)
			if err != nil {
				return fmt.Errorf("failed to toggle session: %w", err)
			}
			fmt.Println(resp)
			if kind, _ := bus.ParseReply(resp); kind == "ERR" {
				return errors.New("daemon could not start a session")
			}
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdStatus)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			if raw {
				fmt.Println(resp)
				return nil
			}
			fmt.Println(daemon.DescribeStatus(resp))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the reply line as sent by the daemon")
	return cmd
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon's session, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdStop)
			if err != nil {
				return fmt.Errorf("failed to stop session: %w", err)
			}
			fmt.Println(resp)
			return nil
		},
	}
}

func quitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quit",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdQuit)
			if err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			fmt.Println(resp)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and daemon versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("hyprlingo %s (protocol %s)\n", version, bus.ProtoVer)
			resp, err := bus.SendCommand(bus.CmdVersion)
			if err != nil {
				fmt.Println("daemon: not running")
				return nil
			}
			_, f := bus.ParseReply(resp)
			fmt.Printf("daemon: %s (protocol %s)\n", f["version"], f["proto"])
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for hyprlingo.
This will guide you through setting up:
- The recognizer server URL and optional auth header
- Language mode (auto, fixed, multilang)
- Audio capture backend
- Notifications, logging and metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Println(tui.StyleError.Render("Configuration validation failed: " + err.Error()))
		return err
	}
	if err := config.Save(result.Config, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println(tui.StyleSuccess.Render("Configuration saved to " + path))
	fmt.Println()
	fmt.Println(tui.StyleLabel.Render("Next steps:"))
	fmt.Println("  hyprlingo run        live session in this terminal")
	fmt.Println("  hyprlingo serve      background daemon, then bind \"hyprlingo toggle\" to a key")
	if _, err := bus.SendCommand(bus.CmdVersion); err == nil {
		fmt.Println(tui.StyleWarning.Render("  The running daemon picks the change up for its next session."))
	}
	return nil
}
