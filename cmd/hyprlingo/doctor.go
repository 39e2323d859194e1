package main

import (
	"fmt"

	"github.com/leonardotrapani/hyprlingo/internal/bus"
	"github.com/leonardotrapani/hyprlingo/internal/config"
	"github.com/leonardotrapani/hyprlingo/internal/deps"
	"github.com/leonardotrapani/hyprlingo/internal/session"
	"github.com/leonardotrapani/hyprlingo/internal/tui"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor()
		},
	}
}

func runDoctor() error {
	ok := true
	fail := func(format string, args ...any) {
		ok = false
		fmt.Println(tui.StyleError.Render("✗ " + fmt.Sprintf(format, args...)))
	}
	pass := func(format string, args ...any) {
		fmt.Println(tui.StyleSuccess.Render("✓ ") + fmt.Sprintf(format, args...))
	}

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fail("config: %v", err)
		return err
	}
	pass("config: %s", path)

	if err := cfg.Validate(); err != nil {
		fail("config invalid: %v", err)
	} else if params, err := cfg.SessionParams(); err == nil {
		endpoint, _ := session.Resolve(cfg.Server.URL, params)
		pass("endpoint: %s", endpoint)
	}

	for _, tool := range deps.ForConfig(cfg.Recording.Backend, cfg.Notifications.Type) {
		status := tool.Check()
		switch {
		case status.Installed:
			pass("%s (%s): %s %s", tool.Name, tool.Purpose, status.Path, status.Version)
		case tool.Required:
			fail("%s not found, needed for %s", tool.Name, tool.Purpose)
		default:
			fmt.Println(tui.StyleWarning.Render("! ") + fmt.Sprintf("%s not found, %s disabled", tool.Name, tool.Purpose))
		}
	}

	if resp, err := bus.SendCommand(bus.CmdVersion); err == nil {
		_, f := bus.ParseReply(resp)
		pass("daemon running, version %s", f["version"])
	} else {
		fmt.Println(tui.StyleMuted.Render("- daemon not running"))
	}

	if !ok {
		return fmt.Errorf("problems found")
	}
	return nil
}
