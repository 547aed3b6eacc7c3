package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskdock/taskdock/internal/host"
	"github.com/taskdock/taskdock/internal/store"
	"github.com/taskdock/taskdock/internal/tui"
	"github.com/taskdock/taskdock/internal/viewstate"
)

var detached bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the task inbox panel",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&detached, "detached", false, "Run without a host connection; tasks live only in memory")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s := store.New(cfg.DefaultMode)

	var client *host.Client
	if !detached {
		dialCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		client, err = host.Dial(dialCtx, cfg.HostURL)
		cancel()
		if err != nil {
			// A missing host degrades to a local panel rather than failing.
			fmt.Fprintf(os.Stderr, "Host not reachable at %s, running detached: %v\n", cfg.HostURL, err)
			client = nil
		} else {
			defer client.Close()
		}
	}

	settings, err := viewstate.OpenSettings(cfg.SettingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "View state will not persist: %v\n", err)
		settings = nil
	} else {
		defer settings.Close()
	}

	var sender host.Sender
	var source tui.SnapshotSource
	if client != nil {
		sender = client
		source = client
	}

	bridge := host.NewBridge(s, sender)
	app := tui.New(s, bridge, settings, source)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
