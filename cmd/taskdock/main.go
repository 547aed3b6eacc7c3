package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/taskdock/taskdock/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "taskdock",
	Short: "Taskdock - task inbox panel",
	Long:  `Taskdock is a terminal task inbox panel that mirrors the tasks of an editor host over a websocket transport, with an embedded development host for standalone use.`,
	// No RunE - defaults to showing help when no subcommand is provided
}

var configPath string

func init() {
	defaultConfig := filepath.Join(config.BasePath(), "config.yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "Path to config file")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(hostdCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
