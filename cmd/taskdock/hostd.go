package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskdock/taskdock/internal/hoststub"
)

var (
	listenAddr string
	dbPath     string
)

var hostdCmd = &cobra.Command{
	Use:   "hostd",
	Short: "Start the development host daemon",
	Long:  `Starts a stand-in host that persists tasks in SQLite and serves snapshots over HTTP and websocket, so the panel can run without a real editor host.`,
	RunE:  runHostd,
}

func init() {
	hostdCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config)")
	hostdCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (default from config)")
}

func runHostd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr == "" {
		listenAddr = cfg.StubAddr
	}
	if dbPath == "" {
		dbPath = cfg.StubDBPath
	}

	s, err := hoststub.Open(dbPath)
	if err != nil {
		return err
	}

	server := hoststub.NewServer(s, listenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		err := server.Start()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case err := <-serverErr:
		if err != nil {
			s.Close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	if err := s.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}
	return nil
}
