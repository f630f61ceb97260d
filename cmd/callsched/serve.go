package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anescall/callsched/internal/httpapi"
	"github.com/anescall/callsched/internal/reporting"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest solved schedule read-only over HTTP",
	Long: `serve starts the read-only HTTP API, optionally preloading it with
a solved document, and runs until interrupted.`,
	RunE: runServe,
}

var serveSolvedPath string

func init() {
	serveCmd.Flags().StringVar(&serveSolvedPath, "solved", "", "solved document JSON to preload, optional")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	server := httpapi.New(cfg.Server)

	if serveSolvedPath != "" {
		data, err := os.ReadFile(serveSolvedPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", serveSolvedPath, err)
		}
		var doc reporting.SolvedDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", serveSolvedPath, err)
		}
		server.PublishLatest(&doc)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		fmt.Println("\nshutting down")
		return server.Shutdown(context.Background())
	}
}
