// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package app provides application bootstrapping and lifecycle management:
// signal handling and graceful shutdown, kept separate from the command
// tree so main stays a two-line bootstrap.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Runner handles application lifecycle and signal management.
type Runner struct {
	version string
}

// NewRunner creates a new application runner with the specified version.
func NewRunner(version string) *Runner {
	return &Runner{version: version}
}

// Run executes root with a context canceled on SIGINT/SIGTERM, propagating
// that cancellation through both the resolver and sync-engine concurrency
// layers (§5).
func (r *Runner) Run(root *cobra.Command) error {
	ctx, cancel := r.setupGracefulShutdown()
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("application execution failed: %w", err)
	}
	return nil
}

// setupGracefulShutdown configures signal handling for graceful shutdown.
func (r *Runner) setupGracefulShutdown() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...\n")
		cancel()
	}()

	return ctx, cancel
}

// GetVersion returns the application version.
func (r *Runner) GetVersion() string {
	return r.version
}
