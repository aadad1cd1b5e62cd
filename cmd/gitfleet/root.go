// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gitfleetconfig "github.com/gzh-fleet/gitfleet/internal/config"
	"github.com/gzh-fleet/gitfleet/internal/container"
	gitfleetlogger "github.com/gzh-fleet/gitfleet/internal/logger"
)

// globalOptions holds the persistent flags every subcommand shares, mirroring
// gzh-cli's top-level --config/--debug flag wiring but scoped to this core's
// two-env-var, one-config-file contract (§6).
type globalOptions struct {
	configPath  string
	noColor     bool
	debug       bool
	watchConfig bool
}

func newRootCmd(version string) *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:           "gitfleet",
		Short:         "Query and bulk-sync repositories across Azure DevOps, GitHub, and BitBucket",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to config file (default: standard search locations)")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable ANSI color output")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable verbose subprocess/provider logging")
	root.PersistentFlags().BoolVar(&g.watchConfig, "watch-config", false, "log a notice when the config file changes on disk")

	root.AddCommand(newListCmd(g))
	root.AddCommand(newSyncCmd(g))
	root.AddCommand(newStatusCmd(g))
	root.AddCommand(newLoginCmd(g))
	root.AddCommand(newConfigCmd(g))

	return root
}

// buildContainer loads the effective configuration and assembles the
// dependency container, applying --no-color/--debug on top of whatever the
// config file and NO_COLOR/DEBUG env vars already decided (§6). It never
// fails on zero configured providers: status needs none at all, and
// query commands (list/sync) treat that as a boundary case of their own
// (§8), not an invocation error.
func (g *globalOptions) buildContainer() (*container.Container, error) {
	c, err := container.NewBuilder().WithConfigPath(g.configPath).Build()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	c.Config.NoColor = c.Config.NoColor || g.noColor
	c.Config.Debug = c.Config.Debug || g.debug

	if g.watchConfig && g.configPath != "" {
		startConfigWatch(g.configPath, c.Config.Debug)
	}

	return c, nil
}

// noProvidersConfigured reports whether c has zero configured providers. A
// query command (list/sync) that finds this true should print the message
// and exit 0 rather than treat it as an invocation error (§8): there is
// nothing to query, but nothing is wrong either.
func noProvidersConfigured(c *container.Container) bool {
	return len(c.Registry.Names()) == 0
}

// terminal builds the human-facing progress/status renderer for component,
// honoring the resolved NoColor/Debug flags.
func (g *globalOptions) terminal(c *container.Container, component string) *gitfleetlogger.Terminal {
	return gitfleetlogger.NewTerminal(os.Stderr, component, c.Config.NoColor, c.Config.Debug)
}

// startConfigWatch fires a best-effort, fire-and-forget watcher: a changed
// config file only takes effect on the next invocation, so this exists
// purely to surface the notice --watch-config promises, not to hot-swap
// an in-flight command's configuration.
func startConfigWatch(configPath string, debug bool) {
	term := gitfleetlogger.NewTerminal(os.Stderr, "config", false, debug)
	_, err := gitfleetconfig.Watch(configPath, func(*gitfleetconfig.EffectiveConfig) {
		term.Warn("config file %s changed; restart gitfleet to pick up the new settings", configPath)
	}, func(err error) {
		term.Warn("watching %s: %v", configPath, err)
	})
	if err != nil {
		term.Warn("could not start config watcher: %v", err)
	}
}
