// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	gitfleetconfig "github.com/gzh-fleet/gitfleet/internal/config"
)

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the effective configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(g))
	return cmd
}

// newConfigValidateCmd supplements the core's "config loading is a
// collaborator" scope note: validating the shape the core actually consumes
// is legitimately core-adjacent, mirroring the teacher's
// cmd/synclone/config_validate.go.
func newConfigValidateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the config file without running any command",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gitfleetconfig.Load(g.configPath)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "invalid configuration: %v\n", err)
				return withExitCode(exitInvocation, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid: %d provider(s) configured\n", len(cfg.Providers))
			return nil
		},
	}
}
