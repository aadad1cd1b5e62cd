// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	gitfleetconfig "github.com/gzh-fleet/gitfleet/internal/config"
	"github.com/gzh-fleet/gitfleet/pkg/provider"
)

// newLoginCmd is a thin, external-collaborator command: it performs no
// business logic the core relies on and exists purely to save an
// interactively-entered provider entry into the config file.
func newLoginCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Interactively add a provider entry to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(g)
		},
	}
}

func runLogin(g *globalOptions) error {
	configPath := g.configPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return withExitCode(exitInvocation, fmt.Errorf("resolving home directory: %w", err))
		}
		configPath = filepath.Join(home, ".config", "gitfleet", "config.yaml")
	}

	name, err := (&promptui.Prompt{Label: "Provider name (unique)"}).Run()
	if err != nil {
		return withExitCode(exitInvocation, err)
	}

	kindSelect := promptui.Select{Label: "Provider kind", Items: []string{"github", "azuredevops", "bitbucket"}}
	_, kind, err := kindSelect.Run()
	if err != nil {
		return withExitCode(exitInvocation, err)
	}

	url, err := (&promptui.Prompt{Label: "Base URL"}).Run()
	if err != nil {
		return withExitCode(exitInvocation, err)
	}

	user, _ := (&promptui.Prompt{Label: "User (optional, blank to skip)"}).Run()

	token, err := (&promptui.Prompt{Label: "Token", Mask: '*'}).Run()
	if err != nil {
		return withExitCode(exitInvocation, err)
	}

	var workspace string
	if kind == "bitbucket" {
		workspace, err = (&promptui.Prompt{Label: "Workspace"}).Run()
		if err != nil {
			return withExitCode(exitInvocation, err)
		}
	}

	cfg, err := gitfleetconfig.Load(g.configPath)
	if err != nil {
		return withExitCode(exitInvocation, fmt.Errorf("loading existing config: %w", err))
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]provider.Config{}
	}
	cfg.Providers[name] = provider.Config{
		Kind:      provider.Kind(kind),
		BaseURL:   url,
		User:      user,
		Secret:    token,
		Workspace: workspace,
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return withExitCode(exitInternal, fmt.Errorf("encoding config: %w", err))
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return withExitCode(exitInvocation, fmt.Errorf("creating config directory: %w", err))
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return withExitCode(exitInvocation, fmt.Errorf("writing config: %w", err))
	}

	fmt.Printf("saved provider %q to %s\n", name, configPath)
	return nil
}
