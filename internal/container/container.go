// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package container wires the effective configuration into a provider
// registry, a Git executor, and a sync engine runner — everything the
// command orchestrators need, assembled once per invocation.
//
// Grounded on gzh-cli's internal/container.Container: the name-keyed
// singleton/factory registry is dropped (this core has a small, fixed
// dependency graph, not a plugin surface needing string-keyed lookup) but
// the fluent ContainerBuilder shape from builder.go is kept.
package container

import (
	"fmt"

	gitfleetconfig "github.com/gzh-fleet/gitfleet/internal/config"
	"github.com/gzh-fleet/gitfleet/pkg/gitexec"
	"github.com/gzh-fleet/gitfleet/pkg/provider"
	"github.com/gzh-fleet/gitfleet/pkg/syncengine"
)

// Container holds every dependency a command orchestrator needs.
type Container struct {
	Config   *gitfleetconfig.EffectiveConfig
	Registry *provider.Registry
	Executor *gitexec.Executor
}

// NewContainer builds the provider registry and Git executor from cfg.
func NewContainer(cfg *gitfleetconfig.EffectiveConfig) (*Container, error) {
	registry, err := provider.BuildRegistry(cfg.Providers)
	if err != nil {
		return nil, fmt.Errorf("building provider registry: %w", err)
	}

	exec, err := gitexec.New()
	if err != nil {
		return nil, fmt.Errorf("locating git executable: %w", err)
	}

	return &Container{Config: cfg, Registry: registry, Executor: exec}, nil
}

// NewSyncRunner builds a syncengine.Runner using the container's executor
// and the given concurrency (falling back to the config's
// global.default_concurrency when concurrency <= 0).
func (c *Container) NewSyncRunner(concurrency int) *syncengine.Runner {
	if concurrency <= 0 {
		concurrency = c.Config.Global.DefaultConcurrency
	}
	return syncengine.NewRunner(c.Executor, concurrency)
}
