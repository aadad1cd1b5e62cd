// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package container

import (
	gitfleetconfig "github.com/gzh-fleet/gitfleet/internal/config"
)

// Builder provides a fluent interface for assembling a Container, mirroring
// gzh-cli's ContainerBuilder shape.
type Builder struct {
	configPath string
}

// NewBuilder creates a new container builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfigPath sets an explicit config file path; an empty path falls
// back to the standard search locations (§6).
func (b *Builder) WithConfigPath(path string) *Builder {
	b.configPath = path
	return b
}

// Build loads the effective configuration and assembles a Container from it.
func (b *Builder) Build() (*Container, error) {
	cfg, err := gitfleetconfig.Load(b.configPath)
	if err != nil {
		return nil, err
	}
	return NewContainer(cfg)
}
