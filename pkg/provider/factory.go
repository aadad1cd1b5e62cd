// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package provider

import (
	"fmt"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
)

// New builds the concrete adapter for cfg.Kind. Adding a provider kind is
// adding a case here and a new adapter type — no inheritance, no plugin
// discovery, per §9.
func New(cfg Config) (Provider, error) {
	switch cfg.Kind {
	case KindAzureDevOps:
		return NewAzureDevOpsAdapter(cfg.Name, cfg.BaseURL, cfg.Secret), nil
	case KindGitHub:
		return NewGitHubAdapter(cfg.Name, cfg.BaseURL, cfg.Secret)
	case KindBitBucket:
		workspace := cfg.Workspace
		return NewBitBucketAdapter(cfg.Name, workspace, cfg.User, cfg.Secret), nil
	default:
		return nil, fleeterrors.Newf(fleeterrors.KindValidation, "unknown provider kind %q for provider %q", cfg.Kind, cfg.Name)
	}
}

// BuildRegistry instantiates every configured provider and assembles a
// Registry. A per-provider construction failure short-circuits the whole
// invocation (§7: invocation failure), since an unconfigurable provider
// means the effective configuration itself is wrong.
func BuildRegistry(configs map[string]Config) (*Registry, error) {
	providers := make(map[string]Provider, len(configs))
	for name, cfg := range configs {
		cfg.Name = name
		p, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("building provider %q: %w", name, err)
		}
		providers[name] = p
	}
	return NewRegistry(providers), nil
}
