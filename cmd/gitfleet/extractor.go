// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"strings"

	"github.com/gzh-fleet/gitfleet/pkg/provider"
)

// syncExtractor supplies syncengine.Runner with each repository's clone URL
// and (for Azure DevOps) auth header, keyed by the resolver's own dedup
// identity — (organization_lower, name_lower) is guaranteed unique within
// one resolved result, so no provider name needs to travel through
// syncengine.Extractor's signature.
type syncExtractor struct {
	registry *provider.Registry
	configs  map[string]provider.Config // keyed by lowercased provider name
	repos    map[string]provider.Repository
}

func newSyncExtractor(registry *provider.Registry, configs map[string]provider.Config, repositories []provider.Repository) *syncExtractor {
	lowered := make(map[string]provider.Config, len(configs))
	for name, cfg := range configs {
		lowered[strings.ToLower(name)] = cfg
	}

	repos := make(map[string]provider.Repository, len(repositories))
	for _, r := range repositories {
		repos[r.OrganizationLower()+"/"+r.NameLower()] = r
	}

	return &syncExtractor{registry: registry, configs: lowered, repos: repos}
}

func (e *syncExtractor) CloneURL(organizationLower, nameLower string) string {
	repo, ok := e.repos[organizationLower+"/"+nameLower]
	if !ok {
		return ""
	}
	p, ok := e.registry.Get(repo.ProviderName)
	if !ok {
		return repo.CloneURL
	}
	return p.NormalizeCloneURL(repo.CloneURL, e.credentialsFor(repo.ProviderName))
}

func (e *syncExtractor) ExtraHeader(organizationLower, nameLower string) string {
	repo, ok := e.repos[organizationLower+"/"+nameLower]
	if !ok {
		return ""
	}
	p, ok := e.registry.Get(repo.ProviderName)
	if !ok {
		return ""
	}
	ado, ok := p.(*provider.AzureDevOpsAdapter)
	if !ok {
		return ""
	}
	return ado.ExtraHeaderFor()
}

func (e *syncExtractor) credentialsFor(providerName string) provider.Credentials {
	cfg, ok := e.configs[strings.ToLower(providerName)]
	if !ok {
		return provider.Credentials{}
	}
	return provider.Credentials{User: cfg.User, Secret: cfg.Secret}
}
