// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package provider defines the uniform contract each Git hosting adapter
// implements (§4.C) and the registry that resolves a provider selector
// against the configured set (§4.D). It is a narrower slice of gzh-cli's
// pkg/git/provider.GitProvider, trimmed to what the query-to-sync pipeline
// actually drives — webhook/event/health capabilities are dropped, not
// inherited.
package provider

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind names the three supported hosting platforms.
type Kind string

const (
	KindAzureDevOps Kind = "azuredevops"
	KindGitHub      Kind = "github"
	KindBitBucket   Kind = "bitbucket"
)

// DefaultRequestTimeout bounds a single provider HTTP request (§5). Not
// configurable in the core; named so callers never guess at the magic
// number.
const DefaultRequestTimeout = 30 * time.Second

// Config is one configured provider instance, keyed by Name in the registry.
type Config struct {
	Name      string `yaml:"-"`
	Kind      Kind   `yaml:"kind" validate:"required,oneof=azuredevops github bitbucket"`
	BaseURL   string `yaml:"url" mapstructure:"url" validate:"required,url"`
	User      string `yaml:"user,omitempty"`
	Secret    string `yaml:"token" mapstructure:"token" validate:"required"`
	Workspace string `yaml:"workspace,omitempty"`
}

// Repository is the immutable record produced by provider adapters. Identity
// for deduplication is (OrganizationLower, NameLower) first, then CloneURL
// as a secondary key.
type Repository struct {
	Organization  string
	Project       string // empty when the provider has no project concept
	Name          string
	CloneURL      string
	DefaultBranch string
	IsPrivate     bool
	Description   string
	ProviderName  string
	Metadata      map[string]interface{}

	// RunID is stamped by the sync command with one value per invocation.
	// Ambient only — never part of dedup identity and not read by the
	// resolver, planner, engine or reporters.
	RunID uuid.UUID
}

// OrganizationLower and NameLower are the primary dedup key components.
// Unicode-aware, since Azure DevOps project/organization names permit
// arbitrary Unicode (§4.A).
func (r Repository) OrganizationLower() string { return strings.ToLower(r.Organization) }
func (r Repository) NameLower() string         { return strings.ToLower(r.Name) }

// ListOptions carries the three-segment pattern a ListRepositories call must
// honor. OrgPattern/MiddlePattern/RepoPattern may be literals or globs; the
// adapter server-side filters what its API supports and client-side
// glob-filters the rest via pkg/query.Matches.
type ListOptions struct {
	OrgPattern   string
	MiddlePattern string
	RepoPattern  string
}

// Credentials is the authentication material handed to NormalizeCloneURL.
type Credentials struct {
	User   string
	Secret string
}

// Provider is the uniform contract every adapter implements.
//
//go:generate mockgen -source=types.go -destination=mock/provider_mock.go -package=mock
type Provider interface {
	// Name returns the configured instance name (not the Kind).
	Name() string

	Authenticate(ctx context.Context) error

	// ListOrganizations returns org names, or a KindValidation error for
	// providers with a fixed org tied to their configuration (Azure DevOps
	// organization, BitBucket workspace).
	ListOrganizations(ctx context.Context) ([]string, error)

	// ListProjects returns project names for an organization, or the
	// sentinel []string{"*"} for providers without a project concept.
	ListProjects(ctx context.Context, organization string) ([]string, error)

	ListRepositories(ctx context.Context, opts ListOptions) ([]Repository, error)

	// NormalizeCloneURL embeds credentials into url the way this provider
	// expects (token in the URL, or left bare when the executor will pass a
	// header instead).
	NormalizeCloneURL(url string, creds Credentials) string
}
