// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gzh-fleet/gitfleet/pkg/query"
)

// Registry holds the configured provider set keyed by lowercased name. It is
// grounded on gzh-cli's pkg/git/provider.ProviderRegistry, trimmed of its
// TTL cache and health-check/cleanup goroutines: this core builds one
// registry per invocation and has no long-lived daemon to keep warm.
type Registry struct {
	byName map[string]Provider
	names  []string // sorted, alphabetical — the deduplication tie-breaker
}

// NewRegistry builds a registry from a set of instantiated providers.
func NewRegistry(providers map[string]Provider) *Registry {
	r := &Registry{byName: make(map[string]Provider, len(providers))}
	for name, p := range providers {
		lower := strings.ToLower(name)
		r.byName[lower] = p
		r.names = append(r.names, lower)
	}
	sort.Strings(r.names)
	return r
}

// Get returns the named provider, or false if it isn't configured.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.byName[strings.ToLower(name)]
	return p, ok
}

// All returns every configured provider in stable alphabetical order.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[n])
	}
	return out
}

// Names returns the configured provider names in stable alphabetical order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// SelectByGlob returns every provider whose name matches pattern, in the
// same alphabetical order as All. The result is always a subset of All,
// ordered identically — callers may rely on that invariant.
func (r *Registry) SelectByGlob(pattern string) []Provider {
	var out []Provider
	for _, n := range r.names {
		if query.Matches(pattern, n) {
			out = append(out, r.byName[n])
		}
	}
	return out
}

// ErrUnknownProvider builds the error for an explicit name that isn't
// configured. Get itself reports absence through its boolean result.
func ErrUnknownProvider(name string) error {
	return fmt.Errorf("provider %q is not configured", name)
}
