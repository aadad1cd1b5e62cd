// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"context"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/provider"
	"github.com/gzh-fleet/gitfleet/pkg/query"
)

// selectProviders implements §4.D's provider-or-org resolution for the
// query's first segment:
//
//   - an explicit --provider names exactly one configured provider.
//   - a glob first segment selects providers whose configured name matches
//     it (is_multi_provider).
//   - a literal first segment is tried as an organization name against
//     every configured provider's ListOrganizations; providers that are
//     organization/workspace-scoped (ADO, BitBucket) can't enumerate their
//     orgs and are included unconditionally, letting ListRepositories apply
//     its own server-side scoping.
func selectProviders(ctx context.Context, registry *provider.Registry, analyzed query.Result) ([]provider.Provider, error) {
	if analyzed.ProviderSegment != "" {
		p, ok := registry.Get(analyzed.ProviderSegment)
		if !ok {
			return nil, fleeterrors.Newf(fleeterrors.KindValidation, "provider %q is not configured", analyzed.ProviderSegment)
		}
		return []provider.Provider{p}, nil
	}

	if query.IsPattern(analyzed.OrgSegment) {
		selected := registry.SelectByGlob(analyzed.OrgSegment)
		if len(selected) == 0 {
			return nil, fleeterrors.Newf(fleeterrors.KindValidation, "no configured provider name matches %q", analyzed.OrgSegment)
		}
		return selected, nil
	}

	var matched []provider.Provider
	for _, p := range registry.All() {
		orgs, err := p.ListOrganizations(ctx)
		if err != nil {
			// Organization/workspace-scoped adapter: it can't tell us
			// whether the literal matches, so it stays a candidate and
			// ListRepositories enforces its own scoping.
			matched = append(matched, p)
			continue
		}
		for _, org := range orgs {
			if query.Matches(analyzed.OrgSegment, org) {
				matched = append(matched, p)
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil, fleeterrors.Newf(fleeterrors.KindNotFound, "no configured provider has an organization matching %q", analyzed.OrgSegment)
	}
	return matched, nil
}
