// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package resolver implements the Multi-Provider Resolver (§4.E): it fans a
// query out across every selected provider concurrently, tolerates
// per-provider failure, and deduplicates the aggregate result set.
//
// Grounded on gzh-cli's pkg/github/github_org_clone.go errgroup+semaphore
// fan-out pattern and pkg/git/provider.Registry's
// ExecuteAcrossProvidersParallel per-provider result collection.
package resolver

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/provider"
	"github.com/gzh-fleet/gitfleet/pkg/query"
)

// DefaultProviderConcurrency bounds how many providers are queried at once,
// per §5's provider_concurrency_cap.
const DefaultProviderConcurrency = 10

// FailedProvider records one provider's fan-out failure, classified so a
// reporter can render it without inspecting Go error types.
type FailedProvider struct {
	Name      string
	ErrorKind fleeterrors.Kind
	Message   string
}

// Result is the aggregate, deduplicated outcome of resolving a query across
// every selected provider.
type Result struct {
	Repositories        []provider.Repository
	SuccessfulProviders  []string
	FailedProviders      []FailedProvider
	TotalFound           int
	DuplicatesRemoved    int
	Query                string
}

type providerOutcome struct {
	name  string
	repos []provider.Repository
	err   error
}

// Resolve queries every provider in providers concurrently (bounded by
// concurrencyCap, falling back to DefaultProviderConcurrency when <= 0),
// aggregates and deduplicates the results in providers' order, and applies
// limit (if > 0) after deduplication.
//
// providers must already be the registry-order, query-selected subset (see
// provider.Registry.SelectByGlob / Get) — Resolve does not reselect.
func Resolve(ctx context.Context, providers []provider.Provider, q query.Result, limit int, concurrencyCap int) (*Result, error) {
	opts := provider.ListOptions{
		OrgPattern:    q.OrgSegment,
		MiddlePattern: q.MiddleSegment,
		RepoPattern:   q.RepoSegment,
	}

	outcomes := fanOut(ctx, providers, opts, concurrencyCap)

	result := &Result{Query: q.Normalized}
	seenPrimary := make(map[string]struct{})
	seenCloneURL := make(map[string]struct{})

	// outcomes is already in providers' (registry-alphabetical) order —
	// fanOut preserves input order in its return slice — so dedup here
	// keeps a deterministic "first provider wins" tie-break.
	for _, oc := range outcomes {
		if oc.err != nil {
			result.FailedProviders = append(result.FailedProviders, FailedProvider{
				Name:      oc.name,
				ErrorKind: fleeterrors.KindOf(oc.err),
				Message:   oc.err.Error(),
			})
			continue
		}
		result.SuccessfulProviders = append(result.SuccessfulProviders, oc.name)
		for _, repo := range oc.repos {
			result.TotalFound++
			primary := repo.OrganizationLower() + "/" + repo.NameLower()
			if _, dup := seenPrimary[primary]; dup {
				result.DuplicatesRemoved++
				continue
			}
			if repo.CloneURL != "" {
				if _, dup := seenCloneURL[repo.CloneURL]; dup {
					result.DuplicatesRemoved++
					continue
				}
				seenCloneURL[repo.CloneURL] = struct{}{}
			}
			seenPrimary[primary] = struct{}{}
			result.Repositories = append(result.Repositories, repo)
		}
	}

	if limit > 0 && len(result.Repositories) > limit {
		result.Repositories = result.Repositories[:limit]
	}

	if len(result.SuccessfulProviders) == 0 && len(result.FailedProviders) > 0 {
		return result, fleeterrors.New(fleeterrors.KindResolutionFail, "all providers failed to resolve the query")
	}
	return result, nil
}

// fanOut runs ListRepositories against every provider concurrently, bounded
// by a weighted semaphore, and returns one outcome per provider in the same
// order as the input slice.
func fanOut(ctx context.Context, providers []provider.Provider, opts provider.ListOptions, concurrencyCap int) []providerOutcome {
	limit := concurrencyCap
	if limit <= 0 {
		limit = DefaultProviderConcurrency
	}
	if limit > len(providers) {
		limit = len(providers)
	}
	if limit < 1 {
		limit = 1
	}

	outcomes := make([]providerOutcome, len(providers))
	sem := semaphore.NewWeighted(int64(limit))
	var wg sync.WaitGroup

	for i, p := range providers {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes[i] = providerOutcome{name: p.Name(), err: fleeterrors.Wrap(fleeterrors.KindCancelled, err, "provider query cancelled").WithProvider(p.Name())}
				return
			}
			defer sem.Release(1)

			repos, err := p.ListRepositories(ctx, opts)
			if err != nil {
				outcomes[i] = providerOutcome{name: p.Name(), err: err}
				return
			}
			outcomes[i] = providerOutcome{name: p.Name(), repos: repos}
		}()
	}
	wg.Wait()
	return outcomes
}
