// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package syncengine implements the Bulk Sync Engine (§4.H): a planning
// phase (delegated to pkg/planner, synchronous) followed by a
// semaphore-bounded concurrent execution phase that clones or updates every
// planned repository, tolerating per-repository failure.
//
// Grounded on the same errgroup/semaphore fan-out idiom as pkg/resolver
// (gzh-cli's pkg/github/github_org_clone.go) applied to the repository
// layer instead of the provider layer, per §5's two-layer concurrency model.
package syncengine

import (
	"context"
	"os"
	"sync"

	"golang.org/x/sync/semaphore"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/gitexec"
	"github.com/gzh-fleet/gitfleet/pkg/planner"
)

// DefaultConcurrency and MaxConcurrency bound repository-level fan-out,
// per §5.
const (
	DefaultConcurrency = 4
	MaxConcurrency     = 50
)

// Outcome is the final disposition of one planned repository operation.
type Outcome struct {
	Entry    planner.Entry
	Action   planner.Action
	ExitCode int
	Err      *fleeterrors.Error
	Duration int64 // nanoseconds; avoids a time.Duration import at call sites that just serialize this
}

// Succeeded reports whether this outcome represents a completed clone/pull
// with no error — a skip is also "not failed" but is reported separately by
// callers that need the distinction (§4.H's invariant groups skips apart
// from successes and failures).
func (o Outcome) Succeeded() bool { return o.Err == nil && o.Action != planner.ActionSkipNonRepo }

// BulkOutcome aggregates every repository's final disposition. Cancelled
// outcomes are kept in their own bucket, so the invariant
// len(Successes)+len(Failures)+len(Skips)+len(Cancelled) == len(plan)
// always holds.
type BulkOutcome struct {
	Successes []Outcome
	Failures  []Outcome
	Skips     []Outcome
	Cancelled []Outcome
}

// ProgressFunc is invoked after each repository finishes, reporting
// cumulative progress — (completed, total, outcome-just-finished).
type ProgressFunc func(completed, total int, last Outcome)

// Extractor supplies provider-specific clone-URL normalization and (for
// Azure DevOps) the http.extraheader auth value for one repository. Kept as
// an interface rather than importing pkg/provider.Provider directly so the
// engine can be unit tested with a fake.
type Extractor interface {
	CloneURL(organizationLower, nameLower string) string
	ExtraHeader(organizationLower, nameLower string) string
}

// Runner executes a plan against the filesystem via an Executor.
type Runner struct {
	exec        *gitexec.Executor
	concurrency int
}

// NewRunner builds a Runner. concurrency is clamped to [1, MaxConcurrency],
// defaulting to DefaultConcurrency when <= 0.
func NewRunner(exec *gitexec.Executor, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}
	return &Runner{exec: exec, concurrency: concurrency}
}

// Run executes every entry in plan concurrently, bounded by the Runner's
// concurrency, calling progress (if non-nil) after each one completes.
// Cancelling ctx stops scheduling new work and marks in-flight and
// not-yet-started entries as Cancelled outcomes; it never retries. mode is
// the update mode the plan was built with: a pull_existing entry under
// UpdateModeSkip is recorded as a successful no-op without invoking git
// (§4.H); execution never reinterprets the plan's action otherwise.
func (r *Runner) Run(ctx context.Context, plan []planner.Entry, mode planner.UpdateMode, extractor Extractor, progress ProgressFunc) BulkOutcome {
	sem := semaphore.NewWeighted(int64(r.concurrency))
	outcomes := make([]Outcome, len(plan))
	var mu sync.Mutex
	var wg sync.WaitGroup
	completed := 0

	for i, entry := range plan {
		i, entry := i, entry
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes[i] = cancelledOutcome(entry)
				reportProgress(&mu, &completed, len(plan), outcomes[i], progress)
				return
			}
			defer sem.Release(1)

			if ctx.Err() != nil {
				outcomes[i] = cancelledOutcome(entry)
				reportProgress(&mu, &completed, len(plan), outcomes[i], progress)
				return
			}

			outcomes[i] = r.execute(ctx, entry, mode, extractor)
			reportProgress(&mu, &completed, len(plan), outcomes[i], progress)
		}()
	}
	wg.Wait()

	var out BulkOutcome
	for _, oc := range outcomes {
		switch {
		case oc.Err != nil && oc.Err.Kind == fleeterrors.KindCancelled:
			out.Cancelled = append(out.Cancelled, oc)
		case oc.Action == planner.ActionSkipNonRepo:
			out.Skips = append(out.Skips, oc)
		case oc.Err != nil:
			out.Failures = append(out.Failures, oc)
		default:
			out.Successes = append(out.Successes, oc)
		}
	}
	return out
}

func reportProgress(mu *sync.Mutex, completed *int, total int, oc Outcome, progress ProgressFunc) {
	if progress == nil {
		return
	}
	mu.Lock()
	*completed++
	n := *completed
	mu.Unlock()
	progress(n, total, oc)
}

func cancelledOutcome(entry planner.Entry) Outcome {
	return Outcome{
		Entry:  entry,
		Action: entry.Action,
		Err:    fleeterrors.New(fleeterrors.KindCancelled, "sync cancelled before this repository ran").WithRepository(entry.Repository.Name).WithProvider(entry.Repository.ProviderName),
	}
}

// execute carries out a single planned action. skip_nonrepo always
// short-circuits before touching gitexec; a pull_existing entry also
// short-circuits, without running git, when mode is UpdateModeSkip.
func (r *Runner) execute(ctx context.Context, entry planner.Entry, mode planner.UpdateMode, extractor Extractor) Outcome {
	switch entry.Action {
	case planner.ActionSkipNonRepo:
		return Outcome{Entry: entry, Action: entry.Action}
	case planner.ActionCloneNew:
		return r.runClone(ctx, entry, extractor)
	case planner.ActionForceReplace:
		// Remove the existing checkout first; git refuses to clone into a
		// non-empty directory.
		if err := os.RemoveAll(entry.TargetPath); err != nil {
			return Outcome{Entry: entry, Action: entry.Action, Err: fleeterrors.Wrap(fleeterrors.KindLocalFS, err, "removing existing checkout for force replace")}
		}
		return r.runClone(ctx, entry, extractor)
	case planner.ActionPullExisting:
		if mode == planner.UpdateModeSkip {
			return Outcome{Entry: entry, Action: entry.Action}
		}
		return r.runPull(ctx, entry)
	default:
		return Outcome{Entry: entry, Action: entry.Action, Err: fleeterrors.Newf(fleeterrors.KindInternal, "unrecognized plan action %q", entry.Action)}
	}
}

func (r *Runner) runClone(ctx context.Context, entry planner.Entry, extractor Extractor) Outcome {
	repo := entry.Repository
	url := repo.CloneURL
	header := ""
	if extractor != nil {
		if u := extractor.CloneURL(repo.OrganizationLower(), repo.NameLower()); u != "" {
			url = u
		}
		header = extractor.ExtraHeader(repo.OrganizationLower(), repo.NameLower())
	}

	result, err := r.exec.Run(ctx, "", header, "clone", url, entry.TargetPath)
	return toOutcome(entry, result, err)
}

func (r *Runner) runPull(ctx context.Context, entry planner.Entry) Outcome {
	result, err := r.exec.Run(ctx, entry.TargetPath, "", "pull", "--ff-only")
	return toOutcome(entry, result, err)
}

func toOutcome(entry planner.Entry, result gitexec.Result, runErr error) Outcome {
	if runErr != nil {
		if fe, ok := runErr.(*fleeterrors.Error); ok {
			return Outcome{Entry: entry, Action: entry.Action, Err: fe, Duration: int64(result.Duration)}
		}
		return Outcome{Entry: entry, Action: entry.Action, Err: fleeterrors.Wrap(fleeterrors.KindInternal, runErr, "git invocation failed"), Duration: int64(result.Duration)}
	}
	if result.ExitCode != 0 {
		classified := gitexec.ClassifyResult(result, entry.Repository.Name, entry.Repository.ProviderName)
		return Outcome{Entry: entry, Action: entry.Action, ExitCode: result.ExitCode, Err: classified, Duration: int64(result.Duration)}
	}
	return Outcome{Entry: entry, Action: entry.Action, ExitCode: 0, Duration: int64(result.Duration)}
}
