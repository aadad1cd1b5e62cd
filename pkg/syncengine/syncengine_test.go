// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package syncengine

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzh-fleet/gitfleet/pkg/gitexec"
	"github.com/gzh-fleet/gitfleet/pkg/planner"
	"github.com/gzh-fleet/gitfleet/pkg/provider"
)

// newBareRepo creates a local bare repository holding one commit on main,
// which can be cloned and pulled over a file:// URL, standing in for a
// remote without any network dependency.
func newBareRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "origin.git")
	seed := filepath.Join(dir, "seed")
	for _, args := range [][]string{
		{"init", "--bare", "--initial-branch=main", bare},
		{"init", "--initial-branch=main", seed},
		{"-C", seed, "-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "--allow-empty", "-m", "initial"},
		{"-C", seed, "push", bare, "main"},
	} {
		out, err := exec.Command("git", args...).CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}
	return bare
}

func TestRunner_ClonesThenPullsExisting(t *testing.T) {
	origin := newBareRepo(t)
	root := t.TempDir()

	executor, err := gitexec.New()
	require.NoError(t, err)
	runner := NewRunner(executor, 2)

	repo := provider.Repository{Organization: "acme", Name: "widgets", CloneURL: "file://" + origin}
	entries := planner.Plan(root, []provider.Repository{repo}, planner.UpdateModePull)
	require.Len(t, entries, 1)
	require.Equal(t, planner.ActionCloneNew, entries[0].Action)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	result := runner.Run(ctx, entries, planner.UpdateModePull, nil, nil)
	require.Len(t, result.Successes, 1)
	assert.Empty(t, result.Failures)
	assert.DirExists(t, filepath.Join(entries[0].TargetPath, ".git"))

	// Second pass over the same root should now see an existing clone and
	// pull instead of cloning again.
	entries2 := planner.Plan(root, []provider.Repository{repo}, planner.UpdateModePull)
	require.Equal(t, planner.ActionPullExisting, entries2[0].Action)

	result2 := runner.Run(ctx, entries2, planner.UpdateModePull, nil, nil)
	require.Len(t, result2.Successes, 1)
	assert.Empty(t, result2.Failures)
}

func TestRunner_SkipsAreReportedSeparately(t *testing.T) {
	root := t.TempDir()
	nonRepoDir := filepath.Join(root, "acme", "widgets")
	require.NoError(t, os.MkdirAll(nonRepoDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nonRepoDir, "README.md"), []byte("hi"), 0o644))

	executor, err := gitexec.New()
	require.NoError(t, err)
	runner := NewRunner(executor, 2)

	repo := provider.Repository{Organization: "acme", Name: "widgets", CloneURL: "file:///nonexistent.git"}
	entries := planner.Plan(root, []provider.Repository{repo}, planner.UpdateModePull)
	require.Equal(t, planner.ActionSkipNonRepo, entries[0].Action)

	result := runner.Run(context.Background(), entries, planner.UpdateModePull, nil, nil)
	require.Len(t, result.Skips, 1)
	assert.Empty(t, result.Successes)
	assert.Empty(t, result.Failures)
}

func TestRunner_SkipModePullExistingIsSuccessfulNoOp(t *testing.T) {
	origin := newBareRepo(t)
	root := t.TempDir()

	executor, err := gitexec.New()
	require.NoError(t, err)
	runner := NewRunner(executor, 2)

	repo := provider.Repository{Organization: "acme", Name: "widgets", CloneURL: "file://" + origin}
	entries := planner.Plan(root, []provider.Repository{repo}, planner.UpdateModePull)
	result := runner.Run(context.Background(), entries, planner.UpdateModePull, nil, nil)
	require.Len(t, result.Successes, 1)

	// Re-planning under skip mode still plans pull_existing; only execution
	// differs — it must not invoke git at all and must count as a success,
	// not a skip (§4.H).
	entries2 := planner.Plan(root, []provider.Repository{repo}, planner.UpdateModeSkip)
	require.Equal(t, planner.ActionPullExisting, entries2[0].Action)

	result2 := runner.Run(context.Background(), entries2, planner.UpdateModeSkip, nil, nil)
	require.Len(t, result2.Successes, 1)
	assert.Empty(t, result2.Failures)
	assert.Empty(t, result2.Skips)
}

func TestRunner_FailedCloneIsClassified(t *testing.T) {
	root := t.TempDir()

	executor, err := gitexec.New()
	require.NoError(t, err)
	runner := NewRunner(executor, 2)

	repo := provider.Repository{Organization: "acme", Name: "widgets", CloneURL: "file:///definitely/does/not/exist.git"}
	entries := planner.Plan(root, []provider.Repository{repo}, planner.UpdateModePull)
	require.Equal(t, planner.ActionCloneNew, entries[0].Action)

	result := runner.Run(context.Background(), entries, planner.UpdateModePull, nil, nil)
	require.Len(t, result.Failures, 1)
	assert.NotNil(t, result.Failures[0].Err)
}

func TestRunner_InvariantCountsSumToPlanLength(t *testing.T) {
	origin := newBareRepo(t)
	root := t.TempDir()

	executor, err := gitexec.New()
	require.NoError(t, err)
	runner := NewRunner(executor, 4)

	repos := []provider.Repository{
		{Organization: "acme", Name: "good", CloneURL: "file://" + origin},
		{Organization: "acme", Name: "bad", CloneURL: "file:///does/not/exist.git"},
	}
	entries := planner.Plan(root, repos, planner.UpdateModePull)

	result := runner.Run(context.Background(), entries, planner.UpdateModePull, nil, nil)
	total := len(result.Successes) + len(result.Failures) + len(result.Skips) + len(result.Cancelled)
	assert.Equal(t, len(entries), total)
}
