// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package planner implements the Path Planner (§4.F): a deterministic,
// side-effect-free mapping from a resolved repository to a target path and
// a sync action, inspecting only the filesystem (never the network).
//
// Grounded on internal/git/helpers.go's CheckGitRepoType for ".git dir
// present" detection and internal/git/secure_git.go's path-cleaning idiom.
package planner

import (
	"os"
	"path/filepath"

	"github.com/gzh-fleet/gitfleet/pkg/provider"
)

// Action is the sync action chosen for one repository.
type Action string

const (
	ActionCloneNew     Action = "clone_new"
	ActionPullExisting Action = "pull_existing"
	ActionForceReplace Action = "force_replace"
	ActionSkipNonRepo  Action = "skip_nonrepo"
)

// UpdateMode controls how an existing clone is treated, per §6's --update-mode.
type UpdateMode string

const (
	UpdateModeSkip  UpdateMode = "skip"
	UpdateModePull  UpdateMode = "pull"
	UpdateModeForce UpdateMode = "force"
)

// Entry is one planned repository operation.
type Entry struct {
	Repository provider.Repository
	TargetPath string
	Action     Action
}

// repoStater is the filesystem probe planning depends on; defined as an
// interface so tests can substitute a fake without touching a real disk.
type repoStater interface {
	Stat(path string) (os.FileInfo, error)
}

type osStater struct{}

func (osStater) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }

// Plan maps every repository to a target path under root and chooses an
// action based on what (if anything) already occupies that path, per the
// layout root/organization/project?/name (§4.F).
func Plan(root string, repos []provider.Repository, mode UpdateMode) []Entry {
	return plan(osStater{}, root, repos, mode)
}

func plan(stat repoStater, root string, repos []provider.Repository, mode UpdateMode) []Entry {
	entries := make([]Entry, 0, len(repos))
	for _, repo := range repos {
		target := TargetPath(root, repo)
		entries = append(entries, Entry{
			Repository: repo,
			TargetPath: target,
			Action:     chooseAction(stat, target, mode),
		})
	}
	return entries
}

// TargetPath computes root/organization/project?/name for repo. The project
// segment is omitted when repo.Project is empty (GitHub/BitBucket never set
// it; Azure DevOps always does).
func TargetPath(root string, repo provider.Repository) string {
	parts := []string{root, repo.Organization}
	if repo.Project != "" {
		parts = append(parts, repo.Project)
	}
	parts = append(parts, repo.Name)
	return filepath.Join(parts...)
}

func chooseAction(stat repoStater, target string, mode UpdateMode) Action {
	info, err := stat.Stat(target)
	if err != nil {
		// Path does not exist (or is unreadable) — nothing to skip or
		// reuse, so this is a fresh clone.
		return ActionCloneNew
	}
	if !info.IsDir() {
		return ActionSkipNonRepo
	}

	gitDir := filepath.Join(target, ".git")
	if _, err := stat.Stat(gitDir); err != nil {
		// A directory (empty or not) with no .git — never force a clone
		// over unrelated content.
		return ActionSkipNonRepo
	}

	// Skip mode still plans a pull_existing: update mode only changes
	// whether the sync engine actually executes it (§4.H). "skip" records
	// the repository as a successful no-op instead of running git at all.
	if mode == UpdateModeForce {
		return ActionForceReplace
	}
	return ActionPullExisting
}
