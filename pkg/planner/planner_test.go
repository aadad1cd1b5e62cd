// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package planner

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzh-fleet/gitfleet/pkg/provider"
)

type fakeFileInfo struct {
	name  string
	isDir bool
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() os.FileMode  { return 0 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.isDir }
func (f fakeFileInfo) Sys() interface{}   { return nil }

// fakeStater simulates a filesystem: a set of paths that exist, each either
// a directory or not.
type fakeStater struct {
	dirs  map[string]bool
	files map[string]bool
}

func (f fakeStater) Stat(path string) (os.FileInfo, error) {
	if f.dirs[path] {
		return fakeFileInfo{name: path, isDir: true}, nil
	}
	if f.files[path] {
		return fakeFileInfo{name: path, isDir: false}, nil
	}
	return nil, os.ErrNotExist
}

func TestTargetPath(t *testing.T) {
	repo := provider.Repository{Organization: "acme", Name: "widgets"}
	assert.Equal(t, "root/acme/widgets", TargetPath("root", repo))

	withProject := provider.Repository{Organization: "acme", Project: "platform", Name: "widgets"}
	assert.Equal(t, "root/acme/platform/widgets", TargetPath("root", withProject))
}

func TestPlan_CloneNewWhenPathAbsent(t *testing.T) {
	stat := fakeStater{dirs: map[string]bool{}}
	repos := []provider.Repository{{Organization: "acme", Name: "widgets"}}

	entries := plan(stat, "root", repos, UpdateModePull)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionCloneNew, entries[0].Action)
}

func TestPlan_SkipNonRepoWhenDirHasNoGitDir(t *testing.T) {
	target := "root/acme/widgets"
	stat := fakeStater{dirs: map[string]bool{target: true}}
	repos := []provider.Repository{{Organization: "acme", Name: "widgets"}}

	entries := plan(stat, "root", repos, UpdateModePull)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionSkipNonRepo, entries[0].Action)
}

func TestPlan_SkipNonRepoWhenPathIsAFile(t *testing.T) {
	target := "root/acme/widgets"
	stat := fakeStater{files: map[string]bool{target: true}}
	repos := []provider.Repository{{Organization: "acme", Name: "widgets"}}

	entries := plan(stat, "root", repos, UpdateModePull)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionSkipNonRepo, entries[0].Action)
}

func TestPlan_ActionByUpdateModeWhenGitDirPresent(t *testing.T) {
	target := "root/acme/widgets"
	gitDir := target + "/.git"
	stat := fakeStater{dirs: map[string]bool{target: true, gitDir: true}}
	repos := []provider.Repository{{Organization: "acme", Name: "widgets"}}

	cases := []struct {
		mode     UpdateMode
		expected Action
	}{
		{UpdateModePull, ActionPullExisting},
		{UpdateModeForce, ActionForceReplace},
		{UpdateModeSkip, ActionPullExisting},
	}
	for _, c := range cases {
		entries := plan(stat, "root", repos, c.mode)
		require.Len(t, entries, 1)
		assert.Equal(t, c.expected, entries[0].Action, "mode=%s", c.mode)
	}
}

func TestPlan_ProducesOneEntryPerRepository(t *testing.T) {
	stat := fakeStater{dirs: map[string]bool{}}
	repos := []provider.Repository{
		{Organization: "acme", Name: "widgets"},
		{Organization: "acme", Name: "gadgets"},
		{Organization: "beta", Project: "core", Name: "engine"},
	}

	entries := plan(stat, "root", repos, UpdateModePull)
	assert.Len(t, entries, len(repos))
}
