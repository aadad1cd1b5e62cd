// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
providers:
  work-github:
    kind: github
    url: https://github.com
    token: ghp_example
global:
  default_concurrency: 6
  default_update_mode: pull
`

func TestBuilder_BuildsContainerFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	c, err := NewBuilder().WithConfigPath(path).Build()
	require.NoError(t, err)

	_, ok := c.Registry.Get("work-github")
	assert.True(t, ok)
	assert.NotNil(t, c.Executor)
}

func TestContainer_NewSyncRunnerFallsBackToConfigConcurrency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	c, err := NewBuilder().WithConfigPath(path).Build()
	require.NoError(t, err)

	runner := c.NewSyncRunner(0)
	assert.NotNil(t, runner)
}
