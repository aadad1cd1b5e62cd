// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzh-fleet/gitfleet/pkg/planner"
)

const sampleYAML = `
providers:
  work-github:
    kind: github
    url: https://github.com
    token: ghp_example
  work-ado:
    kind: azuredevops
    url: https://dev.azure.com/acme
    token: pat-example
order:
  - work-github
  - work-ado
global:
  default_concurrency: 8
  default_update_mode: pull
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ParsesProvidersAndGlobal(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "github", string(cfg.Providers["work-github"].Kind))
	assert.Equal(t, 8, cfg.Global.DefaultConcurrency)
	assert.Equal(t, planner.UpdateModePull, cfg.Global.DefaultUpdateMode)
	assert.Equal(t, []string{"work-github", "work-ado"}, cfg.Order)
}

func TestLoad_MissingConfigIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(dir))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Global.DefaultConcurrency)
}

func TestLoad_InvalidProviderKindFailsValidation(t *testing.T) {
	path := writeTempConfig(t, `
providers:
  bogus:
    kind: not-a-real-provider
    url: https://example.com
    token: x
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingRequiredTokenFailsValidation(t *testing.T) {
	path := writeTempConfig(t, `
providers:
  work-github:
    kind: github
    url: https://github.com
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("DEBUG", "true")

	cfg := &EffectiveConfig{}
	applyEnvOverrides(cfg)
	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.Debug)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)

	changed := make(chan *EffectiveConfig, 1)
	w, err := Watch(path, func(cfg *EffectiveConfig) { changed <- cfg }, nil)
	require.NoError(t, err)
	defer w.Stop()

	updated := sampleYAML + "\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-changed:
		assert.Len(t, cfg.Providers, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
