// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package config implements the Effective Config component (§4.K): a
// viper-backed YAML loader with standard search paths, go-playground
// validation, NO_COLOR/DEBUG env bindings, and an optional fsnotify-backed
// watch for --watch-config.
//
// Grounded on gzh-cli's internal/config.DefaultConfigService (Viper search
// path + fsnotify wiring), trimmed of its unified-facade migration and
// startup-validation subsystems — this core has one flat config shape, not
// a multi-version migration chain.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/gzh-fleet/gitfleet/pkg/planner"
	"github.com/gzh-fleet/gitfleet/pkg/provider"
)

// Global holds the cross-provider defaults, per §3.
type Global struct {
	DefaultConcurrency int               `yaml:"default_concurrency" mapstructure:"default_concurrency" validate:"gte=0,lte=50"`
	DefaultUpdateMode  planner.UpdateMode `yaml:"default_update_mode" mapstructure:"default_update_mode" validate:"omitempty,oneof=skip pull force"`
}

// EffectiveConfig is the fully resolved configuration: file contents merged
// with environment overrides, per §3/§6.
type EffectiveConfig struct {
	Providers map[string]provider.Config `yaml:"providers" mapstructure:"providers" validate:"dive"`
	// Order is read from the file's optional "order" list and kept as
	// given. The registry does not consult it: provider iteration order is
	// always alphabetical by name.
	Order  []string `yaml:"order" mapstructure:"order"`
	Global Global   `yaml:"global" mapstructure:"global"`

	NoColor bool `yaml:"-" mapstructure:"-"`
	Debug   bool `yaml:"-" mapstructure:"-"`
}

// defaultGlobal mirrors syncengine.DefaultConcurrency without importing
// syncengine here, avoiding a config->syncengine->gitexec import chain for
// a single constant.
func defaultGlobal() Global {
	return Global{DefaultConcurrency: 4, DefaultUpdateMode: planner.UpdateModePull}
}

// SearchPaths are tried in order, matching §6: project-local, user config
// dir, then system-wide.
func SearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home+"/.config/gitfleet")
	}
	paths = append(paths, "/etc/gitfleet")
	return paths
}

// Load reads configuration from configPath, or — when empty — from the
// standard search paths, applies env overrides, and validates the result.
func Load(configPath string) (*EffectiveConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	v.SetDefault("global.default_concurrency", defaultGlobal().DefaultConcurrency)
	v.SetDefault("global.default_update_mode", string(defaultGlobal().DefaultUpdateMode))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file anywhere in the search path is not fatal: an
		// invocation can be driven entirely by flags and env vars.
	}

	var cfg EffectiveConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides binds exactly the two environment variables named in
// §6 — NO_COLOR and DEBUG — deliberately not the wider AutomaticEnv
// surface the teacher's service.go exposes, since this core's external
// interface contract names only these two.
func applyEnvOverrides(cfg *EffectiveConfig) {
	if v := os.Getenv("NO_COLOR"); v != "" {
		cfg.NoColor = true
	}
	if v := strings.ToLower(os.Getenv("DEBUG")); v == "1" || v == "true" {
		cfg.Debug = true
	}
}

var validate = validator.New()

// Validate runs struct tag validation over cfg.
func Validate(cfg *EffectiveConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, pc := range cfg.Providers {
		if err := validate.Struct(pc); err != nil {
			return fmt.Errorf("invalid configuration for provider %q: %w", name, err)
		}
	}
	return nil
}

// Watcher reloads configuration on file change and invokes callback with
// the newly loaded EffectiveConfig. Reload errors are reported through
// onError rather than silently dropped, so a malformed edit doesn't
// silently keep the stale config engine running.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	mu        sync.Mutex
}

// Watch begins watching configPath for changes. Call Stop to release the
// underlying fsnotify watcher.
func Watch(configPath string, onChange func(*EffectiveConfig), onError func(error)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	if err := fsWatcher.Add(configPath); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", configPath, err)
	}

	w := &Watcher{fsWatcher: fsWatcher}
	go func() {
		for {
			select {
			case event, ok := <-fsWatcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(configPath)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				onChange(cfg)
			case err, ok := <-fsWatcher.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()
	return w, nil
}

// Stop releases the watcher's filesystem handle.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsWatcher.Close()
}
