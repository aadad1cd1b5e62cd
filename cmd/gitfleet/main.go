// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package main is the entry point for the gitfleet CLI.
package main

import (
	"fmt"
	"os"

	"github.com/gzh-fleet/gitfleet/internal/app"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	root := newRootCmd(version)
	err := app.NewRunner(version).Run(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCodeOf(err))
}
