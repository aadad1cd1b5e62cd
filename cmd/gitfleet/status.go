// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/gitexec"
)

type statusOptions struct {
	concurrency int
	showClean   bool
	output      string
	failOnDirty bool
}

func defaultStatusOptions() *statusOptions {
	return &statusOptions{concurrency: 4, output: "table"}
}

func newStatusCmd(g *globalOptions) *cobra.Command {
	o := defaultStatusOptions()

	cmd := &cobra.Command{
		Use:   "status <PATH>",
		Short: "Report working-tree cleanliness for every Git checkout under PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, g, args[0])
		},
	}

	cmd.Flags().IntVar(&o.concurrency, "concurrency", o.concurrency, "number of concurrent git status checks")
	cmd.Flags().BoolVar(&o.showClean, "show-clean", false, "include clean checkouts in the report")
	cmd.Flags().StringVar(&o.output, "output", o.output, "output format: table or json")
	cmd.Flags().BoolVar(&o.failOnDirty, "fail-on-dirty", false, "exit 1 if any checkout has uncommitted changes")

	return cmd
}

// checkoutStatus is one discovered Git checkout's cleanliness result.
type checkoutStatus struct {
	Path  string
	Dirty bool
	Err   *fleeterrors.Error
}

func (o *statusOptions) run(cmd *cobra.Command, g *globalOptions, root string) error {
	switch o.output {
	case "table", "json":
	default:
		return withExitCode(exitInvocation, fmt.Errorf("unknown --output %q: want table or json", o.output))
	}

	c, err := g.buildContainer()
	if err != nil {
		return withExitCode(exitInvocation, err)
	}

	checkouts, err := discoverCheckouts(root)
	if err != nil {
		return withExitCode(exitInvocation, fmt.Errorf("scanning %s: %w", root, err))
	}

	concurrency := o.concurrency
	if concurrency <= 0 {
		concurrency = defaultStatusOptions().concurrency
	}

	ctx := cmd.Context()
	statuses := checkStatuses(ctx, c.Executor, checkouts, concurrency)
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Path < statuses[j].Path })

	anyDirty := false
	for _, s := range statuses {
		if s.Dirty || s.Err != nil {
			anyDirty = true
		}
	}

	out := cmd.OutOrStdout()
	if o.output == "json" {
		err = writeStatusJSON(out, statuses, o.showClean)
	} else {
		err = writeStatusTable(out, statuses, o.showClean)
	}
	if err != nil {
		return withExitCode(exitInternal, err)
	}

	if o.failOnDirty && anyDirty {
		return withExitCode(exitFailure, fmt.Errorf("one or more checkouts have uncommitted changes"))
	}
	return nil
}

// discoverCheckouts walks root for directories containing a .git directory,
// never descending into a checkout's internals once one is found.
func discoverCheckouts(root string) ([]string, error) {
	var checkouts []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			checkouts = append(checkouts, filepath.Dir(path))
			return filepath.SkipDir
		}
		return nil
	})
	return checkouts, err
}

func checkStatuses(ctx context.Context, exec *gitexec.Executor, checkouts []string, concurrency int) []checkoutStatus {
	sem := semaphore.NewWeighted(int64(concurrency))
	statuses := make([]checkoutStatus, len(checkouts))
	var wg sync.WaitGroup

	for i, path := range checkouts {
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				statuses[i] = checkoutStatus{Path: path, Err: fleeterrors.New(fleeterrors.KindCancelled, "status check cancelled before it ran")}
				return
			}
			defer sem.Release(1)
			statuses[i] = checkOne(ctx, exec, path)
		}()
	}
	wg.Wait()
	return statuses
}

func checkOne(ctx context.Context, exec *gitexec.Executor, path string) checkoutStatus {
	result, err := exec.Run(ctx, path, "", "status", "--porcelain")
	if err != nil {
		if fe, ok := err.(*fleeterrors.Error); ok {
			return checkoutStatus{Path: path, Err: fe}
		}
		return checkoutStatus{Path: path, Err: fleeterrors.Wrap(fleeterrors.KindInternal, err, "git status invocation failed")}
	}
	if result.ExitCode != 0 {
		return checkoutStatus{Path: path, Err: gitexec.ClassifyResult(result, path, "")}
	}
	return checkoutStatus{Path: path, Dirty: result.Stdout != ""}
}

func writeStatusTable(w io.Writer, statuses []checkoutStatus, showClean bool) error {
	table := tablewriter.NewWriter(w)
	table.Header("Path", "Status")

	clean, dirty := 0, 0
	for _, s := range statuses {
		switch {
		case s.Err != nil:
			if err := table.Append(s.Path, color.RedString("error: %s", s.Err.Message)); err != nil {
				return err
			}
		case s.Dirty:
			dirty++
			if err := table.Append(s.Path, color.YellowString("dirty")); err != nil {
				return err
			}
		default:
			clean++
			if showClean {
				if err := table.Append(s.Path, color.GreenString("clean")); err != nil {
					return err
				}
			}
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	fmt.Fprintf(w, "\n%d clean, %d dirty, %d checked\n", clean, dirty, len(statuses))
	return nil
}

type statusEntry struct {
	Path  string `json:"path"`
	Dirty bool   `json:"dirty"`
	Error string `json:"error,omitempty"`
}

func writeStatusJSON(w io.Writer, statuses []checkoutStatus, showClean bool) error {
	entries := make([]statusEntry, 0, len(statuses))
	for _, s := range statuses {
		if s.Err == nil && !s.Dirty && !showClean {
			continue
		}
		entry := statusEntry{Path: s.Path, Dirty: s.Dirty}
		if s.Err != nil {
			entry.Error = s.Err.Message
		}
		entries = append(entries, entry)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
