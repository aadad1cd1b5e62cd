// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gzh-fleet/gitfleet/pkg/planner"
	"github.com/gzh-fleet/gitfleet/pkg/query"
	"github.com/gzh-fleet/gitfleet/pkg/report"
	"github.com/gzh-fleet/gitfleet/pkg/resolver"
	"github.com/gzh-fleet/gitfleet/pkg/syncengine"
)

type syncOptions struct {
	provider    string
	concurrency int
	updateMode  string
	force       bool
	dryRun      bool
	yes         bool
	format      string
}

func defaultSyncOptions() *syncOptions {
	return &syncOptions{updateMode: "pull", format: "human"}
}

func newSyncCmd(g *globalOptions) *cobra.Command {
	o := defaultSyncOptions()

	cmd := &cobra.Command{
		Use:   "sync <QUERY> <PATH>",
		Short: "Clone or update every repository matching a query under a local root",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, g, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&o.provider, "provider", "", "restrict to one configured provider")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", 0, "repository-level concurrency (0 = config default)")
	cmd.Flags().StringVar(&o.updateMode, "update-mode", o.updateMode, "how to treat an existing clone: skip, pull, or force")
	cmd.Flags().BoolVar(&o.force, "force", false, "synonym for --update-mode force; requires confirmation")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "print the plan without cloning or pulling anything")
	cmd.Flags().BoolVar(&o.yes, "yes", false, "skip the force-mode confirmation prompt")
	cmd.Flags().StringVar(&o.format, "format", o.format, "output format: human, json, jsonl")

	return cmd
}

func (o *syncOptions) run(cmd *cobra.Command, g *globalOptions, rawQuery, root string) error {
	switch o.format {
	case "human", "json", "jsonl":
	default:
		return withExitCode(exitInvocation, fmt.Errorf("unknown --format %q: want human, json, or jsonl", o.format))
	}

	c, err := g.buildContainer()
	if err != nil {
		return withExitCode(exitInvocation, err)
	}
	if noProvidersConfigured(c) {
		fmt.Fprintln(cmd.OutOrStdout(), "no providers configured")
		return nil
	}

	switch {
	case o.force:
		o.updateMode = "force"
	case !cmd.Flags().Changed("update-mode"):
		// No explicit --update-mode: fall back to the configured default
		// rather than the flag's own "pull" zero-value (§6).
		o.updateMode = string(c.Config.Global.DefaultUpdateMode)
	}
	mode := planner.UpdateMode(o.updateMode)
	switch mode {
	case planner.UpdateModeSkip, planner.UpdateModePull, planner.UpdateModeForce:
	default:
		return withExitCode(exitInvocation, fmt.Errorf("unknown --update-mode %q: want skip, pull, or force", o.updateMode))
	}

	if mode == planner.UpdateModeForce {
		if err := confirmForce(o.yes); err != nil {
			return withExitCode(exitInvocation, err)
		}
	}

	if o.concurrency == 0 && cmd.Flags().Changed("concurrency") {
		return withExitCode(exitInvocation, fmt.Errorf("--concurrency must be at least 1 (0 only means \"use the config default\" when the flag is omitted)"))
	}

	analyzed := query.Analyze(rawQuery, o.provider)
	if !analyzed.Valid() {
		return withExitCode(exitInvocation, fmt.Errorf("invalid query %q: %s", rawQuery, analyzed.ValidationErrors[0].Message))
	}

	ctx := cmd.Context()
	providers, err := selectProviders(ctx, c.Registry, analyzed)
	if err != nil {
		return withExitCode(exitInvocation, err)
	}

	result, err := resolver.Resolve(ctx, providers, analyzed, 0, 0)
	if err != nil {
		return withExitCode(exitFailure, err)
	}

	runID := uuid.New()
	for i := range result.Repositories {
		result.Repositories[i].RunID = runID
	}

	plan := planner.Plan(root, result.Repositories, mode)

	if o.dryRun {
		return printPlan(cmd.OutOrStdout(), plan)
	}

	extractor := newSyncExtractor(c.Registry, c.Config.Providers, result.Repositories)
	term := g.terminal(c, "sync")

	var bar *progressbar.ProgressBar
	if o.format == "human" && len(plan) > 0 {
		bar = progressbar.Default(int64(len(plan)), "syncing")
	}

	out := cmd.OutOrStdout()
	progress := func(completed, total int, last syncengine.Outcome) {
		switch o.format {
		case "jsonl":
			_ = report.WriteJSONL(out, []syncengine.Outcome{last})
		default:
			if bar != nil {
				_ = bar.Add(1)
			}
			if last.Err != nil {
				repo := last.Entry.Repository.Organization + "/" + last.Entry.Repository.Name
				term.Warn("%s %s: %v", repo, last.Action, last.Err)
			}
		}
	}

	outcome := c.NewSyncRunner(o.concurrency).Run(ctx, plan, mode, extractor, progress)
	if bar != nil {
		_ = bar.Finish()
	}

	if ctx.Err() != nil {
		return withExitCode(exitCancelled, fmt.Errorf("sync cancelled"))
	}

	switch o.format {
	case "json":
		if err := report.WriteJSON(out, outcome); err != nil {
			return withExitCode(exitInternal, err)
		}
	case "human":
		if err := report.WriteTable(out, outcome); err != nil {
			return withExitCode(exitInternal, err)
		}
	}

	if len(outcome.Failures) > 0 {
		return withExitCode(exitFailure, fmt.Errorf("%d repositories failed to sync", len(outcome.Failures)))
	}
	return nil
}

func printPlan(w io.Writer, plan []planner.Entry) error {
	for _, e := range plan {
		repo := e.Repository.Organization + "/" + e.Repository.Name
		if _, err := fmt.Fprintf(w, "%s -> %s [%s]\n", repo, e.TargetPath, e.Action); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d repositories planned\n", len(plan))
	return err
}

// confirmForce enforces §4.I's force-mode rule: refuse silently dangerous
// overwrites unless the caller explicitly opted in via --yes or an
// interactive confirmation.
func confirmForce(yes bool) error {
	if yes {
		return nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("--update-mode force requires confirmation; pass --yes when stdin is not a terminal")
	}
	prompt := promptui.Prompt{Label: "Force mode can overwrite local changes in existing clones. Continue", IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		return fmt.Errorf("force sync was not confirmed")
	}
	return nil
}
