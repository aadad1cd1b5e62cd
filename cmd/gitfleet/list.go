// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gzh-fleet/gitfleet/pkg/query"
	"github.com/gzh-fleet/gitfleet/pkg/report"
	"github.com/gzh-fleet/gitfleet/pkg/resolver"
)

type listOptions struct {
	provider string
	format   string
	limit    int
}

func defaultListOptions() *listOptions {
	return &listOptions{format: "human"}
}

func newListCmd(g *globalOptions) *cobra.Command {
	o := defaultListOptions()

	cmd := &cobra.Command{
		Use:   "list <QUERY>",
		Short: "List repositories matching a provider/organization/project/repository query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, g, args[0])
		},
	}

	cmd.Flags().StringVar(&o.provider, "provider", "", "restrict to one configured provider")
	cmd.Flags().StringVar(&o.format, "format", o.format, "output format: human, json, jsonl")
	cmd.Flags().IntVar(&o.limit, "limit", 0, "maximum repositories to return, applied after deduplication (0 = unlimited)")

	return cmd
}

func (o *listOptions) run(cmd *cobra.Command, g *globalOptions, rawQuery string) error {
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

	analyzed := query.Analyze(rawQuery, o.provider)
	if !analyzed.Valid() {
		return withExitCode(exitInvocation, fmt.Errorf("invalid query %q: %s", rawQuery, analyzed.ValidationErrors[0].Message))
	}

	ctx := cmd.Context()
	providers, err := selectProviders(ctx, c.Registry, analyzed)
	if err != nil {
		return withExitCode(exitInvocation, err)
	}

	result, err := resolver.Resolve(ctx, providers, analyzed, o.limit, 0)
	if err != nil {
		return withExitCode(exitFailure, err)
	}

	out := cmd.OutOrStdout()
	switch o.format {
	case "json":
		return report.WriteListJSON(out, result)
	case "jsonl":
		return report.WriteListJSONL(out, result)
	default:
		return report.WriteListTable(out, result)
	}
}
