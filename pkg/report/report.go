// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package report renders resolver and sync-engine results as a table,
// JSON, or JSONL, per §4.J and the list/sync --format flag.
//
// Grounded on gzh-cli's cmd/git/repo/repo_bulk_update.go renderTableResults
// (tablewriter.NewWriter + color-coded status column) for the table
// renderer, and its JSON sibling rendering for the JSON/JSONL shapes.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/planner"
	"github.com/gzh-fleet/gitfleet/pkg/resolver"
	"github.com/gzh-fleet/gitfleet/pkg/syncengine"
)

// Event is one JSONL line, per §6's event schema.
type Event struct {
	Type       string `json:"type"` // "repository" (list) or "event" (sync)
	Repository string `json:"repository,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Action     string `json:"action,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Message    string `json:"message,omitempty"`
}

func eventFor(oc syncengine.Outcome) Event {
	e := Event{
		Type:       "event",
		Repository: oc.Entry.Repository.Organization + "/" + oc.Entry.Repository.Name,
		Provider:   oc.Entry.Repository.ProviderName,
		Action:     string(oc.Action),
	}
	switch {
	case oc.Err != nil && oc.Err.Kind == fleeterrors.KindCancelled:
		e.Outcome = "cancelled"
	case oc.Err != nil:
		e.Outcome = "failed"
		e.ErrorKind = string(oc.Err.Kind)
		e.Message = oc.Err.Message
	case oc.Action == planner.ActionSkipNonRepo:
		e.Outcome = "skipped"
	default:
		e.Outcome = "succeeded"
	}
	return e
}

// WriteJSONL writes one Event per line for every outcome, in plan order.
func WriteJSONL(w io.Writer, outcomes []syncengine.Outcome) error {
	enc := json.NewEncoder(w)
	for _, oc := range outcomes {
		if err := enc.Encode(eventFor(oc)); err != nil {
			return fmt.Errorf("encoding jsonl event: %w", err)
		}
	}
	return nil
}

// WriteJSON writes the full BulkOutcome as a single JSON document with
// successes/failures/skips/cancelled grouped, mirroring the grouping the
// sync engine itself reports.
func WriteJSON(w io.Writer, result syncengine.BulkOutcome) error {
	doc := struct {
		Successes []Event `json:"successes"`
		Failures  []Event `json:"failures"`
		Skips     []Event `json:"skips"`
		Cancelled []Event `json:"cancelled"`
	}{
		Successes: toEvents(result.Successes),
		Failures:  toEvents(result.Failures),
		Skips:     toEvents(result.Skips),
		Cancelled: toEvents(result.Cancelled),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func toEvents(outcomes []syncengine.Outcome) []Event {
	events := make([]Event, 0, len(outcomes))
	for _, oc := range outcomes {
		events = append(events, eventFor(oc))
	}
	return events
}

// WriteTable renders a human-readable, color-coded summary table of a sync
// run, followed by a one-line totals summary.
func WriteTable(w io.Writer, result syncengine.BulkOutcome) error {
	table := tablewriter.NewWriter(w)
	table.Header("Repository", "Action", "Status", "Details")

	render := func(oc syncengine.Outcome, status string, colorize func(string, ...interface{}) string) error {
		repo := oc.Entry.Repository.Organization + "/" + oc.Entry.Repository.Name
		details := ""
		if oc.Err != nil {
			details = oc.Err.Message
		}
		return table.Append(repo, string(oc.Action), colorize(status), details)
	}

	for _, oc := range result.Successes {
		if err := render(oc, "ok", color.GreenString); err != nil {
			return err
		}
	}
	for _, oc := range result.Skips {
		if err := render(oc, "skipped", color.YellowString); err != nil {
			return err
		}
	}
	for _, oc := range result.Failures {
		if err := render(oc, "failed", color.RedString); err != nil {
			return err
		}
	}
	for _, oc := range result.Cancelled {
		if err := render(oc, "cancelled", color.MagentaString); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}

	fmt.Fprintf(w, "\n%d ok, %d skipped, %d failed, %d cancelled\n",
		len(result.Successes), len(result.Skips), len(result.Failures), len(result.Cancelled))
	return nil
}

// listDocument is the `list --format json` shape from §6's JSONL event
// schema note: a single object with repositories[], providers{successful,
// failed}, stats.
type listDocument struct {
	Repositories []listRepository `json:"repositories"`
	Providers    struct {
		Successful []string            `json:"successful"`
		Failed     []listFailedProvider `json:"failed"`
	} `json:"providers"`
	Stats struct {
		TotalFound        int `json:"total_found"`
		DuplicatesRemoved int `json:"duplicates_removed"`
		Returned          int `json:"returned"`
	} `json:"stats"`
}

type listRepository struct {
	Organization string `json:"organization"`
	Project      string `json:"project,omitempty"`
	Name         string `json:"name"`
	CloneURL     string `json:"clone_url"`
	Provider     string `json:"provider"`
	Private      bool   `json:"private"`
}

type listFailedProvider struct {
	Name      string `json:"name"`
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

func toListDocument(result *resolver.Result) listDocument {
	doc := listDocument{}
	for _, r := range result.Repositories {
		doc.Repositories = append(doc.Repositories, listRepository{
			Organization: r.Organization,
			Project:      r.Project,
			Name:         r.Name,
			CloneURL:     r.CloneURL,
			Provider:     r.ProviderName,
			Private:      r.IsPrivate,
		})
	}
	doc.Providers.Successful = result.SuccessfulProviders
	for _, fp := range result.FailedProviders {
		doc.Providers.Failed = append(doc.Providers.Failed, listFailedProvider{
			Name: fp.Name, ErrorKind: string(fp.ErrorKind), Message: fp.Message,
		})
	}
	doc.Stats.TotalFound = result.TotalFound
	doc.Stats.DuplicatesRemoved = result.DuplicatesRemoved
	doc.Stats.Returned = len(result.Repositories)
	return doc
}

// WriteListJSON writes a resolved query as the single JSON document shape
// described in §6.
func WriteListJSON(w io.Writer, result *resolver.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toListDocument(result))
}

// WriteListJSONL writes one repository per line, per §6's JSONL schema
// (type is always "repository" for list).
func WriteListJSONL(w io.Writer, result *resolver.Result) error {
	enc := json.NewEncoder(w)
	for _, r := range result.Repositories {
		event := Event{
			Type:       "repository",
			Repository: r.Organization + "/" + r.Name,
			Provider:   r.ProviderName,
		}
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("encoding jsonl repository: %w", err)
		}
	}
	return nil
}

// WriteListTable renders a resolved query as a human table plus a failed
// providers/dedup summary line.
func WriteListTable(w io.Writer, result *resolver.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Provider", "Organization", "Project", "Repository", "Clone URL")
	for _, r := range result.Repositories {
		if err := table.Append(r.ProviderName, r.Organization, r.Project, r.Name, r.CloneURL); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}

	fmt.Fprintf(w, "\n%d found, %d duplicates removed, %d returned\n",
		result.TotalFound, result.DuplicatesRemoved, len(result.Repositories))

	for _, fp := range result.FailedProviders {
		fmt.Fprintln(w, color.YellowString("provider %s failed: [%s] %s", fp.Name, fp.ErrorKind, fp.Message))
	}
	return nil
}
