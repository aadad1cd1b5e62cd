// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/planner"
	"github.com/gzh-fleet/gitfleet/pkg/provider"
	"github.com/gzh-fleet/gitfleet/pkg/syncengine"
)

func sampleResult() syncengine.BulkOutcome {
	ok := syncengine.Outcome{
		Entry: planner.Entry{Repository: provider.Repository{Organization: "acme", Name: "widgets", ProviderName: "github"}, Action: planner.ActionCloneNew},
		Action: planner.ActionCloneNew,
	}
	failed := syncengine.Outcome{
		Entry:  planner.Entry{Repository: provider.Repository{Organization: "acme", Name: "gadgets", ProviderName: "github"}, Action: planner.ActionPullExisting},
		Action: planner.ActionPullExisting,
		Err:    fleeterrors.New(fleeterrors.KindNetwork, "connection refused"),
	}
	skipped := syncengine.Outcome{
		Entry:  planner.Entry{Repository: provider.Repository{Organization: "acme", Name: "archive", ProviderName: "github"}, Action: planner.ActionSkipNonRepo},
		Action: planner.ActionSkipNonRepo,
	}
	return syncengine.BulkOutcome{
		Successes: []syncengine.Outcome{ok},
		Failures:  []syncengine.Outcome{failed},
		Skips:     []syncengine.Outcome{skipped},
	}
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	all := append(append(append([]syncengine.Outcome{}, sampleResult().Successes...), sampleResult().Failures...), sampleResult().Skips...)
	require.NoError(t, WriteJSONL(&buf, all))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var first Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "event", first.Type)
	assert.Equal(t, "acme/widgets", first.Repository)
	assert.Equal(t, "succeeded", first.Outcome)

	var second Event
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "failed", second.Outcome)
	assert.Equal(t, string(fleeterrors.KindNetwork), second.ErrorKind)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var doc struct {
		Successes []Event `json:"successes"`
		Failures  []Event `json:"failures"`
		Skips     []Event `json:"skips"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Len(t, doc.Successes, 1)
	assert.Len(t, doc.Failures, 1)
	assert.Len(t, doc.Skips, 1)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "acme/widgets")
	assert.Contains(t, out, "1 ok, 1 skipped, 1 failed, 0 cancelled")
}
