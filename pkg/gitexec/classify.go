// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitexec

import (
	"strings"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
)

// stderrSignatures maps a lowercase substring of git's stderr to the
// taxonomy Kind it indicates. Checked in order; the first match wins.
var stderrSignatures = []struct {
	substr string
	kind   fleeterrors.Kind
}{
	{"authentication failed", fleeterrors.KindAuth},
	{"permission denied", fleeterrors.KindAuth},
	{"could not read username", fleeterrors.KindAuth},
	{"support for password authentication was removed", fleeterrors.KindAuth},
	{"repository not found", fleeterrors.KindNotFound},
	{"not found", fleeterrors.KindNotFound}, // fatal: repository '<url>' not found
	{"could not resolve host", fleeterrors.KindNetwork},
	{"connection timed out", fleeterrors.KindNetwork},
	{"connection refused", fleeterrors.KindNetwork},
	{"could not read from remote repository", fleeterrors.KindNetwork},
	{"merge conflict", fleeterrors.KindMergeConflict},
	{"automatic merge failed", fleeterrors.KindMergeConflict},
	{"your local changes", fleeterrors.KindLocalFS},
	{"not a git repository", fleeterrors.KindLocalFS},
	{"no space left on device", fleeterrors.KindLocalFS},
}

// ClassifyResult inspects a Result produced by a failed (nonzero exit) git
// invocation and returns a taxonomy error describing it. repo and provider
// are attached for reporting context.
func ClassifyResult(result Result, repo, provider string) *fleeterrors.Error {
	lowered := strings.ToLower(result.Stderr)
	kind := fleeterrors.KindSubprocess
	for _, sig := range stderrSignatures {
		if strings.Contains(lowered, sig.substr) {
			kind = sig.kind
			break
		}
	}
	return fleeterrors.Newf(kind, "git exited with status %d", result.ExitCode).
		WithRepository(repo).
		WithProvider(provider).
		WithDebug(tail(result.Stderr, 2048))
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
