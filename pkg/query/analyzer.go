// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package query implements the three-segment pattern language (§4.A) and its
// glob matcher (§4.B). It is grounded on the segment-oriented validation
// style of pkg/git/provider and the URL/segment normalization idiom of
// dlorenc-multiclaude's internal/provider package.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

// allowedCharPattern is the URL-safe subset a segment may contain: letters,
// digits, '.', '_', space, '/', '*', '?', '-', and '%'. The '/' is only ever
// seen inside the raw query string before splitting; segments themselves
// never contain it once split, but we validate against the same set because
// the grammar reuses it pre-split.
var allowedCharPattern = regexp.MustCompile(`^[A-Za-z0-9._ /*?%-]+$`)

// ErrorCode names a pattern validation failure.
type ErrorCode string

const (
	ErrInvalidPatternShape ErrorCode = "InvalidPatternShape"
	ErrInvalidCharacters   ErrorCode = "InvalidCharacters"
	ErrEmptySegment        ErrorCode = "EmptySegment"
)

// ValidationError is one collected failure from analyzing a query.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// Result is the pattern analysis record produced by Analyze.
type Result struct {
	ProviderSegment string // only set when an explicit --provider was given
	OrgSegment      string
	MiddleSegment   string
	RepoSegment     string
	IsExact         bool
	IsPattern       bool
	IsMultiProvider bool
	Normalized      string
	ValidationErrors []ValidationError
}

// Valid reports whether analysis produced no validation errors.
func (r Result) Valid() bool { return len(r.ValidationErrors) == 0 }

// Analyze validates and classifies a raw three-segment query. explicitProvider
// is the --provider flag value, or "" if absent.
func Analyze(rawQuery string, explicitProvider string) Result {
	var errs []ValidationError

	if strings.TrimSpace(rawQuery) == "" {
		errs = append(errs, ValidationError{ErrInvalidPatternShape, "query must not be empty"})
		return Result{ValidationErrors: errs}
	}

	if !allowedCharPattern.MatchString(rawQuery) {
		errs = append(errs, ValidationError{ErrInvalidCharacters, fmt.Sprintf("query %q contains characters outside the allowed set", rawQuery)})
	}

	segments := strings.Split(rawQuery, "/")
	if len(segments) != 3 {
		errs = append(errs, ValidationError{ErrInvalidPatternShape, fmt.Sprintf("query must have exactly three segments separated by '/', got %d", len(segments))})
		return Result{ValidationErrors: errs}
	}

	for i, seg := range segments {
		if seg == "" {
			name := []string{"provider/organization", "project", "repository"}[i]
			errs = append(errs, ValidationError{ErrEmptySegment, fmt.Sprintf("segment %d (%s) must not be empty", i+1, name)})
		}
	}

	if len(errs) > 0 {
		return Result{ValidationErrors: errs}
	}

	orgSeg, midSeg, repoSeg := segments[0], segments[1], segments[2]

	isPattern := IsPattern(orgSeg) || IsPattern(midSeg) || IsPattern(repoSeg)

	r := Result{
		OrgSegment:      orgSeg,
		MiddleSegment:   midSeg,
		RepoSegment:     repoSeg,
		IsPattern:       isPattern,
		IsExact:         !isPattern,
		Normalized:      fmt.Sprintf("%s/%s/%s", orgSeg, midSeg, repoSeg),
		ValidationErrors: nil,
	}

	if explicitProvider != "" {
		r.ProviderSegment = strings.ToLower(explicitProvider)
	} else {
		// is_multi_provider iff no explicit provider AND is_pattern — this
		// replaced a bug where only the first segment was checked.
		r.IsMultiProvider = isPattern
	}

	return r
}
