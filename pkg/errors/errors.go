// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package errors defines the error taxonomy shared across query resolution,
// provider adapters, and the sync engine.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into one of the logical categories a reporter
// can render without inspecting Go error types.
type Kind string

const (
	KindAuth           Kind = "auth"
	KindNetwork        Kind = "network"
	KindNotFound       Kind = "not_found"
	KindRateLimited    Kind = "rate_limited"
	KindValidation     Kind = "validation"
	KindMergeConflict  Kind = "merge_conflict"
	KindLocalFS        Kind = "local_filesystem"
	KindSubprocess     Kind = "subprocess_failed"
	KindCancelled      Kind = "cancelled"
	KindInternal       Kind = "internal"
	KindResolutionFail Kind = "resolution_failed"
)

// Error is the structured error carried through the core. It always
// classifies into a Kind and optionally names the repository/provider
// it concerns plus a debug payload (subprocess stderr tail, HTTP status).
type Error struct {
	Kind       Kind
	Message    string
	Provider   string
	Repository string
	Debug      string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Repository != "" && e.Provider != "":
		return fmt.Sprintf("[%s] %s/%s: %s", e.Kind, e.Provider, e.Repository, e.Message)
	case e.Provider != "":
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Provider, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrKind(KindAuth)) style comparisons work against a
// sentinel built from a bare Kind.
func (e *Error) Is(target error) bool {
	var sentinel *Error
	if errors.As(target, &sentinel) && sentinel.Repository == "" && sentinel.Provider == "" && sentinel.Message == "" {
		return e.Kind == sentinel.Kind
	}
	return false
}

// New builds a plain taxonomy error with no repository/provider context.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind and message to an underlying cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ErrKind returns a sentinel usable with errors.Is to test only the Kind.
func ErrKind(kind Kind) *Error {
	return &Error{Kind: kind}
}

// KindOf extracts the Kind from err, defaulting to KindInternal when err does
// not carry one of our taxonomy errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// WithRepository returns a copy of e annotated with a repository name.
func (e *Error) WithRepository(repo string) *Error {
	c := *e
	c.Repository = repo
	return &c
}

// WithProvider returns a copy of e annotated with a provider name.
func (e *Error) WithProvider(provider string) *Error {
	c := *e
	c.Provider = provider
	return &c
}

// WithDebug attaches a debug payload (e.g. subprocess stderr tail).
func (e *Error) WithDebug(debug string) *Error {
	c := *e
	c.Debug = debug
	return &c
}
