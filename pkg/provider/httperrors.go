// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package provider

import (
	"fmt"
	"net/http"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
)

// ClassifyHTTPStatus maps an HTTP response status to a taxonomy Kind, in the
// style of gzh-cli's pkg/git/provider.ProviderError.Is, which performs the
// same status-to-category mapping for retryability checks.
func ClassifyHTTPStatus(status int) fleeterrors.Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fleeterrors.KindAuth
	case http.StatusNotFound:
		return fleeterrors.KindNotFound
	case http.StatusTooManyRequests:
		return fleeterrors.KindRateLimited
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fleeterrors.KindValidation
	case 0:
		return fleeterrors.KindNetwork
	default:
		if status >= 500 {
			return fleeterrors.KindNetwork
		}
		return fleeterrors.KindInternal
	}
}

// WrapHTTPError builds a taxonomy error for a failed provider HTTP call.
func WrapHTTPError(providerName, operation string, status int, cause error) *fleeterrors.Error {
	kind := ClassifyHTTPStatus(status)
	msg := fmt.Sprintf("%s failed with status %d", operation, status)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return fleeterrors.Wrap(kind, cause, msg).WithProvider(providerName)
}
