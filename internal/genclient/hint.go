// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package genclient

import (
	"context"
	"errors"
	"strings"
)

// Hint turns a client error into a one-line suggestion for the status
// bar or stderr. The transcript never shows it; it only records the
// generic error text.
func Hint(err error, baseURL string) string {
	if err == nil {
		return ""
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return "Request failed: " + err.Error()
	}

	switch clientErr.Type {
	case ErrTypeConnection:
		if errors.Is(clientErr, context.Canceled) {
			return "Request canceled"
		}
		return "Cannot reach " + baseURL + ". Is the generation backend running?"
	case ErrTypeTimeout:
		return "Request timed out. Raise endpoint.timeout if generation takes longer."
	case ErrTypeStatus:
		return "Endpoint rejected the request (" + strings.TrimPrefix(clientErr.Message, "generation request failed: ") + ")"
	case ErrTypeInvalidResponse:
		return "Endpoint sent a response genchat could not read"
	default:
		return "Request failed: " + clientErr.Error()
	}
}
