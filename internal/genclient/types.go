// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package genclient

// =============================================================================
// REQUEST TYPES
// =============================================================================

// GenerateRequest is the request body for the /chat endpoint.
type GenerateRequest struct {
	UserMessage string `json:"user_message"`
	Model       string `json:"model"` // "chat", "image", or "video"
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateResponse is the response from the /chat endpoint.
// Only the field matching the requested mode is populated; missing
// fields decode to the empty string.
type GenerateResponse struct {
	BotResponse string `json:"bot_response,omitempty"`
	MediaURL    string `json:"media_url,omitempty"`
}

// HealthResponse is the response from the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the error body some backends send with non-2xx statuses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
