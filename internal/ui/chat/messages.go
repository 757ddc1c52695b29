// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/genchat/internal/config"
	"github.com/jeranaias/genchat/internal/genclient"
	"github.com/jeranaias/genchat/internal/session"
)

// GenerateResultMsg carries the endpoint's answer to a pending submission.
type GenerateResultMsg struct {
	Pending  *session.Pending
	Response *genclient.GenerateResponse
	Err      error
}

// HealthMsg reports the result of an endpoint health check.
type HealthMsg struct {
	Err error

	// gen is the health loop generation that issued the check
	gen int
}

// healthTickMsg schedules the next health check of generation gen.
type healthTickMsg struct {
	gen int
}

// ConfigReloadedMsg delivers a config reloaded from disk, or the error
// that prevented the reload.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// CopyResultMsg reports a clipboard copy.
type CopyResultMsg struct {
	What string
	Err  error
}
