// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for genchat.
//
// The view shows three mode selectors, the scrolling transcript, a single
// input line, and a status bar. All session changes happen inside Update;
// the network call runs in a tea.Cmd and comes back as a GenerateResultMsg.
//
// # Keys
//
//   - Enter: submit
//   - Tab / Shift+Tab: next / previous mode
//   - F1 / F2 / F3: chat / image / video
//   - Ctrl+Y: copy latest media URL (or latest reply)
//   - PgUp / PgDn, mouse wheel: scroll
//   - Ctrl+G: toggle full help
//   - Ctrl+C / Esc: quit
package chat
