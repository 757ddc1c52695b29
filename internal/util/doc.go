// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across genchat.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file replacement (temp file, fsync, rename)
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: display-width aware truncation for status lines
//   - SingleLine: collapse newlines for one-line previews
//
// # Usage
//
//	// Replace a transcript file without ever leaving it half-written
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Fit a preview into a status bar cell
//	cell := util.TruncateWidth(util.SingleLine(text), 40)
package util
