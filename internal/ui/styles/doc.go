// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the genchat TUI.
//
// All colors use Lip Gloss AdaptiveColor so the same palette works on light
// and dark terminals. Theme bundles the styles used by the chat view.
//
// # Usage
//
//	theme := styles.NewTheme("auto")
//	theme.SetSize(width, height)
//	fmt.Println(theme.UserBubble.Render("Hello"))
package styles
