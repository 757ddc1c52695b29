// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// MODE TYPE
// =============================================================================

// Mode selects which generation behavior a submission requests.
//
// Mode is a string because it is persisted and sent over the wire as-is;
// values outside the three known modes can therefore appear and must be
// handled by callers.
type Mode string

const (
	ModeChat  Mode = "chat"
	ModeImage Mode = "image"
	ModeVideo Mode = "video"
)

// DefaultMode is the mode selected when nothing else is configured.
const DefaultMode = ModeChat

// Modes returns the known modes in selector order.
func Modes() []Mode {
	return []Mode{ModeChat, ModeImage, ModeVideo}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q (valid: chat, image, video)", s)
	}
	return m, nil
}

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeChat, ModeImage, ModeVideo:
		return true
	default:
		return false
	}
}

// HasMedia reports whether a successful response in this mode carries a media URL.
func (m Mode) HasMedia() bool {
	return m == ModeImage || m == ModeVideo
}

// Label returns the selector label for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeChat:
		return "Chat"
	case ModeImage:
		return "Image"
	case ModeVideo:
		return "Video"
	default:
		return string(m)
	}
}

// Placeholder returns the input placeholder text for the mode.
func (m Mode) Placeholder() string {
	switch m {
	case ModeChat:
		return "Type your message..."
	case ModeImage:
		return "Describe the image you want..."
	default:
		return "Describe the video you want..."
	}
}

// Next returns the mode after m in selector order, wrapping around.
func (m Mode) Next() Mode {
	modes := Modes()
	for i, candidate := range modes {
		if candidate == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return DefaultMode
}

// Prev returns the mode before m in selector order, wrapping around.
func (m Mode) Prev() Mode {
	modes := Modes()
	for i, candidate := range modes {
		if candidate == m {
			return modes[(i+len(modes)-1)%len(modes)]
		}
	}
	return DefaultMode
}
