// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ORIGIN TYPE
// =============================================================================

// Origin identifies who produced an exchange.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
	OriginError     Origin = "error"
)

// String returns the string representation of the origin.
func (o Origin) String() string {
	return string(o)
}

// Valid reports whether o is a known origin.
func (o Origin) Valid() bool {
	switch o {
	case OriginUser, OriginAssistant, OriginError:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable name for the origin.
func (o Origin) DisplayName() string {
	switch o {
	case OriginUser:
		return "You"
	case OriginAssistant:
		return "Assistant"
	case OriginError:
		return "Error"
	default:
		return string(o)
	}
}

// =============================================================================
// FIXED TEXTS
// =============================================================================

const (
	// ErrorText is the single user-visible text for every failed request.
	ErrorText = "Error: Could not get response."

	// ImageGeneratedText labels a successful image generation.
	ImageGeneratedText = "Image generated:"

	// VideoGeneratedText labels a successful video generation.
	VideoGeneratedText = "Video generated:"

	// UnknownModelText is used when a response arrives for an unrecognized mode.
	UnknownModelText = "Unknown model response"
)

// =============================================================================
// EXCHANGE TYPE
// =============================================================================

// Exchange is one entry in the transcript.
type Exchange struct {
	ID        string    `json:"id,omitempty"`
	Origin    Origin    `json:"origin"`
	Text      string    `json:"text"`
	Mode      Mode      `json:"mode,omitempty"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

func newExchange(origin Origin, text string) Exchange {
	return Exchange{
		ID:        uuid.NewString(),
		Origin:    origin,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserExchange creates an exchange for user input.
func NewUserExchange(text string) Exchange {
	return newExchange(OriginUser, text)
}

// NewAssistantExchange creates an assistant exchange for mode.
// mediaURL is kept only for media modes.
func NewAssistantExchange(mode Mode, text, mediaURL string) Exchange {
	ex := newExchange(OriginAssistant, text)
	ex.Mode = mode
	if mode.HasMedia() {
		ex.MediaURL = mediaURL
	}
	return ex
}

// NewErrorExchange creates an error exchange.
func NewErrorExchange(text string) Exchange {
	return newExchange(OriginError, text)
}

// HasMedia reports whether the exchange should render a media element.
func (e Exchange) HasMedia() bool {
	return e.Mode.HasMedia() && e.MediaURL != ""
}

// Preview returns a truncated single-line preview of the exchange text.
func (e Exchange) Preview(maxLen int) string {
	runes := []rune(e.Text)
	if len(runes) <= maxLen {
		return e.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// ErrMediaWithoutMediaMode is returned by Validate when a media URL is
// attached to a non-media exchange.
var ErrMediaWithoutMediaMode = errors.New("mediaUrl set on exchange without image or video mode")

// Validate checks the exchange invariants.
func (e Exchange) Validate() error {
	if !e.Origin.Valid() {
		return fmt.Errorf("invalid origin %q", e.Origin)
	}
	if e.MediaURL != "" && !e.Mode.HasMedia() {
		return ErrMediaWithoutMediaMode
	}
	return nil
}
