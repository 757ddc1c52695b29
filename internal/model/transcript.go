// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MarshalTranscript serializes the full transcript as a JSON array.
// A nil transcript is written as an empty array.
func MarshalTranscript(exchanges []Exchange) ([]byte, error) {
	if exchanges == nil {
		exchanges = []Exchange{}
	}
	data, err := json.Marshal(exchanges)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}
	return data, nil
}

// UnmarshalTranscript parses a transcript written by MarshalTranscript.
// A JSON null or empty input yields an empty transcript.
func UnmarshalTranscript(data []byte) ([]Exchange, error) {
	exchanges := []Exchange{}
	if len(data) == 0 {
		return exchanges, nil
	}
	if err := json.Unmarshal(data, &exchanges); err != nil {
		return nil, fmt.Errorf("unmarshal transcript: %w", err)
	}
	if exchanges == nil {
		exchanges = []Exchange{}
	}
	for i, ex := range exchanges {
		if err := ex.Validate(); err != nil {
			return nil, fmt.Errorf("unmarshal transcript: entry %d: %w", i, err)
		}
	}
	return exchanges, nil
}

// LastMedia returns the most recent exchange that carries media.
func LastMedia(exchanges []Exchange) (Exchange, bool) {
	for i := len(exchanges) - 1; i >= 0; i-- {
		if exchanges[i].HasMedia() {
			return exchanges[i], true
		}
	}
	return Exchange{}, false
}

// LastAssistant returns the most recent assistant exchange.
func LastAssistant(exchanges []Exchange) (Exchange, bool) {
	for i := len(exchanges) - 1; i >= 0; i-- {
		if exchanges[i].Origin == OriginAssistant {
			return exchanges[i], true
		}
	}
	return Exchange{}, false
}

// =============================================================================
// BROWSER CLIENT COMPATIBILITY
// =============================================================================

// exchangeJSON mirrors Exchange and additionally accepts the field names
// used by the browser client's chatLog entries ("type" and "model").
type exchangeJSON struct {
	ID        string    `json:"id"`
	Origin    Origin    `json:"origin"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Mode      Mode      `json:"mode"`
	Model     Mode      `json:"model"`
	MediaURL  string    `json:"mediaUrl"`
	Timestamp time.Time `json:"timestamp"`
}

// UnmarshalJSON decodes an exchange in either the genchat or the browser
// client shape. Browser "bot" entries become assistant exchanges.
func (e *Exchange) UnmarshalJSON(data []byte) error {
	var raw exchangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	origin := raw.Origin
	if origin == "" {
		switch raw.Type {
		case "bot":
			origin = OriginAssistant
		default:
			origin = Origin(raw.Type)
		}
	}

	mode := raw.Mode
	if mode == "" {
		mode = raw.Model
	}

	*e = Exchange{
		ID:        raw.ID,
		Origin:    origin,
		Text:      raw.Text,
		Mode:      mode,
		MediaURL:  raw.MediaURL,
		Timestamp: raw.Timestamp,
	}
	return nil
}
