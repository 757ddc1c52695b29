// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/genchat/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the transcript as one indented JSON document.
type JSONExporter struct {
	options *Options
}

// Export writes the JSON document.
func (e *JSONExporter) Export(exchanges []model.Exchange, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(exchanges, e.options))
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}

// =============================================================================
// JSONL EXPORTER
// =============================================================================

// JSONLExporter writes one record per line.
type JSONLExporter struct{}

// Export writes each exchange as a JSON line.
func (e *JSONLExporter) Export(exchanges []model.Exchange, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, r := range Records(exchanges, true) {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// FileExtension returns the file extension for JSON lines.
func (e *JSONLExporter) FileExtension() string {
	return ".jsonl"
}

// MimeType returns the MIME type for JSON lines.
func (e *JSONLExporter) MimeType() string {
	return "application/x-ndjson"
}

// =============================================================================
// YAML EXPORTER
// =============================================================================

// YAMLExporter exports the transcript as a YAML document.
type YAMLExporter struct {
	options *Options
}

// Export writes the YAML document.
func (e *YAMLExporter) Export(exchanges []model.Exchange, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(newDocument(exchanges, e.options))
}

// FileExtension returns the file extension for YAML.
func (e *YAMLExporter) FileExtension() string {
	return ".yaml"
}

// MimeType returns the MIME type for YAML.
func (e *YAMLExporter) MimeType() string {
	return "application/yaml"
}
