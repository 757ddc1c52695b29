// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/genchat/internal/model"
	"github.com/jeranaias/genchat/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export writes the transcript in the target format to w.
	Export(exchanges []model.Exchange, w io.Writer) error

	// FileExtension returns the file extension including the dot (e.g. ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"md", "html", "json", "jsonl", "yaml"}
}

// NewExporter creates an exporter for format.
func NewExporter(format string, opts *Options) (Exporter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md", "markdown":
		return &MarkdownExporter{options: opts}, nil
	case "html":
		return &HTMLExporter{options: opts}, nil
	case "json":
		return &JSONExporter{options: opts}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats(), ", "))
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds a header with export time and counts.
	IncludeMetadata bool

	// IncludeTimestamps adds per-exchange timestamps where the format allows.
	IncludeTimestamps bool

	// Now stamps the export. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

func (o *Options) now() time.Time {
	if o == nil || o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// =============================================================================
// DOCUMENT MODEL
// =============================================================================

// Record is the flat, format-neutral view of one exchange.
type Record struct {
	Index     int    `json:"index" yaml:"index"`
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Origin    string `json:"origin" yaml:"origin"`
	Mode      string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Text      string `json:"text" yaml:"text"`
	MediaURL  string `json:"mediaUrl,omitempty" yaml:"media_url,omitempty"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Document is the full export used by the structured formats.
type Document struct {
	Generator string   `json:"generator" yaml:"generator"`
	Exported  string   `json:"exported" yaml:"exported"`
	Count     int      `json:"count" yaml:"count"`
	Exchanges []Record `json:"exchanges" yaml:"exchanges"`
}

// Records converts exchanges to records.
func Records(exchanges []model.Exchange, includeTimestamps bool) []Record {
	records := make([]Record, 0, len(exchanges))
	for i, ex := range exchanges {
		r := Record{
			Index:    i + 1,
			ID:       ex.ID,
			Origin:   ex.Origin.String(),
			Mode:     ex.Mode.String(),
			Text:     ex.Text,
			MediaURL: ex.MediaURL,
		}
		if includeTimestamps && !ex.Timestamp.IsZero() {
			r.Timestamp = ex.Timestamp.Format(time.RFC3339)
		}
		records = append(records, r)
	}
	return records
}

func newDocument(exchanges []model.Exchange, opts *Options) Document {
	return Document{
		Generator: "genchat",
		Exported:  opts.now().UTC().Format(time.RFC3339),
		Count:     len(exchanges),
		Exchanges: Records(exchanges, opts.IncludeTimestamps),
	}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// ToFile exports to path atomically. When path is a directory, a
// timestamped file name is generated inside it. Returns the written path.
func ToFile(exchanges []model.Exchange, exporter Exporter, path string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	var buf bytes.Buffer
	if err := exporter.Export(exchanges, &buf); err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		name := fmt.Sprintf("genchat_%s%s", opts.now().Format("20060102_150405"), exporter.FileExtension())
		path = filepath.Join(path, name)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
