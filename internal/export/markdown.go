// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jeranaias/genchat/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports the transcript to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export writes the transcript as Markdown.
func (e *MarkdownExporter) Export(exchanges []model.Exchange, w io.Writer) error {
	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString("generator: genchat\n")
		sb.WriteString(fmt.Sprintf("exported: %s\n", e.options.now().UTC().Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("exchanges: %d\n", len(exchanges)))
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# genchat transcript\n\n")

	if len(exchanges) == 0 {
		sb.WriteString("_No messages yet._\n")
	}

	for i, ex := range exchanges {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("### " + e.heading(ex) + "\n\n")
		sb.WriteString(e.body(ex))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (e *MarkdownExporter) heading(ex model.Exchange) string {
	h := ex.Origin.DisplayName()
	if ex.Origin == model.OriginAssistant && ex.Mode != "" && ex.Mode != model.ModeChat {
		h += " (" + ex.Mode.Label() + ")"
	}
	if e.options.IncludeTimestamps && !ex.Timestamp.IsZero() {
		h += " · " + formatTimestamp(ex.Timestamp)
	}
	return h
}

func (e *MarkdownExporter) body(ex model.Exchange) string {
	var sb strings.Builder
	switch ex.Origin {
	case model.OriginError:
		sb.WriteString("> " + ex.Text + "\n")
	case model.OriginAssistant:
		// Assistant chat replies are already Markdown
		sb.WriteString(ex.Text + "\n")
	default:
		sb.WriteString(escapeMarkdown(ex.Text) + "\n")
	}

	if ex.HasMedia() {
		sb.WriteString("\n")
		switch ex.Mode {
		case model.ModeImage:
			sb.WriteString(fmt.Sprintf("![Generated image](%s)\n", ex.MediaURL))
		default:
			sb.WriteString(fmt.Sprintf("[Generated video](%s)\n", ex.MediaURL))
		}
	}
	return sb.String()
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes characters that would start Markdown structure
// at the beginning of a user's line.
func escapeMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		switch trimmed[0] {
		case '#', '>', '-', '*', '+', '|', '`':
			lines[i] = strings.Replace(line, trimmed[:1], `\`+trimmed[:1], 1)
		}
	}
	return strings.Join(lines, "\n")
}
