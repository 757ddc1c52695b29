// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/jeranaias/genchat/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports the transcript as a standalone HTML page with
// generated images and videos embedded.
type HTMLExporter struct {
	options *Options
}

// Export writes the HTML page.
func (e *HTMLExporter) Export(exchanges []model.Exchange, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("    <title>genchat transcript</title>\n")
	sb.WriteString("    <meta name=\"generator\" content=\"genchat\">\n")
	sb.WriteString(htmlCSS)
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("    <div class=\"chat\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("        <header>Exported %s &middot; %d exchanges</header>\n",
			e.options.now().UTC().Format(time.RFC3339), len(exchanges)))
	}

	for _, ex := range exchanges {
		sb.WriteString(e.renderExchange(ex))
	}

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func (e *HTMLExporter) renderExchange(ex model.Exchange) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("        <div class=\"message %s\">\n", html.EscapeString(ex.Origin.String())))
	sb.WriteString(fmt.Sprintf("            <p>%s</p>\n", strings.ReplaceAll(html.EscapeString(ex.Text), "\n", "<br>")))

	if ex.HasMedia() {
		src := html.EscapeString(ex.MediaURL)
		switch ex.Mode {
		case model.ModeImage:
			sb.WriteString(fmt.Sprintf("            <img src=\"%s\" alt=\"Generated\">\n", src))
		case model.ModeVideo:
			sb.WriteString(fmt.Sprintf("            <video controls autoplay muted loop src=\"%s\"></video>\n", src))
		}
	}

	if e.options.IncludeTimestamps && !ex.Timestamp.IsZero() {
		sb.WriteString(fmt.Sprintf("            <time datetime=\"%s\">%s</time>\n",
			ex.Timestamp.UTC().Format(time.RFC3339), formatTimestamp(ex.Timestamp)))
	}
	sb.WriteString("        </div>\n")
	return sb.String()
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

const htmlCSS = `    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: #f4f4f8; margin: 0; }
        .chat { max-width: 720px; margin: 2rem auto; display: flex; flex-direction: column; gap: 0.75rem; }
        header { color: #666; font-size: 0.85rem; text-align: center; }
        .message { padding: 0.75rem 1rem; border-radius: 12px; max-width: 80%; }
        .message.user { align-self: flex-end; background: #4f46e5; color: #fff; }
        .message.assistant { align-self: flex-start; background: #fff; color: #222; }
        .message.error { align-self: flex-start; background: #fee2e2; color: #991b1b; }
        .message img, .message video { max-width: 100%; border-radius: 8px; margin-top: 0.5rem; }
        .message time { display: block; font-size: 0.7rem; opacity: 0.7; margin-top: 0.25rem; }
    </style>
`
