// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the genchat transcript to shareable formats.
//
// Supported formats:
//   - md: Markdown with media links, readable on any forge
//   - html: standalone page that embeds images and videos
//   - json: one document with metadata and all exchanges
//   - jsonl: one exchange per line, for piping into other tools
//   - yaml: same document as json, in YAML
//
// # Usage
//
//	exporter, err := export.NewExporter("md", export.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	err = exporter.Export(transcript, os.Stdout)
package export
