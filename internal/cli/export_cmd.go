// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genchat/internal/export"
	"github.com/jeranaias/genchat/internal/ui/styles"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	var (
		format     string
		output     string
		timestamps bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the transcript",
		Long: fmt.Sprintf(`Exports the stored transcript. Without --output the export is
written to stdout. When --output is a directory, a timestamped file name
is generated inside it.

Formats: %s

Examples:
  genchat export --format json
  genchat export --format html --output ~/Downloads`, strings.Join(export.Formats(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exportOpts := export.DefaultOptions()
			exportOpts.IncludeTimestamps = timestamps

			exporter, err := export.NewExporter(format, exportOpts)
			if err != nil {
				return err
			}

			transcript, err := loadTranscript(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				var buf bytes.Buffer
				if err := exporter.Export(transcript, &buf); err != nil {
					return err
				}
				return writeHighlighted(cmd.OutOrStdout(), buf.Bytes(), strings.ToLower(format))
			}

			path, err := export.ToFile(transcript, exporter, output, exportOpts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.RenderSuccess(fmt.Sprintf("Exported %d exchanges to %s", len(transcript), path)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "export format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default stdout)")
	cmd.Flags().BoolVar(&timestamps, "timestamps", true, "include per-exchange timestamps")
	return cmd
}
