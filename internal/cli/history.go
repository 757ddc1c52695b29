// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/genchat/internal/export"
	"github.com/jeranaias/genchat/internal/model"
)

// loadTranscript opens the app and returns the stored transcript. A
// transcript that cannot be read is an error here, unlike in the
// interactive commands, which start fresh.
func loadTranscript(ctx context.Context, opts *globalOptions) ([]model.Exchange, error) {
	a, err := newApp(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	if err := a.ctrl.Restore(ctx); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return a.ctrl.Transcript(), nil
}

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var (
		limit int
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the stored transcript",
		Long: `Prints the stored transcript as Markdown, rendered for the terminal
when stdout is one.

Examples:
  genchat history
  genchat history --limit 6
  genchat history --raw > chat.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript, err := loadTranscript(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), lastN(transcript, limit), raw)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n exchanges (0 = all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without rendering")
	return cmd
}

func printHistory(out io.Writer, transcript []model.Exchange, raw bool) error {
	var buf bytes.Buffer
	exporter := export.NewMarkdownExporter(&export.Options{IncludeTimestamps: true})
	if err := exporter.Export(transcript, &buf); err != nil {
		return err
	}

	if raw || !isTerminal(out) {
		_, err := out.Write(buf.Bytes())
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth(out)-4),
	)
	if err != nil {
		return err
	}
	rendered, err := r.RenderBytes(buf.Bytes())
	if err != nil {
		return err
	}
	_, err = out.Write(rendered)
	return err
}
