// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genchat/internal/genclient"
	"github.com/jeranaias/genchat/internal/model"
)

// errGenerationFailed is returned by ask when the endpoint call failed.
var errGenerationFailed = errors.New("generation failed")

func newAskCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [--mode chat|image|video] <text...>",
		Short: "Submit one prompt and print the reply",
		Long: `Submits one prompt and prints the resulting exchange. The prompt and
reply are appended to the stored transcript like any other submission.
The global --mode flag selects the mode.

Examples:
  genchat ask "What is a haiku?"
  genchat ask --mode image "a lighthouse at dusk"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			p := newPrinter(cmd.OutOrStdout(), a.cfg.UI.Markdown)
			// Restore first so the stored history is appended to, not replaced
			if err := a.ctrl.Restore(ctx); err != nil {
				p.info("Could not restore previous chat (%v); starting fresh", err)
			}

			pending, ok := a.ctrl.Begin(ctx, strings.Join(args, " "))
			if !ok {
				return errors.New("nothing to send")
			}
			resp, genErr := a.client.Generate(ctx, pending.Request())
			ex, _ := a.ctrl.Resolve(ctx, pending, resp, genErr)
			p.exchange(ex)

			if err := a.ctrl.LastPersistError(); err != nil {
				return err
			}
			if ex.Origin == model.OriginError {
				return fmt.Errorf("%w: %s", errGenerationFailed, genclient.Hint(genErr, a.client.BaseURL()))
			}
			return nil
		},
	}
}
