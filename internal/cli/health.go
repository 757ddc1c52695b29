// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genchat/internal/genclient"
	"github.com/jeranaias/genchat/internal/ui/styles"
)

// healthTimeout bounds the health check regardless of endpoint.timeout.
const healthTimeout = 5 * time.Second

func newHealthCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the generation endpoint is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}

			client := genclient.NewClientWithConfig(&genclient.ClientConfig{BaseURL: cfg.Endpoint.URL})
			defer client.CloseIdleConnections()

			ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
			defer cancel()

			start := time.Now()
			if err := client.CheckHealth(ctx); err != nil {
				return fmt.Errorf("%s: %w", client.BaseURL(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.RenderSuccess(fmt.Sprintf("%s is up (%s)", client.BaseURL(), time.Since(start).Round(time.Millisecond))))
			return nil
		},
	}
}
