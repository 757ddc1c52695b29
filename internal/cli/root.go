// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genchat/internal/storage"
	"github.com/jeranaias/genchat/internal/ui/styles"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand builds the genchat command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "genchat",
		Short: "Terminal client for a chat, image and video generation endpoint",
		Long: `genchat sends prompts to a generation endpoint in one of three modes
(chat, image, video) and keeps the conversation transcript between runs.

Run without arguments to start the interactive interface. When stdout is
not a terminal, a line-mode REPL is started instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if isTerminal(cmd.OutOrStdout()) {
				return runTUI(cmd.Context(), opts)
			}
			return runREPL(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.genchat/config.toml)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "generation endpoint base URL")
	flags.StringVarP(&opts.mode, "mode", "m", "", "initial mode: chat, image or video")
	flags.StringVar(&opts.storage, "storage", "", fmt.Sprintf("storage backend: %v", storage.Backends()))
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newREPLCommand(opts),
		newAskCommand(opts),
		newHistoryCommand(opts),
		newExportCommand(opts),
		newHealthCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
// Errors are reported once, here.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError("Error: "+err.Error()))
		return 1
	}
	return 0
}
