// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/genchat/internal/config"
	"github.com/jeranaias/genchat/internal/model"
)

func newREPLCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start a line-mode chat with input history",
		Long: `Starts a line-mode chat. Each line is submitted in the current mode.

Commands:
  /mode [chat|image|video]   Show or switch the mode
  /history [n]               Show the last n exchanges (default 10)
  /help                      Show this help
  /quit                      Exit (Ctrl+D also exits)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader wraps liner with a persisted history file.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &lineReader{line: line, historyFile: filepath.Join(dir, "repl_history")}

	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *lineReader) prompt(p string) (string, error) {
	input, err := r.line.Prompt(p)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history (0600) and restores the terminal.
func (r *lineReader) Close() {
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// repl runs submissions and slash commands against one app.
type repl struct {
	app *app
	out io.Writer
	p   *printer
}

func runREPL(ctx context.Context, opts *globalOptions, out io.Writer) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	r := &repl{app: a, out: out, p: newPrinter(out, a.cfg.UI.Markdown)}
	if err := a.ctrl.Restore(ctx); err != nil {
		r.p.info("Could not restore previous chat (%v); starting fresh", err)
	} else if n := a.ctrl.Len(); n > 0 {
		r.p.info("Restored %d messages. Type /history to see them.", n)
	}
	r.p.info("Mode: %s. Type /help for commands.", a.ctrl.Mode().Label())

	reader := newLineReader()
	defer reader.Close()

	for {
		input, err := reader.prompt(strings.ToLower(a.ctrl.Mode().Label()) + "> ")
		if err != nil {
			// Ctrl+C, Ctrl+D and a closed stdin all end the session
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if !r.handleLine(ctx, input) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// handleLine processes one input line. It returns false when the
// session should end.
func (r *repl) handleLine(ctx context.Context, input string) bool {
	// Trimming only classifies the line; the prompt is submitted as typed
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, "/") {
		return r.handleCommand(trimmed)
	}

	ex, ok := r.app.ctrl.Submit(ctx, input)
	if !ok {
		return true
	}
	r.p.exchange(ex)
	if err := r.app.ctrl.LastPersistError(); err != nil {
		r.p.info("Warning: chat not saved: %v", err)
	}
	return true
}

func (r *repl) handleCommand(input string) bool {
	fields := strings.Fields(input)
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "/quit", "/q", "/exit":
		return false

	case "/help", "/h", "/?":
		r.p.info("/mode [chat|image|video]  show or switch the mode")
		r.p.info("/history [n]              show the last n exchanges")
		r.p.info("/quit                     exit")

	case "/mode", "/m":
		if len(args) == 0 {
			r.p.info("Mode: %s", r.app.ctrl.Mode().Label())
			return true
		}
		mode, err := model.ParseMode(args[0])
		if err != nil {
			r.p.info("%v", err)
			return true
		}
		r.app.ctrl.SelectMode(mode)
		r.p.info("Mode: %s", mode.Label())

	case "/history":
		limit := 10
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				r.p.info("usage: /history [n]")
				return true
			}
			limit = n
		}
		transcript := lastN(r.app.ctrl.Transcript(), limit)
		if len(transcript) == 0 {
			r.p.info("No messages yet.")
		}
		for _, ex := range transcript {
			r.p.exchange(ex)
		}

	default:
		r.p.info("Unknown command %s. Type /help for commands.", name)
	}
	return true
}

// lastN returns the last n exchanges; n <= 0 means all.
func lastN(exchanges []model.Exchange, n int) []model.Exchange {
	if n <= 0 || n >= len(exchanges) {
		return exchanges
	}
	return exchanges[len(exchanges)-n:]
}
