// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/genchat/internal/model"
	"github.com/jeranaias/genchat/internal/ui/styles"
)

// printer writes exchanges for the line-mode commands. Colors follow
// the capabilities of the writer, so redirected output stays plain.
type printer struct {
	out      io.Writer
	markdown *glamour.TermRenderer

	user      lipgloss.Style
	assistant lipgloss.Style
	errStyle  lipgloss.Style
	link      lipgloss.Style
	muted     lipgloss.Style
}

func newPrinter(out io.Writer, markdown bool) *printer {
	r := lipgloss.NewRenderer(out)
	p := &printer{
		out:       out,
		user:      r.NewStyle().Foreground(styles.Cyan).Bold(true),
		assistant: r.NewStyle().Foreground(styles.Purple).Bold(true),
		errStyle:  r.NewStyle().Foreground(styles.Rose).Bold(true),
		link:      r.NewStyle().Foreground(styles.LinkColor).Underline(true),
		muted:     r.NewStyle().Foreground(styles.TextMuted),
	}

	// Markdown is only rendered for terminals
	if markdown && isTerminal(out) {
		if tr, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(terminalWidth(out)-4),
		); err == nil {
			p.markdown = tr
		}
	}
	return p
}

// exchange prints one transcript entry.
func (p *printer) exchange(ex model.Exchange) {
	switch ex.Origin {
	case model.OriginUser:
		fmt.Fprintf(p.out, "%s %s\n", p.user.Render("You:"), ex.Text)
	case model.OriginError:
		fmt.Fprintln(p.out, p.errStyle.Render(ex.Text))
	default:
		label := "Assistant:"
		if ex.Mode != "" && ex.Mode != model.ModeChat {
			label = fmt.Sprintf("Assistant (%s):", ex.Mode.Label())
		}
		fmt.Fprintf(p.out, "%s %s\n", p.assistant.Render(label), p.body(ex))
		if ex.HasMedia() {
			fmt.Fprintf(p.out, "  %s\n", p.link.Render(ex.MediaURL))
		}
	}
}

func (p *printer) body(ex model.Exchange) string {
	if ex.Mode != model.ModeChat || p.markdown == nil {
		return ex.Text
	}
	out, err := p.markdown.Render(ex.Text)
	if err != nil {
		return ex.Text
	}
	return "\n" + strings.TrimRight(out, "\n")
}

func (p *printer) info(format string, args ...any) {
	fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf(format, args...)))
}
