// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/genchat/internal/model"
	"github.com/jeranaias/genchat/internal/ui/styles"
)

// newRenderer builds a glamour renderer sized to the theme's bubbles.
// It returns nil when glamour cannot be initialized; callers fall back
// to plain text.
func newRenderer(theme *styles.Theme) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.MarkdownStyle()),
		glamour.WithWordWrap(max(theme.BubbleWidth()-4, 10)),
	)
	if err != nil {
		return nil
	}
	return r
}

func lipglossHeight(s string) int {
	if s == "" {
		return 0
	}
	return lipgloss.Height(s)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders every exchange, oldest first.
func (m Model) renderTranscript() string {
	transcript := m.ctrl.Transcript()
	if len(transcript) == 0 {
		return m.theme.Muted.Render("No messages yet. Pick a mode and type a prompt.")
	}

	blocks := make([]string, 0, len(transcript))
	for _, ex := range transcript {
		blocks = append(blocks, m.renderExchange(ex))
	}
	return strings.Join(blocks, "\n\n")
}

// renderExchange renders one bubble. User bubbles are right-aligned.
func (m Model) renderExchange(ex model.Exchange) string {
	width := m.theme.BubbleWidth()
	// Entries restored from the browser client carry no timestamp
	var stamp string
	if !ex.Timestamp.IsZero() {
		stamp = " " + m.theme.Timestamp.Render(ex.Timestamp.Local().Format("15:04"))
	}

	var label, body string
	var bubble lipgloss.Style
	switch ex.Origin {
	case model.OriginUser:
		label = m.theme.UserLabel.Render(ex.Origin.DisplayName())
		bubble = m.theme.UserBubble
		body = ex.Text
	case model.OriginError:
		label = m.theme.ErrorLabel.Render(ex.Origin.DisplayName())
		bubble = m.theme.ErrorBubble
		body = ex.Text
	default:
		name := ex.Origin.DisplayName()
		if ex.Mode != "" && ex.Mode != model.ModeChat {
			name += " (" + ex.Mode.Label() + ")"
		}
		label = m.theme.AssistantLabel.Render(name)
		bubble = m.theme.AssistantBubble
		body = m.renderAssistantBody(ex)
	}

	block := lipgloss.JoinVertical(lipgloss.Left,
		label+stamp,
		bubble.Width(width).Render(body),
	)
	if ex.Origin == model.OriginUser && m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
	}
	return block
}

func (m Model) renderAssistantBody(ex model.Exchange) string {
	text := ex.Text
	if ex.Mode == model.ModeChat && m.markdown && m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			text = strings.TrimSpace(out)
		}
	}
	if ex.HasMedia() {
		text += "\n" + m.renderMediaLink(ex.MediaURL)
	}
	return text
}

// renderMediaLink renders url as an OSC 8 hyperlink where the terminal
// supports it, and as the bare url otherwise.
func (m Model) renderMediaLink(url string) string {
	link := url
	if m.theme.ColorProfile != termenv.Ascii {
		link = termenv.Hyperlink(url, url)
	}
	return m.theme.MediaLink.Render(link)
}
