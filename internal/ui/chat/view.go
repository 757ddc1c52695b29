// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/genchat/internal/model"
	"github.com/jeranaias/genchat/internal/ui/styles"
	"github.com/jeranaias/genchat/internal/util"
)

// View renders the chat view.
func (m Model) View() string {
	if !m.ready {
		return "Starting genchat..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("genchat")

	var health string
	switch m.health {
	case healthOK:
		health = m.theme.StatusOK.Render(styles.StatusIndicators.Success + " " + m.endpoint())
	case healthDown:
		health = m.theme.StatusError.Render(styles.StatusIndicators.Error + " " + m.endpoint() + " unreachable")
	default:
		health = m.theme.Muted.Render(m.endpoint())
	}

	return m.theme.Header.Width(m.width).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", m.renderModeTabs(), "  ", health),
	)
}

func (m Model) endpoint() string {
	if m.client == nil {
		return "no endpoint"
	}
	return util.TruncateWidth(m.client.BaseURL(), 40)
}

// renderModeTabs shows the mode selector. Tabs are dimmed while busy
// because the selection cannot change then.
func (m Model) renderModeTabs() string {
	busy := m.ctrl.Busy()
	current := m.ctrl.Mode()

	tabs := make([]string, 0, len(model.Modes()))
	for _, mode := range model.Modes() {
		style := m.theme.ModeTab
		switch {
		case mode == current:
			style = m.theme.ModeTabActive
		case busy:
			style = m.theme.ModeTabDisabled
		}
		tabs = append(tabs, style.Render(mode.Label()))
	}
	return strings.Join(tabs, " ")
}

// =============================================================================
// INPUT
// =============================================================================

func (m Model) renderInput() string {
	if m.ctrl.Busy() {
		line := m.spinner.View() + " " + m.ctrl.Mode().Label() + " request in progress..."
		return m.theme.InputDisabled.Width(max(m.width-2, 10)).Render(line)
	}
	return m.theme.InputContainer.Width(max(m.width-2, 10)).Render(m.input.View())
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.status != "" && m.statusError:
		left = m.theme.StatusError.Render(m.status)
	case m.status != "":
		left = m.theme.StatusOK.Render(m.status)
	case m.ctrl.Busy():
		left = m.theme.StatusBusy.Render("Waiting for " + m.ctrl.Mode().Label() + " response")
	default:
		left = m.theme.Muted.Render(pluralize(m.ctrl.Len(), "message"))
	}

	m.help.Width = m.width
	helpView := m.help.View(m.keys)

	return m.theme.StatusBar.Width(m.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, left, helpView),
	)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
