// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/genchat/internal/genclient"
	"github.com/jeranaias/genchat/internal/model"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case GenerateResultMsg:
		return m.handleGenerateResult(msg)

	case HealthMsg:
		m.healthErr = msg.Err
		if msg.Err != nil {
			m.health = healthDown
			m.logger.Debug().Err(msg.Err).Msg("health check failed")
		} else {
			m.health = healthOK
		}
		if msg.gen != m.healthGen {
			return m, nil
		}
		return m, healthTickCmd(m.healthGen)

	case healthTickMsg:
		if msg.gen != m.healthGen {
			return m, nil
		}
		return m, m.checkHealthCmd()

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case CopyResultMsg:
		if msg.Err != nil {
			m.setStatus("Clipboard unavailable: "+msg.Err.Error(), true)
		} else {
			m.setStatus("Copied "+msg.What, false)
		}
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NextMode):
		return m.selectMode(m.ctrl.Mode().Next())

	case key.Matches(msg, m.keys.PrevMode):
		return m.selectMode(m.ctrl.Mode().Prev())

	case key.Matches(msg, m.keys.ModeChat):
		return m.selectMode(model.ModeChat)

	case key.Matches(msg, m.keys.ModeImage):
		return m.selectMode(model.ModeImage)

	case key.Matches(msg, m.keys.ModeVideo):
		return m.selectMode(model.ModeVideo)

	case key.Matches(msg, m.keys.Copy):
		return m.copyLatest()

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	// The input is disabled while a request is in flight
	if m.ctrl.Busy() {
		return m, nil
	}

	m.status = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetInput(m.input.Value())
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	pending, ok := m.ctrl.Begin(m.ctx, text)
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.status = ""
	m.syncTranscript()

	return m, tea.Batch(m.generateCmd(pending), m.spinner.Tick)
}

func (m Model) selectMode(mode model.Mode) (tea.Model, tea.Cmd) {
	if !m.ctrl.SelectMode(mode) {
		return m, nil
	}
	m.input.Placeholder = mode.Placeholder()
	return m, nil
}

func (m Model) copyLatest() (tea.Model, tea.Cmd) {
	transcript := m.ctrl.Transcript()
	if ex, ok := model.LastMedia(transcript); ok {
		return m, m.copyCmd(ex.Mode.Label()+" link", ex.MediaURL)
	}
	if ex, ok := model.LastAssistant(transcript); ok && ex.Text != "" {
		return m, m.copyCmd("reply", ex.Text)
	}
	m.setStatus("Nothing to copy yet", false)
	return m, nil
}

// =============================================================================
// RESULT HANDLING
// =============================================================================

func (m Model) handleGenerateResult(msg GenerateResultMsg) (tea.Model, tea.Cmd) {
	if _, ok := m.ctrl.Resolve(m.ctx, msg.Pending, msg.Response, msg.Err); !ok {
		return m, nil
	}

	switch {
	case m.ctrl.LastPersistError() != nil:
		m.setStatus("Could not save chat: "+m.ctrl.LastPersistError().Error(), true)
	case msg.Err != nil:
		m.setStatus(genclient.Hint(msg.Err, m.endpoint()), true)
	}

	m.input.Placeholder = m.ctrl.Mode().Placeholder()
	m.input.Focus()
	m.syncTranscript()
	return m, textinput.Blink
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setStatus("Config not reloaded: "+msg.Err.Error(), true)
		return m, nil
	}
	if m.client != nil {
		m.client.SetConfig(&genclient.ClientConfig{
			BaseURL: msg.Config.Endpoint.URL,
			Timeout: msg.Config.Endpoint.Timeout.Duration,
		})
	}
	m.markdown = msg.Config.UI.Markdown
	m.healthGen++
	m.syncTranscript()
	m.setStatus("Config reloaded", false)
	m.logger.Info().Str("endpoint", msg.Config.Endpoint.URL).Msg("config reloaded")
	return m, m.checkHealthCmd()
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.input.Width = max(msg.Width-6, 10)
	m.renderer = newRenderer(m.theme)
	m.ready = true
	m.layout()
	m.scroll.toBottom = true
	m.syncTranscript()
	return m, nil
}

// layout sizes the viewport to the space left by the fixed rows.
func (m *Model) layout() {
	fixed := lipglossHeight(m.renderHeader()) + lipglossHeight(m.renderInput()) + lipglossHeight(m.renderStatusBar())
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-fixed, 3)
}

// syncTranscript re-renders the transcript into the viewport and follows
// the newest entry when the observer asked for it.
func (m *Model) syncTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	if m.scroll.toBottom {
		m.viewport.GotoBottom()
		m.scroll.toBottom = false
	}
}
