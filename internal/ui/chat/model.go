// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/genchat/internal/genclient"
	"github.com/jeranaias/genchat/internal/model"
	"github.com/jeranaias/genchat/internal/session"
	"github.com/jeranaias/genchat/internal/ui/styles"
)

// HealthInterval is how often the endpoint is re-checked.
const HealthInterval = 30 * time.Second

// maxInputChars bounds a single submission typed in the TUI.
const maxInputChars = 4000

// Client is what the chat view needs from the endpoint client.
type Client interface {
	session.Generator
	CheckHealth(ctx context.Context) error
	SetConfig(cfg *genclient.ClientConfig)
	BaseURL() string
}

// Options configures a chat Model.
type Options struct {
	Controller *session.Controller
	Client     Client
	Theme      *styles.Theme

	// Markdown renders assistant chat replies with glamour.
	Markdown bool

	// RestoreErr is the non-fatal error from restoring the transcript.
	RestoreErr error

	Logger zerolog.Logger

	// Context bounds every request issued by the view. Nil means Background.
	Context context.Context
}

// healthState is the last known endpoint health.
type healthState int

const (
	healthUnknown healthState = iota
	healthOK
	healthDown
)

// scrollState is shared with the controller's observer, which runs
// synchronously inside Update.
type scrollState struct {
	toBottom bool
}

// Model is the chat view.
type Model struct {
	ctx    context.Context
	ctrl   *session.Controller
	client Client
	theme  *styles.Theme
	keys   KeyMap
	logger zerolog.Logger

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	markdown bool
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	health    healthState
	healthErr error

	// healthGen identifies the live polling loop; a config reload starts a
	// new generation and ticks from older ones are dropped
	healthGen int

	status      string
	statusError bool

	scroll   *scrollState
	copyText func(string) error
}

// New creates the chat view.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("auto")
	}

	input := textinput.New()
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = maxInputChars
	input.Placeholder = opts.Controller.Mode().Placeholder()
	input.SetValue(opts.Controller.Input())
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := Model{
		ctx:      ctx,
		ctrl:     opts.Controller,
		client:   opts.Client,
		theme:    theme,
		keys:     DefaultKeyMap(),
		logger:   opts.Logger.With().Str("component", "tui").Logger(),
		input:    input,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		help:     help.New(),
		markdown: opts.Markdown,
		scroll:   &scrollState{toBottom: true},
		copyText: clipboard.WriteAll,
	}

	// Scroll to the newest entry after every transcript change
	scroll := m.scroll
	m.ctrl.SetObserver(func([]model.Exchange) {
		scroll.toBottom = true
	})

	if opts.RestoreErr != nil {
		m.setStatus("Could not restore previous chat; starting fresh", true)
	}
	return m
}

// Init starts the cursor blink and the first health check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkHealthCmd())
}

// =============================================================================
// COMMANDS
// =============================================================================

// generateCmd performs the endpoint call for p off the update loop.
func (m Model) generateCmd(p *session.Pending) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		if client == nil {
			return GenerateResultMsg{Pending: p, Err: genclient.ErrNotReachable}
		}
		resp, err := client.Generate(ctx, p.Request())
		return GenerateResultMsg{Pending: p, Response: resp, Err: err}
	}
}

func (m Model) checkHealthCmd() tea.Cmd {
	client := m.client
	if client == nil {
		return nil
	}
	ctx := m.ctx
	gen := m.healthGen
	return func() tea.Msg {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return HealthMsg{Err: client.CheckHealth(checkCtx), gen: gen}
	}
}

func healthTickCmd(gen int) tea.Cmd {
	return tea.Tick(HealthInterval, func(time.Time) tea.Msg {
		return healthTickMsg{gen: gen}
	})
}

func (m Model) copyCmd(what, text string) tea.Cmd {
	copyText := m.copyText
	return func() tea.Msg {
		return CopyResultMsg{What: what, Err: copyText(text)}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusError = isError
}

// Controller returns the session controller behind the view.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}
