// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/genchat/internal/config"
	"github.com/jeranaias/genchat/internal/genclient"
	"github.com/jeranaias/genchat/internal/model"
	"github.com/jeranaias/genchat/internal/session"
	"github.com/jeranaias/genchat/internal/storage"
	"github.com/jeranaias/genchat/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

type fakeClient struct {
	mu       sync.Mutex
	resp     *genclient.GenerateResponse
	err      error
	healthy  error
	requests []genclient.GenerateRequest
	config   *genclient.ClientConfig
}

func (f *fakeClient) Generate(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func (f *fakeClient) CheckHealth(ctx context.Context) error { return f.healthy }

func (f *fakeClient) SetConfig(cfg *genclient.ClientConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.config = cfg
}

func (f *fakeClient) BaseURL() string { return "http://localhost:8000" }

func newTestModel(t *testing.T, client *fakeClient) (Model, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	ctrl := session.New(session.Options{Store: store, Client: client})
	m := New(Options{
		Controller: ctrl,
		Client:     client,
		Theme:      styles.NewTheme("dark"),
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, store
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// collectResults runs cmd and any batched commands, keeping the
// generation results.
func collectResults(cmd tea.Cmd) []GenerateResultMsg {
	if cmd == nil {
		return nil
	}
	var out []GenerateResultMsg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collectResults(c)...)
		}
	case GenerateResultMsg:
		out = append(out, msg)
	}
	return out
}

// submit presses enter and returns the model together with the pending result.
func submit(t *testing.T, m Model) (Model, GenerateResultMsg) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	results := collectResults(cmd)
	require.Len(t, results, 1)
	return next.(Model), results[0]
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitChatRoundTrip(t *testing.T) {
	client := &fakeClient{resp: &genclient.GenerateResponse{BotResponse: "Hi there"}}
	m, store := newTestModel(t, client)

	m = typeText(t, m, "Hello")
	m, result := submit(t, m)

	assert.True(t, m.ctrl.Busy())
	assert.Empty(t, m.input.Value())
	require.Equal(t, 1, m.ctrl.Len())
	assert.Contains(t, m.View(), "request in progress")

	m = update(t, m, result)

	assert.False(t, m.ctrl.Busy())
	transcript := m.ctrl.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, model.OriginAssistant, transcript[1].Origin)
	assert.Equal(t, "Hi there", transcript[1].Text)
	assert.Equal(t, []genclient.GenerateRequest{{UserMessage: "Hello", Model: "chat"}}, client.requests)
	assert.Equal(t, 2, store.Puts())
	assert.Contains(t, m.View(), "Hi there")
}

func TestSubmitImageShowsLink(t *testing.T) {
	client := &fakeClient{resp: &genclient.GenerateResponse{MediaURL: "http://x/cat.png"}}
	m, _ := newTestModel(t, client)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyF2})
	require.Equal(t, model.ModeImage, m.ctrl.Mode())
	assert.Equal(t, model.ModeImage.Placeholder(), m.input.Placeholder)

	m = typeText(t, m, "a cat")
	m, result := submit(t, m)
	m = update(t, m, result)

	transcript := m.ctrl.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, model.ImageGeneratedText, transcript[1].Text)
	assert.Equal(t, "http://x/cat.png", transcript[1].MediaURL)
	assert.Contains(t, m.View(), "cat.png")
}

func TestSubmitFailureAppendsError(t *testing.T) {
	client := &fakeClient{err: genclient.ErrNotReachable}
	m, _ := newTestModel(t, client)

	m = typeText(t, m, "Hello")
	m, result := submit(t, m)
	m = update(t, m, result)

	transcript := m.ctrl.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, model.OriginError, transcript[1].Origin)
	assert.Equal(t, model.ErrorText, transcript[1].Text)
	assert.False(t, m.ctrl.Busy())
}

func TestBlankSubmitIgnored(t *testing.T) {
	m, store := newTestModel(t, &fakeClient{})

	m = typeText(t, m, "   ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, 0, next.(Model).ctrl.Len())
	assert.Equal(t, 0, store.Puts())
}

func TestBusyBlocksInputAndModeChanges(t *testing.T) {
	client := &fakeClient{resp: &genclient.GenerateResponse{BotResponse: "ok"}}
	m, _ := newTestModel(t, client)

	m = typeText(t, m, "first")
	m, result := submit(t, m)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.ModeChat, m.ctrl.Mode())

	m = typeText(t, m, "second")
	assert.Empty(t, m.input.Value())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	m = next.(Model)
	assert.Equal(t, 1, m.ctrl.Len())

	m = update(t, m, result)
	assert.False(t, m.ctrl.Busy())
	assert.True(t, m.input.Focused())
}

func TestStaleResultIgnored(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})

	stale := GenerateResultMsg{Pending: &session.Pending{Text: "old", Mode: model.ModeChat}}
	m = update(t, m, stale)

	assert.Equal(t, 0, m.ctrl.Len())
}

func TestTimeoutSetsStatus(t *testing.T) {
	client := &fakeClient{err: &genclient.ClientError{Type: genclient.ErrTypeTimeout, Message: "slow", Cause: genclient.ErrTimeout}}
	m, _ := newTestModel(t, client)

	m = typeText(t, m, "Hello")
	m, result := submit(t, m)
	m = update(t, m, result)

	assert.True(t, m.statusError)
	assert.Contains(t, m.status, "timed out")
}

// =============================================================================
// MODES
// =============================================================================

func TestModeCycling(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.ModeImage, m.ctrl.Mode())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.ModeVideo, m.ctrl.Mode())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, model.ModeImage, m.ctrl.Mode())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, model.ModeChat, m.ctrl.Mode())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyF3})
	assert.Equal(t, model.ModeVideo, m.ctrl.Mode())
}

func TestViewShowsModeTabs(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})
	view := m.View()
	for _, mode := range model.Modes() {
		assert.Contains(t, view, mode.Label())
	}
	assert.Contains(t, view, "No messages yet")
}

// =============================================================================
// COPY, HEALTH, CONFIG
// =============================================================================

func TestCopyPrefersLatestMedia(t *testing.T) {
	client := &fakeClient{resp: &genclient.GenerateResponse{MediaURL: "http://x/clip.mp4"}}
	m, _ := newTestModel(t, client)

	var copied string
	m.copyText = func(s string) error {
		copied = s
		return nil
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyF3})
	m = typeText(t, m, "a clip")
	m, result := submit(t, m)
	m = update(t, m, result)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, "http://x/clip.mp4", copied)

	m = update(t, next.(Model), msg)
	assert.False(t, m.statusError)
	assert.Contains(t, m.status, "Video link")
}

func TestCopyNothing(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing to copy yet", next.(Model).status)
}

func TestCopyFailureReported(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})
	m = update(t, m, CopyResultMsg{What: "reply", Err: errors.New("no xclip")})
	assert.True(t, m.statusError)
	assert.Contains(t, m.status, "no xclip")
}

func TestHealthMsgUpdatesHeader(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})

	m = update(t, m, HealthMsg{Err: genclient.ErrNotReachable})
	assert.Equal(t, healthDown, m.health)
	assert.Contains(t, m.renderHeader(), "unreachable")

	m = update(t, m, HealthMsg{})
	assert.Equal(t, healthOK, m.health)
	assert.NotContains(t, m.renderHeader(), "unreachable")
}

func TestConfigReloadUpdatesClient(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestModel(t, client)

	cfg := config.Default()
	cfg.Endpoint.URL = "http://gen.internal:9000"
	cfg.Endpoint.Timeout = config.Duration{Duration: 30 * time.Second}

	m = update(t, m, ConfigReloadedMsg{Config: cfg})

	require.NotNil(t, client.config)
	assert.Equal(t, "http://gen.internal:9000", client.config.BaseURL)
	assert.Equal(t, 30*time.Second, client.config.Timeout)
	assert.Equal(t, "Config reloaded", m.status)
}

func TestConfigReloadError(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestModel(t, client)

	m = update(t, m, ConfigReloadedMsg{Err: errors.New("bad toml")})

	assert.Nil(t, client.config)
	assert.True(t, m.statusError)
	assert.Contains(t, m.status, "bad toml")
}

func TestRestoreErrorShownInStatus(t *testing.T) {
	ctrl := session.New(session.Options{Store: storage.NewMemoryStore()})
	m := New(Options{
		Controller: ctrl,
		Theme:      styles.NewTheme("dark"),
		RestoreErr: errors.New("corrupt"),
	})
	assert.True(t, m.statusError)
	assert.Contains(t, m.status, "restore")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestConfigReloadKeepsSingleHealthLoop(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestModel(t, client)

	// The loop started by Init schedules its next tick
	next, cmd := m.Update(HealthMsg{})
	require.NotNil(t, cmd)
	m = next.(Model)

	next, cmd = m.Update(ConfigReloadedMsg{Config: config.Default()})
	require.NotNil(t, cmd)
	m = next.(Model)

	// The check issued by the reload continues as the only live loop
	check, ok := cmd().(HealthMsg)
	require.True(t, ok)
	next, cmd = m.Update(check)
	assert.NotNil(t, cmd)
	m = next.(Model)

	// Ticks and results from the loop that predates the reload die out
	next, cmd = m.Update(healthTickMsg{gen: 0})
	assert.Nil(t, cmd)
	m = next.(Model)

	_, cmd = m.Update(HealthMsg{gen: 0})
	assert.Nil(t, cmd)
}

func TestRenderSkipsMissingTimestamp(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})

	ex := model.NewUserExchange("from the browser")
	ex.Timestamp = time.Time{}

	out := m.renderExchange(ex)
	assert.Contains(t, out, "from the browser")
	assert.NotContains(t, out, "00:00")
}
