// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/genchat/internal/genclient"
	"github.com/jeranaias/genchat/internal/model"
	"github.com/jeranaias/genchat/internal/storage"
)

// DefaultKey is the storage key the transcript lives under.
const DefaultKey = "chatLog"

// =============================================================================
// COLLABORATORS
// =============================================================================

// Generator performs one generation request.
type Generator interface {
	Generate(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error) {
	return f(ctx, req)
}

// Observer is notified with a copy of the transcript after every change
// has been persisted. Frontends use it to scroll to the latest entry.
type Observer func(transcript []model.Exchange)

// Options configures a Controller.
type Options struct {
	// Store persists the transcript. Required.
	Store storage.Store

	// Key is the storage key (default: chatLog).
	Key string

	// Client performs generation requests. Required by Submit only.
	Client Generator

	// Mode is the initial mode (default: chat).
	Mode model.Mode

	// Logger receives diagnostics. The zero value discards them.
	Logger zerolog.Logger

	// Observer is called after every transcript change.
	Observer Observer
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the session state: transcript, selected mode, input
// text and busy flag. It is safe for concurrent use; at most one
// submission is in flight at any time.
type Controller struct {
	mu         sync.Mutex
	transcript []model.Exchange
	mode       model.Mode
	input      string
	busy       bool
	pending    *Pending

	// persistMu orders writes so the store always ends with the newest snapshot
	persistMu  sync.Mutex
	persistErr error
	store      storage.Store
	key        string
	client     Generator
	observer   Observer
	logger     zerolog.Logger
}

// New creates a controller with an empty transcript.
func New(opts Options) *Controller {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Mode == "" {
		opts.Mode = model.DefaultMode
	}
	return &Controller{
		transcript: []model.Exchange{},
		mode:       opts.Mode,
		store:      opts.Store,
		key:        opts.Key,
		client:     opts.Client,
		observer:   opts.Observer,
		logger:     opts.Logger.With().Str("component", "session").Logger(),
	}
}

// SetObserver replaces the change observer.
func (c *Controller) SetObserver(o Observer) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

// =============================================================================
// STATE ACCESSORS
// =============================================================================

// Transcript returns a copy of the transcript.
func (c *Controller) Transcript() []model.Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Len returns the number of exchanges.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transcript)
}

// Mode returns the selected mode.
func (c *Controller) Mode() model.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Input returns the current input text.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the input text. Ignored while busy.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return
	}
	c.input = text
}

// CanSubmit reports whether text would be accepted by Begin.
func (c *Controller) CanSubmit(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.busy && strings.TrimSpace(text) != ""
}

// LastPersistError returns the error from the most recent persist, if any.
func (c *Controller) LastPersistError() error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	return c.persistErr
}

// SelectMode switches the mode. It is a no-op returning false while busy
// or when mode is not one of the known modes.
func (c *Controller) SelectMode(mode model.Mode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy || !mode.Valid() {
		return false
	}
	c.mode = mode
	return true
}

func (c *Controller) snapshotLocked() []model.Exchange {
	out := make([]model.Exchange, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Restore replaces the transcript with the stored one. A missing key
// leaves the transcript empty. A read or parse failure also leaves it
// empty; the failure is logged and returned for display.
func (c *Controller) Restore(ctx context.Context) error {
	restored, err := c.load(ctx)

	c.mu.Lock()
	c.transcript = restored
	snapshot := c.snapshotLocked()
	observer := c.observer
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("restore failed, starting with empty transcript")
	} else {
		c.logger.Debug().Int("exchanges", len(restored)).Msg("transcript restored")
	}

	if observer != nil {
		observer(snapshot)
	}
	return err
}

func (c *Controller) load(ctx context.Context) ([]model.Exchange, error) {
	if c.store == nil {
		return []model.Exchange{}, errors.New("session: no store configured")
	}
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []model.Exchange{}, nil
		}
		return []model.Exchange{}, err
	}
	exchanges, err := model.UnmarshalTranscript(data)
	if err != nil {
		return []model.Exchange{}, err
	}
	return exchanges, nil
}

// Persist writes the full transcript to the store, replacing the stored value.
func (c *Controller) Persist(ctx context.Context) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	err := c.write(ctx, snapshot)
	c.persistErr = err
	if err != nil {
		c.logger.Error().Err(err).Str("key", c.key).Int("exchanges", len(snapshot)).Msg("persist failed")
	}
	return err
}

func (c *Controller) write(ctx context.Context, snapshot []model.Exchange) error {
	if c.store == nil {
		return errors.New("session: no store configured")
	}
	data, err := model.MarshalTranscript(snapshot)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, c.key, data)
}

// changed runs the post-mutation side effects: persist, then notify.
// A canceled request context must not prevent the write.
func (c *Controller) changed(ctx context.Context) {
	_ = c.Persist(context.WithoutCancel(ctx))

	c.mu.Lock()
	observer := c.observer
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if observer != nil {
		observer(snapshot)
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Pending is an accepted submission awaiting its response. Mode is the
// mode selected when the submission was accepted; the response is
// interpreted against it even if the selection changes meanwhile.
type Pending struct {
	Text    string
	Mode    model.Mode
	Started time.Time
}

// Request returns the endpoint request for the submission.
func (p *Pending) Request() genclient.GenerateRequest {
	return genclient.GenerateRequest{UserMessage: p.Text, Model: p.Mode.String()}
}

// Begin accepts text for submission. It returns false without changing
// anything when text is blank or a submission is already in flight.
// Otherwise it appends the user exchange, clears the input, marks the
// session busy and persists.
func (c *Controller) Begin(ctx context.Context, text string) (*Pending, bool) {
	c.mu.Lock()
	if c.busy || strings.TrimSpace(text) == "" {
		c.mu.Unlock()
		return nil, false
	}

	p := &Pending{Text: text, Mode: c.mode, Started: time.Now()}
	c.transcript = append(c.transcript, model.NewUserExchange(text))
	c.input = ""
	c.busy = true
	c.pending = p
	c.mu.Unlock()

	c.logger.Debug().Str("mode", p.Mode.String()).Int("chars", len(text)).Msg("submission started")
	c.changed(ctx)
	return p, true
}

// Resolve completes p with the endpoint's response or error, appending
// the assistant or error exchange and clearing the busy flag. It returns
// the appended exchange, or false when p is not the submission in flight.
func (c *Controller) Resolve(ctx context.Context, p *Pending, resp *genclient.GenerateResponse, err error) (model.Exchange, bool) {
	if p == nil {
		return model.Exchange{}, false
	}

	var ex model.Exchange
	switch {
	case err != nil:
		ex = model.NewErrorExchange(model.ErrorText)
	case resp == nil:
		err = errors.New("empty response")
		ex = model.NewErrorExchange(model.ErrorText)
	default:
		ex = AssistantExchange(p.Mode, resp)
	}

	c.mu.Lock()
	if c.pending != p {
		c.mu.Unlock()
		return model.Exchange{}, false
	}
	c.transcript = append(c.transcript, ex)
	c.busy = false
	c.pending = nil
	c.mu.Unlock()

	elapsed := time.Since(p.Started)
	if err != nil {
		event := c.logger.Warn().Err(err).Str("mode", p.Mode.String()).Dur("elapsed", elapsed)
		var clientErr *genclient.ClientError
		if errors.As(err, &clientErr) {
			event = event.Str("error_type", clientErr.Type.String())
		}
		event.Msg("generation failed")
	} else {
		c.logger.Info().Str("mode", p.Mode.String()).Dur("elapsed", elapsed).Bool("media", ex.HasMedia()).Msg("generation completed")
	}

	c.changed(ctx)
	return ex, true
}

// Submit runs a full request/response cycle and blocks until it
// completes. It returns false when the submission was not accepted.
func (c *Controller) Submit(ctx context.Context, text string) (model.Exchange, bool) {
	p, ok := c.Begin(ctx, text)
	if !ok {
		return model.Exchange{}, false
	}

	var resp *genclient.GenerateResponse
	var err error
	if c.client == nil {
		err = errors.New("session: no client configured")
	} else {
		resp, err = c.client.Generate(ctx, p.Request())
	}

	return c.Resolve(ctx, p, resp, err)
}

// AssistantExchange interprets a successful response for mode.
func AssistantExchange(mode model.Mode, resp *genclient.GenerateResponse) model.Exchange {
	switch mode {
	case model.ModeChat:
		return model.NewAssistantExchange(mode, resp.BotResponse, "")
	case model.ModeImage:
		return model.NewAssistantExchange(mode, model.ImageGeneratedText, resp.MediaURL)
	case model.ModeVideo:
		return model.NewAssistantExchange(mode, model.VideoGeneratedText, resp.MediaURL)
	default:
		return model.NewAssistantExchange(mode, model.UnknownModelText, "")
	}
}
