// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/genchat/internal/genclient"
	"github.com/jeranaias/genchat/internal/model"
	"github.com/jeranaias/genchat/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// =============================================================================
// HELPERS
// =============================================================================

// ignoreGenerated drops the fields that differ on every run.
var ignoreGenerated = cmpopts.IgnoreFields(model.Exchange{}, "ID", "Timestamp")

func reply(resp *genclient.GenerateResponse, err error) GeneratorFunc {
	return func(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error) {
		return resp, err
	}
}

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) Put(ctx context.Context, key string, value []byte) error {
	return errors.New("disk on fire")
}
func (failingStore) Close() error { return nil }

// endpoint starts a mock generation endpoint and returns a controller wired to it.
func endpoint(t *testing.T, handler http.HandlerFunc, mode model.Mode) (*Controller, *storage.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := genclient.NewClientWithConfig(&genclient.ClientConfig{BaseURL: server.URL, Timeout: 2 * time.Second})
	t.Cleanup(func() {
		client.CloseIdleConnections()
		server.Close()
	})

	store := storage.NewMemoryStore()
	return New(Options{Store: store, Client: client, Mode: mode}), store
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestSubmit_ChatScenario(t *testing.T) {
	ctrl, _ := endpoint(t, func(w http.ResponseWriter, r *http.Request) {
		var req genclient.GenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, genclient.GenerateRequest{UserMessage: "Hello", Model: "chat"}, req)
		_, _ = w.Write([]byte(`{"bot_response":"Hi there"}`))
	}, model.ModeChat)

	_, ok := ctrl.Submit(context.Background(), "Hello")
	require.True(t, ok)

	want := []model.Exchange{
		{Origin: model.OriginUser, Text: "Hello"},
		{Origin: model.OriginAssistant, Text: "Hi there", Mode: model.ModeChat},
	}
	if diff := cmp.Diff(want, ctrl.Transcript(), ignoreGenerated); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, ctrl.Busy())
}

func TestSubmit_ImageScenario(t *testing.T) {
	ctrl, _ := endpoint(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"media_url":"http://x/cat.png"}`))
	}, model.ModeImage)

	ex, ok := ctrl.Submit(context.Background(), "a cat")
	require.True(t, ok)

	want := model.Exchange{Origin: model.OriginAssistant, Text: "Image generated:", Mode: model.ModeImage, MediaURL: "http://x/cat.png"}
	if diff := cmp.Diff(want, ex, ignoreGenerated); diff != "" {
		t.Errorf("exchange mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, ctrl.Len())
}

func TestSubmit_FailureScenario(t *testing.T) {
	ctrl, _ := endpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, model.ModeChat)

	_, ok := ctrl.Submit(context.Background(), "Hello")
	require.True(t, ok)

	transcript := ctrl.Transcript()
	require.Len(t, transcript, 2)
	last := transcript[len(transcript)-1]
	assert.Equal(t, model.OriginError, last.Origin)
	assert.Equal(t, "Error: Could not get response.", last.Text)
	assert.False(t, ctrl.Busy())
}

func TestSubmit_VideoScenario(t *testing.T) {
	ctrl, _ := endpoint(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"media_url":"http://x/clip.mp4"}`))
	}, model.ModeVideo)

	ex, ok := ctrl.Submit(context.Background(), "waves")
	require.True(t, ok)
	assert.Equal(t, "Video generated:", ex.Text)
	assert.Equal(t, "http://x/clip.mp4", ex.MediaURL)
	assert.True(t, ex.HasMedia())
}

func TestSubmit_MissingMediaURL(t *testing.T) {
	ctrl := New(Options{Store: storage.NewMemoryStore(), Mode: model.ModeImage,
		Client: reply(&genclient.GenerateResponse{}, nil)})

	ex, ok := ctrl.Submit(context.Background(), "a cat")
	require.True(t, ok)
	assert.Equal(t, model.OriginAssistant, ex.Origin)
	assert.Empty(t, ex.MediaURL)
	assert.False(t, ex.HasMedia())
}

func TestSubmit_MalformedResponse(t *testing.T) {
	ctrl, _ := endpoint(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bot_response":`))
	}, model.ModeChat)

	ex, ok := ctrl.Submit(context.Background(), "Hello")
	require.True(t, ok)
	assert.Equal(t, model.OriginError, ex.Origin)
}

func TestSubmit_UnknownModeFallback(t *testing.T) {
	var got genclient.GenerateRequest
	ctrl := New(Options{
		Store: storage.NewMemoryStore(),
		Mode:  model.Mode("audio"),
		Client: GeneratorFunc(func(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error) {
			got = req
			return &genclient.GenerateResponse{BotResponse: "ignored", MediaURL: "http://x/a.wav"}, nil
		}),
	})

	ex, ok := ctrl.Submit(context.Background(), "hum")
	require.True(t, ok)

	assert.Equal(t, "audio", got.Model)
	assert.Equal(t, model.OriginAssistant, ex.Origin)
	assert.Equal(t, "Unknown model response", ex.Text)
	assert.Equal(t, model.Mode("audio"), ex.Mode)
	assert.Empty(t, ex.MediaURL)
}

func TestSubmit_NoClient(t *testing.T) {
	ctrl := New(Options{Store: storage.NewMemoryStore()})

	ex, ok := ctrl.Submit(context.Background(), "Hello")
	require.True(t, ok)
	assert.Equal(t, model.OriginError, ex.Origin)
	assert.False(t, ctrl.Busy())
}

// =============================================================================
// SUBMISSION RULES
// =============================================================================

func TestSubmit_AddsTwoExchanges(t *testing.T) {
	tests := []struct {
		name string
		gen  GeneratorFunc
	}{
		{"success", reply(&genclient.GenerateResponse{BotResponse: "ok"}, nil)},
		{"failure", reply(nil, genclient.ErrTimeout)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := New(Options{Store: storage.NewMemoryStore(), Client: tt.gen})
			for i := 1; i <= 3; i++ {
				_, ok := ctrl.Submit(context.Background(), "message")
				require.True(t, ok)
				assert.Equal(t, 2*i, ctrl.Len())
			}
		})
	}
}

func TestSubmit_BlankIsNoop(t *testing.T) {
	var calls atomic.Int32
	store := storage.NewMemoryStore()
	ctrl := New(Options{Store: store, Client: GeneratorFunc(func(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error) {
		calls.Add(1)
		return &genclient.GenerateResponse{}, nil
	})})
	ctrl.SetInput("   ")

	for _, text := range []string{"", " ", "\n\t "} {
		_, ok := ctrl.Submit(context.Background(), text)
		assert.False(t, ok, "text %q", text)
	}

	assert.Zero(t, ctrl.Len())
	assert.Zero(t, calls.Load())
	assert.Zero(t, store.Puts())
	assert.Equal(t, "   ", ctrl.Input())
}

func TestSubmit_PreservesTextVerbatim(t *testing.T) {
	ctrl := New(Options{Store: storage.NewMemoryStore(), Client: reply(&genclient.GenerateResponse{BotResponse: "ok"}, nil)})

	_, ok := ctrl.Submit(context.Background(), "  padded  ")
	require.True(t, ok)
	assert.Equal(t, "  padded  ", ctrl.Transcript()[0].Text)
}

func TestBeginResolve_BusyWindow(t *testing.T) {
	store := storage.NewMemoryStore()
	ctrl := New(Options{Store: store})
	ctrl.SetInput("Hello")

	assert.False(t, ctrl.Busy())
	p, ok := ctrl.Begin(context.Background(), "Hello")
	require.True(t, ok)

	assert.True(t, ctrl.Busy())
	assert.Empty(t, ctrl.Input(), "input cleared on submit")
	assert.Equal(t, 1, ctrl.Len())
	assert.Equal(t, 1, store.Puts(), "user exchange persisted before the response")
	assert.Equal(t, genclient.GenerateRequest{UserMessage: "Hello", Model: "chat"}, p.Request())

	// Everything that needs a free session is refused
	_, again := ctrl.Begin(context.Background(), "second")
	assert.False(t, again)
	assert.False(t, ctrl.SelectMode(model.ModeImage))
	assert.False(t, ctrl.CanSubmit("text"))
	ctrl.SetInput("typed while busy")
	assert.Empty(t, ctrl.Input())

	_, resolved := ctrl.Resolve(context.Background(), p, &genclient.GenerateResponse{BotResponse: "Hi"}, nil)
	require.True(t, resolved)
	assert.False(t, ctrl.Busy())
	assert.Equal(t, 2, ctrl.Len())
	assert.Equal(t, 2, store.Puts())
	assert.Equal(t, model.ModeChat, ctrl.Mode())
}

func TestResolve_UsesCapturedMode(t *testing.T) {
	ctrl := New(Options{Store: storage.NewMemoryStore(), Mode: model.ModeImage})

	p, ok := ctrl.Begin(context.Background(), "a cat")
	require.True(t, ok)
	assert.Equal(t, model.ModeImage, p.Mode)

	// Force the selection to change mid-flight
	ctrl.mu.Lock()
	ctrl.mode = model.ModeChat
	ctrl.mu.Unlock()

	ex, ok := ctrl.Resolve(context.Background(), p, &genclient.GenerateResponse{BotResponse: "text", MediaURL: "http://x/cat.png"}, nil)
	require.True(t, ok)
	assert.Equal(t, model.ModeImage, ex.Mode)
	assert.Equal(t, "Image generated:", ex.Text)
	assert.Equal(t, "http://x/cat.png", ex.MediaURL)
}

func TestResolve_StaleOrNilPending(t *testing.T) {
	ctrl := New(Options{Store: storage.NewMemoryStore()})

	_, ok := ctrl.Resolve(context.Background(), nil, &genclient.GenerateResponse{}, nil)
	assert.False(t, ok)

	p, ok := ctrl.Begin(context.Background(), "one")
	require.True(t, ok)
	_, ok = ctrl.Resolve(context.Background(), p, nil, errors.New("boom"))
	require.True(t, ok)

	// Resolving the same submission twice appends nothing
	_, ok = ctrl.Resolve(context.Background(), p, &genclient.GenerateResponse{}, nil)
	assert.False(t, ok)
	assert.Equal(t, 2, ctrl.Len())
}

func TestResolve_NilResponseIsFailure(t *testing.T) {
	ctrl := New(Options{Store: storage.NewMemoryStore()})
	p, _ := ctrl.Begin(context.Background(), "Hello")

	ex, ok := ctrl.Resolve(context.Background(), p, nil, nil)
	require.True(t, ok)
	assert.Equal(t, model.OriginError, ex.Origin)
}

func TestSubmit_SingleInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	ctrl := New(Options{Store: storage.NewMemoryStore(), Client: GeneratorFunc(func(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error) {
		close(started)
		<-release
		return &genclient.GenerateResponse{BotResponse: "done"}, nil
	})})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ok := ctrl.Submit(context.Background(), "first")
		assert.True(t, ok)
	}()

	<-started
	_, ok := ctrl.Submit(context.Background(), "second")
	assert.False(t, ok)
	assert.True(t, ctrl.Busy())

	close(release)
	wg.Wait()

	assert.False(t, ctrl.Busy())
	transcript := ctrl.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, "first", transcript[0].Text)
	assert.Equal(t, "done", transcript[1].Text)
}

func TestSubmit_CanceledContextStillPersists(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ctrl := New(Options{Store: store, Client: GeneratorFunc(func(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error) {
		cancel()
		return nil, ctx.Err()
	})})

	ex, ok := ctrl.Submit(ctx, "Hello")
	require.True(t, ok)
	assert.Equal(t, model.OriginError, ex.Origin)
	require.NoError(t, ctrl.LastPersistError())

	restored := New(Options{Store: store})
	require.NoError(t, restored.Restore(context.Background()))
	assert.Equal(t, 2, restored.Len())
}

// =============================================================================
// MODE SELECTION
// =============================================================================

func TestSelectMode(t *testing.T) {
	ctrl := New(Options{Store: storage.NewMemoryStore()})
	assert.Equal(t, model.ModeChat, ctrl.Mode())

	assert.True(t, ctrl.SelectMode(model.ModeVideo))
	assert.Equal(t, model.ModeVideo, ctrl.Mode())

	assert.False(t, ctrl.SelectMode(model.Mode("audio")))
	assert.Equal(t, model.ModeVideo, ctrl.Mode())
	assert.Zero(t, ctrl.Len(), "mode changes never touch the transcript")
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestPersistRestore_RoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	responses := []*genclient.GenerateResponse{
		{BotResponse: "Hi there"},
		{MediaURL: "http://x/cat.png"},
	}
	var i int
	gen := GeneratorFunc(func(ctx context.Context, req genclient.GenerateRequest) (*genclient.GenerateResponse, error) {
		defer func() { i++ }()
		if i >= len(responses) {
			return nil, errors.New("no more")
		}
		return responses[i], nil
	})

	ctrl := New(Options{Store: store, Client: gen})
	ctrl.Submit(context.Background(), "Hello")
	require.True(t, ctrl.SelectMode(model.ModeImage))
	ctrl.Submit(context.Background(), "a cat")
	ctrl.Submit(context.Background(), "another")
	require.NoError(t, ctrl.Persist(context.Background()))

	restored := New(Options{Store: store})
	require.NoError(t, restored.Restore(context.Background()))

	if diff := cmp.Diff(ctrl.Transcript(), restored.Transcript()); diff != "" {
		t.Errorf("restored transcript mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 6, restored.Len())
}

func TestRestore_MissingKey(t *testing.T) {
	ctrl := New(Options{Store: storage.NewMemoryStore()})
	require.NoError(t, ctrl.Restore(context.Background()))
	assert.Zero(t, ctrl.Len())
}

func TestRestore_CorruptValue(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), DefaultKey, []byte(`{not json`)))

	ctrl := New(Options{Store: store})
	err := ctrl.Restore(context.Background())
	require.Error(t, err)
	assert.Zero(t, ctrl.Len())
	assert.NotNil(t, ctrl.Transcript())
}

func TestRestore_StoreFailure(t *testing.T) {
	ctrl := New(Options{Store: failingStore{}})
	err := ctrl.Restore(context.Background())
	require.Error(t, err)
	assert.Zero(t, ctrl.Len())
}

func TestRestore_BrowserTranscript(t *testing.T) {
	store := storage.NewMemoryStore()
	legacy := `[{"type":"user","text":"a cat"},{"type":"bot","text":"Image generated:","model":"image","mediaUrl":"http://x/cat.png"}]`
	require.NoError(t, store.Put(context.Background(), DefaultKey, []byte(legacy)))

	ctrl := New(Options{Store: store})
	require.NoError(t, ctrl.Restore(context.Background()))

	transcript := ctrl.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, model.OriginAssistant, transcript[1].Origin)
	assert.Equal(t, "http://x/cat.png", transcript[1].MediaURL)
}

func TestPersist_FailureKeepsTranscript(t *testing.T) {
	ctrl := New(Options{Store: failingStore{}, Client: reply(&genclient.GenerateResponse{BotResponse: "ok"}, nil)})

	_, ok := ctrl.Submit(context.Background(), "Hello")
	require.True(t, ok)

	assert.Equal(t, 2, ctrl.Len())
	assert.Error(t, ctrl.LastPersistError())
	assert.False(t, ctrl.Busy())
}

func TestPersist_CustomKey(t *testing.T) {
	store := storage.NewMemoryStore()
	ctrl := New(Options{Store: store, Key: "work", Client: reply(&genclient.GenerateResponse{BotResponse: "ok"}, nil)})
	ctrl.Submit(context.Background(), "Hello")

	_, err := store.Get(context.Background(), "work")
	require.NoError(t, err)
	_, err = store.Get(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// =============================================================================
// OBSERVER
// =============================================================================

func TestObserver_CalledAfterEveryChange(t *testing.T) {
	store := storage.NewMemoryStore()
	var lengths []int
	var persistedAtNotify []int

	ctrl := New(Options{
		Store:  store,
		Client: reply(&genclient.GenerateResponse{BotResponse: "ok"}, nil),
		Observer: func(transcript []model.Exchange) {
			lengths = append(lengths, len(transcript))
			persistedAtNotify = append(persistedAtNotify, store.Puts())
		},
	})

	ctrl.Submit(context.Background(), "one")
	ctrl.SelectMode(model.ModeVideo)
	ctrl.Submit(context.Background(), "")

	assert.Equal(t, []int{1, 2}, lengths)
	assert.Equal(t, []int{1, 2}, persistedAtNotify, "persist runs before the observer")
}

func TestObserver_ReceivesCopy(t *testing.T) {
	ctrl := New(Options{Store: storage.NewMemoryStore()})
	ctrl.SetObserver(func(transcript []model.Exchange) {
		if len(transcript) > 0 {
			transcript[0].Text = "tampered"
		}
	})

	ctrl.Begin(context.Background(), "original")
	assert.Equal(t, "original", ctrl.Transcript()[0].Text)
}

// =============================================================================
// INTERPRETATION
// =============================================================================

func TestAssistantExchange(t *testing.T) {
	resp := &genclient.GenerateResponse{BotResponse: "words", MediaURL: "http://x/m"}
	tests := []struct {
		mode model.Mode
		want model.Exchange
	}{
		{model.ModeChat, model.Exchange{Origin: model.OriginAssistant, Text: "words", Mode: model.ModeChat}},
		{model.ModeImage, model.Exchange{Origin: model.OriginAssistant, Text: "Image generated:", Mode: model.ModeImage, MediaURL: "http://x/m"}},
		{model.ModeVideo, model.Exchange{Origin: model.OriginAssistant, Text: "Video generated:", Mode: model.ModeVideo, MediaURL: "http://x/m"}},
		{model.Mode("3d"), model.Exchange{Origin: model.OriginAssistant, Text: "Unknown model response", Mode: model.Mode("3d")}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := AssistantExchange(tt.mode, resp)
			if diff := cmp.Diff(tt.want, got, ignoreGenerated); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			assert.NoError(t, got.Validate())
		})
	}
}
