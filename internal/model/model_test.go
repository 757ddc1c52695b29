// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MODE TESTS
// =============================================================================

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"chat", ModeChat, false},
		{"IMAGE", ModeImage, false},
		{" video ", ModeVideo, false},
		{"audio", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMode_Placeholder(t *testing.T) {
	assert.Equal(t, "Type your message...", ModeChat.Placeholder())
	assert.Equal(t, "Describe the image you want...", ModeImage.Placeholder())
	assert.Equal(t, "Describe the video you want...", ModeVideo.Placeholder())
}

func TestMode_Cycle(t *testing.T) {
	assert.Equal(t, ModeImage, ModeChat.Next())
	assert.Equal(t, ModeVideo, ModeImage.Next())
	assert.Equal(t, ModeChat, ModeVideo.Next())
	assert.Equal(t, ModeVideo, ModeChat.Prev())
	assert.Equal(t, ModeChat, Mode("bogus").Next())
}

func TestMode_HasMedia(t *testing.T) {
	assert.False(t, ModeChat.HasMedia())
	assert.True(t, ModeImage.HasMedia())
	assert.True(t, ModeVideo.HasMedia())
	assert.False(t, Mode("other").HasMedia())
}

// =============================================================================
// EXCHANGE TESTS
// =============================================================================

func TestNewUserExchange(t *testing.T) {
	ex := NewUserExchange("Hello")

	assert.Equal(t, OriginUser, ex.Origin)
	assert.Equal(t, "Hello", ex.Text)
	assert.Empty(t, ex.Mode)
	assert.Empty(t, ex.MediaURL)
	assert.NotEmpty(t, ex.ID)
	assert.False(t, ex.Timestamp.IsZero())
}

func TestNewAssistantExchange_MediaOnlyForMediaModes(t *testing.T) {
	img := NewAssistantExchange(ModeImage, ImageGeneratedText, "http://x/cat.png")
	assert.Equal(t, "http://x/cat.png", img.MediaURL)
	assert.True(t, img.HasMedia())

	chat := NewAssistantExchange(ModeChat, "Hi there", "http://x/ignored.png")
	assert.Empty(t, chat.MediaURL)
	assert.False(t, chat.HasMedia())
	assert.NoError(t, chat.Validate())
}

func TestExchange_Validate(t *testing.T) {
	assert.NoError(t, NewErrorExchange(ErrorText).Validate())

	bad := Exchange{Origin: OriginAssistant, Text: "x", Mode: ModeChat, MediaURL: "http://x"}
	assert.ErrorIs(t, bad.Validate(), ErrMediaWithoutMediaMode)

	unknown := Exchange{Origin: "robot", Text: "x"}
	assert.Error(t, unknown.Validate())
}

func TestExchange_Preview(t *testing.T) {
	ex := Exchange{Text: "Hello world, how are you?"}
	assert.Equal(t, "Hello...", ex.Preview(8))
	assert.Equal(t, ex.Text, ex.Preview(100))
}

// =============================================================================
// TRANSCRIPT CODEC TESTS
// =============================================================================

func TestTranscript_RoundTrip(t *testing.T) {
	original := []Exchange{
		NewUserExchange("a cat"),
		NewAssistantExchange(ModeImage, ImageGeneratedText, "http://x/cat.png"),
		NewUserExchange("Hello"),
		NewErrorExchange(ErrorText),
	}

	data, err := MarshalTranscript(original)
	require.NoError(t, err)

	restored, err := UnmarshalTranscript(data)
	require.NoError(t, err)

	if diff := cmp.Diff(original, restored); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTranscript_Empty(t *testing.T) {
	data, err := MarshalTranscript(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	for _, in := range []string{"", "null", "[]"} {
		got, err := UnmarshalTranscript([]byte(in))
		require.NoError(t, err, "input %q", in)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestTranscript_Corrupt(t *testing.T) {
	_, err := UnmarshalTranscript([]byte(`{not json`))
	assert.Error(t, err)

	_, err = UnmarshalTranscript([]byte(`[{"origin":"user","text":"x","mode":"chat","mediaUrl":"http://x"}]`))
	assert.ErrorIs(t, err, ErrMediaWithoutMediaMode)
}

func TestTranscript_BrowserShape(t *testing.T) {
	data := []byte(`[
		{"type":"user","text":"a cat"},
		{"type":"bot","text":"Image generated:","model":"image","mediaUrl":"http://x/cat.png"},
		{"type":"error","text":"Error: Could not get response."}
	]`)

	got, err := UnmarshalTranscript(data)
	require.NoError(t, err)

	want := []Exchange{
		{Origin: OriginUser, Text: "a cat"},
		{Origin: OriginAssistant, Text: ImageGeneratedText, Mode: ModeImage, MediaURL: "http://x/cat.png"},
		{Origin: OriginError, Text: ErrorText},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("browser transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestLastMediaAndAssistant(t *testing.T) {
	exchanges := []Exchange{
		NewAssistantExchange(ModeVideo, VideoGeneratedText, "http://x/v.mp4"),
		NewAssistantExchange(ModeChat, "plain", ""),
		NewErrorExchange(ErrorText),
	}

	media, ok := LastMedia(exchanges)
	require.True(t, ok)
	assert.Equal(t, "http://x/v.mp4", media.MediaURL)

	last, ok := LastAssistant(exchanges)
	require.True(t, ok)
	assert.Equal(t, "plain", last.Text)

	_, ok = LastMedia(nil)
	assert.False(t, ok)
}
