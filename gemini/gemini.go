// Package gemini is a minimal client for the Gemini generateContent API,
// covering structured JSON generation and speech synthesis.
package gemini

import (
	"context"
	"errors"
	"fmt"
)

const (
	// ModelAnalysis handles text, vision and chat requests.
	ModelAnalysis = "gemini-2.5-flash-preview-09-2025"
	// ModelTTS handles speech synthesis.
	ModelTTS = "gemini-2.5-flash-preview-tts"

	// VoiceName is the prebuilt voice used for all spoken verdicts.
	VoiceName = "Aoede"
)

// ErrMissingKey means no API key was configured. Requests fail before any
// network activity.
var ErrMissingKey = errors.New("GEMINI_API_KEY environment variable is not set")

// ErrNoContent means the provider returned a well-formed envelope with no
// usable candidate text.
var ErrNoContent = errors.New("response contained no candidate content")

// ErrNoAudio means a speech response carried no inline audio data.
var ErrNoAudio = errors.New("response contained no audio data")

// ProviderError is an error the API itself reported inside its envelope or
// via a non-2xx status.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider error: %s", e.Message)
	}
	return fmt.Sprintf("provider error: status %d", e.StatusCode)
}

// TransportError wraps a failure to reach the provider at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("request failed: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Part is one piece of request or response content.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64-encoded binary content with its MIME type.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Content is one turn of conversation content.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig steers the response format.
type GenerationConfig struct {
	ResponseMimeType   string        `json:"responseMimeType,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

// SpeechConfig selects the synthesis voice.
type SpeechConfig struct {
	VoiceConfig VoiceConfig `json:"voiceConfig"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig PrebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

// Payload is a complete generateContent request body plus the model it
// targets.
type Payload struct {
	Model            string            `json:"-"`
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Audio is synthesized speech as returned by the provider.
type Audio struct {
	// PCM is little-endian 16-bit mono sample data.
	PCM []byte
	// SampleRate in Hz, parsed from the response MIME type when present.
	SampleRate int
}

// Service is the provider surface the session depends on. The concrete
// Client talks to the real API; tests substitute a Fake.
type Service interface {
	Generate(ctx context.Context, p Payload) (string, error)
	Speak(ctx context.Context, text string) (*Audio, error)
}
