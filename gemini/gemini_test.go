package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key")
	c.BaseURL = srv.URL
	return c
}

func TestGenerateReturnsFirstText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		var p Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("request decode: %v", err)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`))
	})

	text, err := c.Generate(context.Background(), Payload{
		Model:    ModelAnalysis,
		Contents: []Content{{Parts: []Part{{Text: "hi"}}}},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q, want hello", text)
	}
}

func TestGenerateEnvelopeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	})

	_, err := c.Generate(context.Background(), Payload{Model: ModelAnalysis})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ProviderError", err)
	}
	if pe.Message != "quota exceeded" {
		t.Errorf("message = %q", pe.Message)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := c.Generate(context.Background(), Payload{Model: ModelAnalysis})
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("error = %v, want ErrNoContent", err)
	}
}

func TestMissingKeySkipsNetwork(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	c.apiKey = ""

	_, err := c.Generate(context.Background(), Payload{Model: ModelAnalysis})
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("error = %v, want ErrMissingKey", err)
	}
	if called {
		t.Error("request reached the server despite missing key")
	}
}

func TestSpeakDecodesAudio(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("request decode: %v", err)
		}
		if p.GenerationConfig == nil || len(p.GenerationConfig.ResponseModalities) != 1 ||
			p.GenerationConfig.ResponseModalities[0] != "AUDIO" {
			t.Error("speech request missing AUDIO modality")
		}
		if p.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != VoiceName {
			t.Error("speech request missing voice name")
		}
		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{
						"inlineData": map[string]any{
							"mimeType": "audio/L16;codec=pcm;rate=24000",
							"data":     base64.StdEncoding.EncodeToString(pcm),
						},
					}},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	})

	audio, err := c.Speak(context.Background(), "verdict")
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if string(audio.PCM) != string(pcm) {
		t.Errorf("pcm = %v, want %v", audio.PCM, pcm)
	}
	if audio.SampleRate != 24000 {
		t.Errorf("sample rate = %d, want 24000", audio.SampleRate)
	}
}

func TestSpeakWithoutAudio(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"no audio here"}]}}]}`))
	})

	_, err := c.Speak(context.Background(), "verdict")
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("error = %v, want ErrNoAudio", err)
	}
}

func TestSampleRateFromMime(t *testing.T) {
	if got := sampleRateFromMime("audio/L16;codec=pcm;rate=16000"); got != 16000 {
		t.Errorf("rate = %d, want 16000", got)
	}
	if got := sampleRateFromMime("audio/L16"); got != 24000 {
		t.Errorf("default rate = %d, want 24000", got)
	}
}
