package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	zlog "nutrinode/log"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Client struct {
	// BaseURL is overridable for tests.
	BaseURL string
	apiKey  string
	client  *TracedClient
}

func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  NewTracedClient(),
	}
}

// Warm opens a connection to the provider ahead of the first request so
// the TLS handshake does not land on the user's first analysis.
func (c *Client) Warm() {
	if c.apiKey == "" {
		return
	}
	d := c.client.WarmConnection(c.BaseURL)
	zlog.Info(fmt.Sprintf("warmed provider connection, tls handshake %v", d))
}

type envelope struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, p Payload) (*envelope, error) {
	if c.apiKey == "" {
		return nil, ErrMissingKey
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, p.Model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	zlog.RequestMetrics(p.Model, zlog.RequestTimings{
		DNS:        resp.Metrics.DNS.Seconds() * 1000,
		TLS:        resp.Metrics.TLS.Seconds() * 1000,
		TTFB:       resp.Metrics.TTFB.Seconds() * 1000,
		Total:      resp.Metrics.Total.Seconds() * 1000,
		ConnReused: resp.Metrics.ConnReused,
	})

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		if resp.StatusCode != 200 {
			return nil, &ProviderError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("response parse error: %w", err)
	}
	if env.Error != nil {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: env.Error.Message}
	}
	if resp.StatusCode != 200 {
		return nil, &ProviderError{StatusCode: resp.StatusCode}
	}
	return &env, nil
}

func (c *Client) Generate(ctx context.Context, p Payload) (string, error) {
	env, err := c.post(ctx, p)
	if err != nil {
		return "", err
	}
	for _, cand := range env.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", ErrNoContent
}

func (c *Client) Speak(ctx context.Context, text string) (*Audio, error) {
	p := Payload{
		Model: ModelTTS,
		Contents: []Content{
			{Parts: []Part{{Text: text}}},
		},
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &SpeechConfig{
				VoiceConfig: VoiceConfig{
					PrebuiltVoiceConfig: PrebuiltVoiceConfig{VoiceName: VoiceName},
				},
			},
		},
	}

	env, err := c.post(ctx, p)
	if err != nil {
		return nil, err
	}
	for _, cand := range env.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("audio decode error: %w", err)
			}
			return &Audio{
				PCM:        pcm,
				SampleRate: sampleRateFromMime(part.InlineData.MimeType),
			}, nil
		}
	}
	return nil, ErrNoAudio
}

// sampleRateFromMime parses "audio/L16;codec=pcm;rate=24000" style MIME
// types. Falls back to 24000 when the rate is absent.
func sampleRateFromMime(mime string) int {
	for _, field := range strings.Split(mime, ";") {
		field = strings.TrimSpace(field)
		if v, ok := strings.CutPrefix(field, "rate="); ok {
			if rate, err := strconv.Atoi(v); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return 24000
}
