package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ElevenLabsConfig holds configuration for the ElevenLabs synthesis backend.
type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.elevenlabs.io/v1"
	ModelID string // default: "eleven_turbo_v2_5"
}

// ElevenLabs synthesizes speech using the ElevenLabs text-to-speech API.
type ElevenLabs struct {
	cfg        ElevenLabsConfig
	httpClient *http.Client
}

// NewElevenLabs creates an ElevenLabs provider with sensible defaults applied.
func NewElevenLabs(cfg ElevenLabsConfig) *ElevenLabs {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io/v1"
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_turbo_v2_5"
	}
	return &ElevenLabs{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

// Synthesize converts text to MP3 audio. A 429 response maps to
// *RateLimitError (with the Retry-After hint when the API sends one) and a
// quota_exceeded detail status maps to ErrQuotaExhausted so the cache can
// branch on them.
func (e *ElevenLabs) Synthesize(ctx context.Context, req Request) (*Result, error) {
	body := map[string]any{
		"text":     req.Text,
		"model_id": e.cfg.ModelID,
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.cfg.BaseURL, req.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", e.cfg.APIKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: retryAfter(resp)}
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isQuotaExceeded(respBody) {
			return nil, fmt.Errorf("elevenlabs: %w", ErrQuotaExhausted)
		}
		return nil, fmt.Errorf("synthesis failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	return &Result{
		Audio:       audio,
		ContentType: "audio/mpeg",
	}, nil
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// isQuotaExceeded matches the API's machine-readable error detail, e.g.
// {"detail":{"status":"quota_exceeded","message":"..."}}.
func isQuotaExceeded(body []byte) bool {
	var payload struct {
		Detail struct {
			Status string `json:"status"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.Contains(string(body), "quota_exceeded")
	}
	return payload.Detail.Status == "quota_exceeded"
}
