package synth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Request holds the parameters for one synthesis call.
type Request struct {
	Text    string
	VoiceID string
}

// Result holds the synthesized audio and its content type.
type Result struct {
	Audio       []byte
	ContentType string
}

// Provider is the interface for speech synthesis backends.
type Provider interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
	Name() string
}

// ErrQuotaExhausted indicates the provider's quota is spent; retrying will not
// help, but a secondary provider may still succeed.
var ErrQuotaExhausted = errors.New("synthesis quota exhausted")

// RateLimitError indicates the provider rejected the request with a rate
// limit. RetryAfter carries the provider's advertised delay when present,
// zero otherwise.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("synthesis rate limited (retry after %s)", e.RetryAfter)
	}
	return "synthesis rate limited"
}
