// Package synth acquires synthesized speech clips for the dialog engine. A
// content-addressed disk cache sits in front of a retrying upstream client:
// identical (variant, voice, text) always resolves to the same clip, at most
// one synthesis per key is in flight at a time, and aggregate upstream load
// is capped by a global semaphore shared across all simultaneous calls.
package synth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

const maxTextLen = 800

// CacheConfig tunes the synthesis cache. Zero values get defaults.
type CacheConfig struct {
	Concurrency int           // max simultaneous upstream requests, default 4
	MaxAttempts int           // attempts per synthesis before degrading, default 5
	BaseDelay   time.Duration // first backoff delay, default 500ms
	MaxDelay    time.Duration // backoff ceiling, default 8s

	// ProxyBaseURL is the live-synthesis endpoint handed out when a clip
	// cannot be produced, so the call degrades instead of failing.
	ProxyBaseURL string

	// Voices maps a variant key to the primary provider's voice id.
	Voices         map[string]string
	DefaultVoiceID string
}

// Cache is the clip acquisition pipeline. Safe for concurrent use.
type Cache struct {
	store    ClipStore
	primary  Provider
	fallback Provider // tried once on primary quota exhaustion; may be nil
	cfg      CacheConfig

	sem   *semaphore.Weighted
	group singleflight.Group
}

// NewCache wires a cache over a clip store and providers. fallback may be nil.
func NewCache(store ClipStore, primary, fallback Provider, cfg CacheConfig) *Cache {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 8 * time.Second
	}
	return &Cache{
		store:    store,
		primary:  primary,
		fallback: fallback,
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.Concurrency)),
	}
}

// EnsureClip returns a playable URL for the given line, synthesizing and
// caching it if needed. Empty (after sanitizing) text returns "". The call
// never fails: on terminal synthesis failure the returned URL points at the
// live-proxy endpoint instead.
func (c *Cache) EnsureClip(ctx context.Context, text, variant string) string {
	clipURL, err := c.ensure(ctx, text, variant)
	if err != nil {
		slog.Warn("synthesis degraded to live proxy", "variant", variant, "error", err)
		return c.proxyURL(text, variant)
	}
	return clipURL
}

// Warm pre-synthesizes lines concurrently, before a call is placed. Individual
// failures are logged and tolerated; the line will be retried live on demand.
func (c *Cache) Warm(ctx context.Context, variant string, lines ...string) {
	g, gctx := errgroup.WithContext(ctx)
	for _, line := range lines {
		line := line
		g.Go(func() error {
			if _, err := c.ensure(gctx, line, variant); err != nil {
				slog.Warn("clip warm-up failed", "variant", variant, "error", err)
			}
			return nil
		})
	}
	g.Wait()
}

// Synthesize produces audio directly, for the live-proxy endpoint. It shares
// the global concurrency bound and retry policy but bypasses the disk cache;
// the fallback provider still applies on quota exhaustion.
func (c *Cache) Synthesize(ctx context.Context, text, variant string) (*Result, error) {
	text = sanitize(text)
	if text == "" {
		return nil, errors.New("nothing to speak")
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire synthesis slot: %w", err)
	}
	defer c.sem.Release(1)

	audio, err := c.synthesizeWithRetry(ctx, text, c.voiceFor(variant))
	if err != nil {
		return nil, err
	}
	return &Result{Audio: audio, ContentType: "audio/mpeg"}, nil
}

func (c *Cache) ensure(ctx context.Context, text, variant string) (string, error) {
	text = sanitize(text)
	if text == "" {
		return "", nil
	}
	voiceID := c.voiceFor(variant)
	key := clipKey(variant, voiceID, text)

	// Cache hits short-circuit before any coordination.
	if c.store.Exists(key) {
		return c.store.PublicURL(key), nil
	}

	// Coalesce concurrent requests for the same key into one synthesis.
	v, err, _ := c.group.Do(key, func() (any, error) {
		if c.store.Exists(key) {
			return c.store.PublicURL(key), nil
		}
		return c.synthesize(ctx, key, text, voiceID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) synthesize(ctx context.Context, key, text, voiceID string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire synthesis slot: %w", err)
	}
	defer c.sem.Release(1)

	audio, err := c.synthesizeWithRetry(ctx, text, voiceID)
	if err != nil {
		c.store.Remove(key)
		return "", err
	}

	if err := c.store.Put(key, audio); err != nil {
		c.store.Remove(key)
		return "", fmt.Errorf("store clip: %w", err)
	}
	return c.store.PublicURL(key), nil
}

func (c *Cache) synthesizeWithRetry(ctx context.Context, text, voiceID string) ([]byte, error) {
	req := Request{Text: text, VoiceID: voiceID}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		result, err := c.primary.Synthesize(ctx, req)
		if err == nil {
			return result.Audio, nil
		}
		lastErr = err

		if errors.Is(err, ErrQuotaExhausted) {
			return c.synthesizeFallback(ctx, text)
		}

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			return nil, err
		}

		if attempt == c.cfg.MaxAttempts {
			break
		}
		delay := c.backoff(attempt, rl.RetryAfter)
		slog.Debug("synthesis rate limited, backing off",
			"provider", c.primary.Name(),
			"attempt", attempt,
			"delay", delay,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("synthesis retries exhausted: %w", lastErr)
}

func (c *Cache) synthesizeFallback(ctx context.Context, text string) ([]byte, error) {
	if c.fallback == nil {
		return nil, fmt.Errorf("primary: %w, no fallback provider", ErrQuotaExhausted)
	}
	slog.Warn("primary synthesis quota exhausted, trying fallback",
		"primary", c.primary.Name(),
		"fallback", c.fallback.Name(),
	)
	result, err := c.fallback.Synthesize(ctx, Request{Text: text})
	if err != nil {
		return nil, fmt.Errorf("fallback synthesis: %w", err)
	}
	return result.Audio, nil
}

// backoff returns the delay before the next attempt: the provider's
// advertised retry-after when present, otherwise exponential from BaseDelay
// capped at MaxDelay, plus up to 25% jitter.
func (c *Cache) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	delay := c.cfg.BaseDelay << (attempt - 1)
	if delay > c.cfg.MaxDelay || delay <= 0 {
		delay = c.cfg.MaxDelay
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4+1)))
}

func (c *Cache) voiceFor(variant string) string {
	if id, ok := c.cfg.Voices[variant]; ok {
		return id
	}
	return c.cfg.DefaultVoiceID
}

func (c *Cache) proxyURL(text, variant string) string {
	q := url.Values{}
	q.Set("text", sanitize(text))
	q.Set("variant", variant)
	return c.cfg.ProxyBaseURL + "?" + q.Encode()
}

func sanitize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxTextLen {
		runes = runes[:maxTextLen]
	}
	return strings.TrimSpace(string(runes))
}

func clipKey(variant, voiceID, text string) string {
	sum := sha256.Sum256([]byte(variant + "\x00" + voiceID + "\x00" + text))
	return hex.EncodeToString(sum[:])[:40]
}
