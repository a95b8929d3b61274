package synth

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string][]byte)}
}

func (s *memStore) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[key]
	return ok
}

func (s *memStore) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = data
	return nil
}

func (s *memStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (s *memStore) PublicURL(key string) string {
	return "https://clips.test/" + key + ".mp3"
}

// fakeProvider serves scripted responses and records call and concurrency
// stats.
type fakeProvider struct {
	mu        sync.Mutex
	responses []error // error per attempt; nil means success; exhausted list means success
	calls     atomic.Int64

	inFlight    atomic.Int64
	maxInFlight atomic.Int64

	delay time.Duration
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Synthesize(ctx context.Context, req Request) (*Result, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		max := f.maxInFlight.Load()
		if cur <= max || f.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	n := f.calls.Add(1)

	f.mu.Lock()
	var err error
	if int(n) <= len(f.responses) {
		err = f.responses[n-1]
	}
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &Result{Audio: []byte("mp3:" + req.Text), ContentType: "audio/mpeg"}, nil
}

func newTestCache(primary, fallback Provider, cfg CacheConfig) (*Cache, *memStore) {
	if cfg.ProxyBaseURL == "" {
		cfg.ProxyBaseURL = "https://host.test/voice/clip"
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = time.Millisecond
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 4 * time.Millisecond
	}
	store := newMemStore()
	return NewCache(store, primary, fallback, cfg), store
}

func TestEnsureClipEmptyText(t *testing.T) {
	p := &fakeProvider{}
	c, _ := newTestCache(p, nil, CacheConfig{})
	assert.Equal(t, "", c.EnsureClip(context.Background(), "   \t ", "warm"))
	assert.Equal(t, int64(0), p.calls.Load())
}

func TestEnsureClipCachesResult(t *testing.T) {
	p := &fakeProvider{}
	c, store := newTestCache(p, nil, CacheConfig{})

	url1 := c.EnsureClip(context.Background(), "hello there", "warm")
	url2 := c.EnsureClip(context.Background(), "hello  there ", "warm")

	assert.Equal(t, url1, url2)
	assert.True(t, strings.HasPrefix(url1, "https://clips.test/"))
	assert.Equal(t, int64(1), p.calls.Load(), "second call must be a cache hit")
	assert.Len(t, store.m, 1)
}

func TestEnsureClipDistinctVariants(t *testing.T) {
	p := &fakeProvider{}
	c, _ := newTestCache(p, nil, CacheConfig{
		Voices: map[string]string{"warm": "voice-a", "bold": "voice-b"},
	})

	a := c.EnsureClip(context.Background(), "hello", "warm")
	b := c.EnsureClip(context.Background(), "hello", "bold")
	assert.NotEqual(t, a, b)
	assert.Equal(t, int64(2), p.calls.Load())
}

func TestEnsureClipCoalescing(t *testing.T) {
	p := &fakeProvider{delay: 20 * time.Millisecond}
	c, _ := newTestCache(p, nil, CacheConfig{})

	var wg sync.WaitGroup
	urls := make([]string, 8)
	for i := range urls {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			urls[i] = c.EnsureClip(context.Background(), "same line", "warm")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), p.calls.Load(), "concurrent identical requests must share one synthesis")
	for _, u := range urls {
		assert.Equal(t, urls[0], u)
	}
}

func TestEnsureClipConcurrencyBound(t *testing.T) {
	p := &fakeProvider{delay: 10 * time.Millisecond}
	c, _ := newTestCache(p, nil, CacheConfig{Concurrency: 2})

	var wg sync.WaitGroup
	lines := []string{"one", "two", "three", "four", "five", "six", "seven", "eight"}
	for _, line := range lines {
		line := line
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.EnsureClip(context.Background(), line, "warm")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(len(lines)), p.calls.Load())
	assert.LessOrEqual(t, p.maxInFlight.Load(), int64(2))
}

func TestEnsureClipRetriesThenSucceeds(t *testing.T) {
	p := &fakeProvider{responses: []error{
		&RateLimitError{},
		&RateLimitError{RetryAfter: time.Millisecond},
		nil,
	}}
	c, _ := newTestCache(p, nil, CacheConfig{MaxAttempts: 3})

	url := c.EnsureClip(context.Background(), "retry me", "warm")
	assert.True(t, strings.HasPrefix(url, "https://clips.test/"))
	assert.Equal(t, int64(3), p.calls.Load())
}

func TestEnsureClipRetriesExhaustedDegrades(t *testing.T) {
	p := &fakeProvider{responses: []error{
		&RateLimitError{}, &RateLimitError{}, &RateLimitError{},
	}}
	c, store := newTestCache(p, nil, CacheConfig{MaxAttempts: 3})

	url := c.EnsureClip(context.Background(), "always limited", "warm")
	assert.True(t, strings.HasPrefix(url, "https://host.test/voice/clip?"))
	assert.Contains(t, url, "variant=warm")
	assert.Equal(t, int64(3), p.calls.Load())
	assert.Empty(t, store.m, "no partial entry may remain")
}

func TestEnsureClipQuotaFallsBack(t *testing.T) {
	p := &fakeProvider{responses: []error{ErrQuotaExhausted}}
	fb := &fakeProvider{}
	c, _ := newTestCache(p, fb, CacheConfig{MaxAttempts: 3})

	url := c.EnsureClip(context.Background(), "over quota", "warm")
	assert.True(t, strings.HasPrefix(url, "https://clips.test/"))
	assert.Equal(t, int64(1), p.calls.Load(), "quota exhaustion must not be retried on primary")
	assert.Equal(t, int64(1), fb.calls.Load())
}

func TestEnsureClipQuotaWithoutFallbackDegrades(t *testing.T) {
	p := &fakeProvider{responses: []error{ErrQuotaExhausted}}
	c, _ := newTestCache(p, nil, CacheConfig{MaxAttempts: 3})

	url := c.EnsureClip(context.Background(), "over quota", "warm")
	assert.True(t, strings.HasPrefix(url, "https://host.test/voice/clip?"))
}

func TestWarmSynthesizesAllLines(t *testing.T) {
	p := &fakeProvider{}
	c, store := newTestCache(p, nil, CacheConfig{})

	c.Warm(context.Background(), "warm", "line one", "line two", "", "line three")

	require.Len(t, store.m, 3)
	assert.Equal(t, int64(3), p.calls.Load())
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a b c", sanitize("  a \n b\t c "))
	assert.Equal(t, "", sanitize(" \n\t "))
	long := strings.Repeat("x", 2000)
	assert.Len(t, sanitize(long), maxTextLen)
}
