package ratelimit

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	start := time.Now()
	b := newTokenBucket(3, 1.0, start)

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := b.take(start)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, _, reset := b.take(start)
	assert.False(t, allowed)
	assert.Equal(t, start.Add(3*time.Second), reset)

	allowed, _, _ = b.take(start.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token refilled after a second")
	allowed, _, _ = b.take(start.Add(1100 * time.Millisecond))
	assert.False(t, allowed)
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/jobs", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/jobs", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)

	// another client has its own bucket
	allowed, _ = l.Allow("10.0.0.2", "/jobs", "GET")
	assert.True(t, allowed)
}

func TestLimiter_RefillOverTime(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})

	for i := 0; i < 60; i++ {
		allowed, _ := l.Allow("c", "/x", "GET")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("c", "/x", "GET")
	require.False(t, allowed)

	clock.Advance(time.Second)
	allowed, _ = l.Allow("c", "/x", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})

	for i := 0; i < 20; i++ {
		allowed, info := l.Allow("127.0.0.1", "/jobs", "GET")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}

	allowed, _ := l.Allow("192.168.1.1", "/jobs", "GET")
	assert.False(t, allowed)

	disabled, _ := newTestLimiter(t, &Config{Enabled: false})
	for i := 0; i < 20; i++ {
		allowed, _ := disabled.Allow("1.2.3.4", "/jobs", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_EndpointRules(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/jobs/", Method: "POST", Limit: 5, Window: time.Hour, Burst: 2},
		},
	})

	// both upload routes of any job draw from one bucket
	allowed, info := l.Allow("c", "/jobs/1/candidates", "POST")
	require.True(t, allowed)
	assert.Equal(t, 5, info.Limit)
	allowed, _ = l.Allow("c", "/jobs/2/candidates/stream", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/jobs/3/invitations", "POST")
	assert.False(t, allowed, "burst of 2 exhausted")

	allowed, info = l.Allow("c", "/jobs/1/candidates", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})

	for i := 0; i < 10; i++ {
		for _, path := range []string{"/health", "/metrics"} {
			allowed, _ := l.Allow("c", path, "GET")
			require.True(t, allowed, path)
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})

	var wg sync.WaitGroup
	var allowedCount atomic.Int64
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Allow("c", "/jobs", "GET"); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), "/jobs", "GET")
	}
	require.Equal(t, 10, l.size())

	clock.Advance(2 * time.Hour)
	for i := 0; i < 3; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), "/jobs", "GET")
	}
	l.cleanup(clock.Now().Add(-idleBucketTTL))

	assert.Equal(t, 3, l.size())
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	assert.NotPanics(t, l.Stop)

	allowed, info := l.Allow("c", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/jobs", Method: "POST", Limit: 1},
		{Path: "/jobs/", Method: "POST", Limit: 2},
		{Path: "/jobs/special/", Method: "POST", Limit: 3},
	}

	assert.Equal(t, 1, MatchEndpoint("/jobs", "POST", configs).Limit)
	assert.Equal(t, 2, MatchEndpoint("/jobs/42/candidates", "POST", configs).Limit)
	assert.Equal(t, 3, MatchEndpoint("/jobs/special/x", "POST", configs).Limit)
	assert.Nil(t, MatchEndpoint("/jobs/42", "GET", configs))
	assert.Equal(t, 0, MatchEndpoint("/health", "GET", configs).Limit)
}

func TestLoadConfig(t *testing.T) {
	for _, key := range []string{"ENABLED", "DEFAULT_LIMIT", "DEFAULT_WINDOW", "CLEANUP_INTERVAL", "WHITELIST", "BLACKLIST"} {
		t.Setenv("RATE_LIMIT_"+key, "")
		require.NoError(t, os.Unsetenv("RATE_LIMIT_"+key))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1000, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)

	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "abc")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}
