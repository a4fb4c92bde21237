package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToRate(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("10.0.0.1"), "request %d should pass", i+1)
	}
	assert.False(t, rl.allow("10.0.0.1"), "request over the rate should be rejected")
}

func TestRateLimiterTracksIPsIndependently(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "a different client keeps its own bucket")
}

func TestRateLimiterRefillsAfterInterval(t *testing.T) {
	rl := NewRateLimiter(2, 10*time.Millisecond)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, rl.allow("10.0.0.1"), "bucket should refill after the interval")
}
