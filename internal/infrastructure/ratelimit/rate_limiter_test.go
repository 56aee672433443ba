package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter().WithPolicy("send_message", Policy{Every: time.Hour, Burst: 2})

	ok, _ := rl.Allow("u1", "send_message")
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", "send_message")
	assert.True(t, ok)

	ok, wait := rl.Allow("u1", "send_message")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	ok, _ = rl.Allow("u2", "send_message")
	assert.True(t, ok, "limits are per user")
}

func TestCleanupDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter()
	rl.idle = 0
	rl.Allow("u1", "upload")
	time.Sleep(time.Millisecond)
	rl.Cleanup()
	assert.Empty(t, rl.visitors)
}
