package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Policy is the token bucket for one action: Every is the refill interval, Burst the bucket size.
type Policy struct {
	Every time.Duration
	Burst int
}

var defaultPolicies = map[string]Policy{
	"send_message":  {Every: 2 * time.Second, Burst: 10},
	"upload":        {Every: 10 * time.Second, Burst: 5},
	"checkin":       {Every: 30 * time.Second, Burst: 3},
	"fetch_contact": {Every: 500 * time.Millisecond, Burst: 5},
}

var fallbackPolicy = Policy{Every: 3 * time.Second, Burst: 20}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one limiter per user and action.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	policies map[string]Policy
	idle     time.Duration
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		policies: defaultPolicies,
		idle:     time.Hour,
	}
}

// WithPolicy overrides the policy of one action. Not safe to call once the limiter is in use.
func (rl *RateLimiter) WithPolicy(action string, p Policy) *RateLimiter {
	policies := make(map[string]Policy, len(rl.policies)+1)
	for k, v := range rl.policies {
		policies[k] = v
	}
	policies[action] = p
	rl.policies = policies
	return rl
}

func (rl *RateLimiter) policy(action string) Policy {
	if p, ok := rl.policies[action]; ok {
		return p
	}
	return fallbackPolicy
}

// Allow consumes a token for userID/action. When none is left it reports how long until one is.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action
	now := time.Now()

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		p := rl.policy(action)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(p.Every), p.Burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Cleanup drops limiters that have been idle longer than the idle window.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}
