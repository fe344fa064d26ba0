package ratelimit

import (
	"sync"
	"time"
)

// Buckets idle longer than this are pruned; remote addresses churn, so the
// map would otherwise grow with every client ever seen.
const staleAfter = 10 * time.Minute

type bucket struct {
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
}

// Limiter is a per-key token bucket. Keys combine remote address and
// endpoint so one chatty client cannot starve another.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	lastGC  time.Time
}

func New() *Limiter {
	return &Limiter{buckets: make(map[string]*bucket), lastGC: time.Now()}
}

// Allow consumes one token for key, creating the bucket full on first sight.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > staleAfter {
		l.prune(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, perSec: refillPerSec, last: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.perSec
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *Limiter) prune(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.last) > staleAfter {
			delete(l.buckets, k)
		}
	}
	l.lastGC = now
}
