package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

// KeyedLimiter holds one token-bucket limiter per key (typically a client
// IP). It is safe for concurrent use. Keys idle for limiterIdleTTL are
// dropped by a background sweeper until Close is called.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedEntry
	rate     rate.Limit
	burst    int
	done     chan struct{}
	once     sync.Once
}

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows burst events per key immediately, refilling at
// perSecond events per second. A zero rate never refills.
func NewKeyedLimiter(perSecond float64, burst int) *KeyedLimiter {
	kl := &KeyedLimiter{
		limiters: make(map[string]*keyedEntry),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		done:     make(chan struct{}),
	}
	go kl.sweep()
	return kl
}

// Allow reports whether key may proceed now, consuming one token if so.
func (kl *KeyedLimiter) Allow(key string) bool {
	kl.mu.Lock()
	e, ok := kl.limiters[key]
	if !ok {
		e = &keyedEntry{limiter: rate.NewLimiter(kl.rate, kl.burst)}
		kl.limiters[key] = e
	}
	e.lastSeen = time.Now()
	kl.mu.Unlock()

	return e.limiter.Allow()
}

// Close stops the background sweeper.
func (kl *KeyedLimiter) Close() {
	kl.once.Do(func() { close(kl.done) })
}

func (kl *KeyedLimiter) sweep() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-kl.done:
			return
		case now := <-ticker.C:
			kl.evictIdle(now.Add(-limiterIdleTTL))
		}
	}
}

func (kl *KeyedLimiter) evictIdle(cutoff time.Time) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	for key, e := range kl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(kl.limiters, key)
		}
	}
}
