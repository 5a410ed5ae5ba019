package buggyapp

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterConfig defines the login throttle.
type LimiterConfig struct {
	RPS             float64       // attempts per second per username
	Burst           int           // attempts allowed back to back
	CleanupInterval time.Duration // how often idle limiters are dropped
}

// DefaultLimiterConfig is loose enough for the browser suite and still stops a tight loop.
var DefaultLimiterConfig = LimiterConfig{
	RPS:             5,
	Burst:           50,
	CleanupInterval: 10 * time.Minute,
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// LoginLimiter throttles login attempts per username.
type LoginLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	config   LimiterConfig

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewLoginLimiter starts a limiter and its cleanup goroutine.
func NewLoginLimiter(config LimiterConfig) *LoginLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultLimiterConfig.CleanupInterval
	}
	l := &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		config:   config,
		stopCh:   make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Allow reports whether another attempt for username may proceed.
func (l *LoginLimiter) Allow(username string) bool {
	l.mu.Lock()
	entry, ok := l.limiters[username]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(l.config.RPS), l.config.Burst)}
		l.limiters[username] = entry
	}
	entry.lastUsed = time.Now()
	l.mu.Unlock()

	return entry.limiter.Allow()
}

// Cleanup drops limiters idle for longer than the cleanup interval.
func (l *LoginLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.config.CleanupInterval)
	for username, entry := range l.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(l.limiters, username)
		}
	}
}

func (l *LoginLimiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// Stop ends the cleanup goroutine and waits for it.
func (l *LoginLimiter) Stop() {
	close(l.stopCh)
	l.wg.Wait()
}

// Len returns the number of tracked usernames.
func (l *LoginLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
