package middleware

import (
	"strings"
	"sync"
	"time"
)

const (
	sendMaxPerWindow  = 3
	sendWindow        = 10 * time.Minute
	sendCleanupPeriod = 30 * time.Minute
)

type sendAttempt struct {
	count       int
	windowStart time.Time
}

// SendLinkLimiter caps how often a single email address can be sent a
// portal link, independent of which IPs ask. In-memory on purpose: the
// redis limiter already handles the per-IP case, and losing this state
// on restart only resets a courtesy cap.
type SendLinkLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*sendAttempt
	lastCleanup time.Time
}

func NewSendLinkLimiter() *SendLinkLimiter {
	return &SendLinkLimiter{
		attempts:    make(map[string]*sendAttempt),
		lastCleanup: time.Now(),
	}
}

func (l *SendLinkLimiter) cleanup() {
	now := time.Now()
	if now.Sub(l.lastCleanup) < sendCleanupPeriod {
		return
	}
	l.lastCleanup = now

	for email, attempt := range l.attempts {
		if now.Sub(attempt.windowStart) > sendWindow {
			delete(l.attempts, email)
		}
	}
}

// Allow reports whether another link may be mailed to email now.
func (l *SendLinkLimiter) Allow(email string) bool {
	key := strings.ToLower(strings.TrimSpace(email))

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanup()

	now := time.Now()
	attempt, exists := l.attempts[key]

	if !exists || now.Sub(attempt.windowStart) > sendWindow {
		l.attempts[key] = &sendAttempt{count: 1, windowStart: now}
		return true
	}

	if attempt.count >= sendMaxPerWindow {
		return false
	}

	attempt.count++
	return true
}
