package websocket

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleExpiry      = 10 * time.Minute
)

type limitReason string

const (
	limitReasonPerIP limitReason = "per_ip_limit"
	limitReasonRate  limitReason = "rate_limit"
)

type rateEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// connectionLimits caps concurrent connections and the connect rate per client
// IP. The global cap is the session registry's job. A zero maxPerIP or rate
// disables the respective check.
type connectionLimits struct {
	clock    clockwork.Clock
	maxPerIP int
	rate     rate.Limit
	burst    int

	mu        sync.Mutex
	open      map[string]int
	limiters  map[string]*rateEntry
	cleanupAt time.Time
}

func newConnectionLimits(clock clockwork.Clock, maxPerIP int, connectsPerSecond float64, burst int) *connectionLimits {
	return &connectionLimits{
		clock:     clock,
		maxPerIP:  maxPerIP,
		rate:      rate.Limit(connectsPerSecond),
		burst:     burst,
		open:      make(map[string]int),
		limiters:  make(map[string]*rateEntry),
		cleanupAt: clock.Now().Add(limiterCleanupInterval),
	}
}

// acquire reserves a connection slot for ip. The rate check runs first, so a
// refused slot still spends a token.
func (l *connectionLimits) acquire(ip string) (bool, limitReason) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.After(l.cleanupAt) {
		l.cleanup(now)
		l.cleanupAt = now.Add(limiterCleanupInterval)
	}

	if l.rate > 0 {
		entry, ok := l.limiters[ip]
		if !ok {
			entry = &rateEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
			l.limiters[ip] = entry
		}
		entry.lastSeen = now
		if !entry.limiter.AllowN(now, 1) {
			return false, limitReasonRate
		}
	}

	if l.maxPerIP > 0 && l.open[ip] >= l.maxPerIP {
		return false, limitReasonPerIP
	}
	l.open[ip]++
	return true, ""
}

func (l *connectionLimits) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := l.open[ip]; n > 1 {
		l.open[ip] = n - 1
	} else {
		delete(l.open, ip)
	}
}

func (l *connectionLimits) count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open[ip]
}

// cleanup drops rate limiters idle for longer than limiterIdleExpiry. Callers hold mu.
func (l *connectionLimits) cleanup(now time.Time) {
	cutoff := now.Add(-limiterIdleExpiry)
	for ip, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
