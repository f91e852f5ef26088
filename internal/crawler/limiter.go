package crawler

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// originLimiter enforces a minimum interval between requests to the
// same origin (scheme + host, including any explicit port). Workers
// fetching different origins never delay each other; this is the
// politeness mechanism for any single target host.
//
// Design decision: One rate.Limiter per origin in a mutex-guarded map
// rather than hand-rolled last-request timestamps because:
//  1. rate.Limiter's Wait is context-aware, so cancellation interrupts
//     a politeness sleep immediately
//  2. Burst 1 with rate.Every(interval) is exactly the
//     one-request-per-interval contract
//  3. The map lock is held only for lookup, never across the wait
type originLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	origins  map[string]*rate.Limiter
}

func newOriginLimiter(interval time.Duration) *originLimiter {
	return &originLimiter{
		interval: interval,
		origins:  make(map[string]*rate.Limiter),
	}
}

// wait blocks until the origin of rawURL may be contacted again, or the
// context is canceled. A zero or negative interval disables limiting.
func (l *originLimiter) wait(ctx context.Context, rawURL string) error {
	if l.interval <= 0 {
		return nil
	}
	return l.limiterFor(originOf(rawURL)).Wait(ctx)
}

func (l *originLimiter) limiterFor(origin string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.origins[origin]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.interval), 1)
		l.origins[origin] = lim
	}
	return lim
}

// originOf returns the rate-limiting key for a URL: scheme plus
// lowercased host and port as written. No default-port folding is done;
// http://a.test and http://a.test:80 count as distinct origins. Sites
// that link to themselves with an explicit default port are rare enough
// not to special-case.
func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Scheme + "://" + strings.ToLower(u.Host)
}
