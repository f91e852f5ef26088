package crawler

import (
	"sync"
	"time"
)

// entry is one unit of crawl work: a URL and the depth it was
// discovered at. The seed enters at depth 0; a link found on a page at
// depth d enters at d+1.
type entry struct {
	url   string
	depth int
}

// frontier is the queue of not-yet-fetched entries. It deduplicates on
// push (a URL enters the frontier at most once, ever) and tracks how
// many popped entries are still being processed, which is what the
// monitor and the last-worker-standing exit rule key off.
//
// Design decision: A mutex-guarded slice with a broadcast wake channel
// rather than a buffered Go channel because:
//  1. Push must dedup against everything ever discovered, which needs
//     the set and the queue under one lock anyway
//  2. Pop needs a timeout without consuming from the queue
//  3. The active count must change atomically with a successful pop,
//     or the monitor could observe an empty-and-idle instant while an
//     entry is in a worker's hands
type frontier struct {
	mu     sync.Mutex
	queue  []entry
	seen   map[string]struct{}
	active int
	wake   chan struct{}
	closed bool
}

func newFrontier() *frontier {
	return &frontier{
		seen: make(map[string]struct{}),
		wake: make(chan struct{}),
	}
}

// push enqueues a URL at the given depth. It is a no-op returning false
// when the URL has been discovered before or the frontier is closed.
func (f *frontier) push(url string, depth int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	if _, ok := f.seen[url]; ok {
		return false
	}

	f.seen[url] = struct{}{}
	f.queue = append(f.queue, entry{url: url, depth: depth})

	// Wake every waiting popper. Re-arm for the next push.
	close(f.wake)
	f.wake = make(chan struct{})
	return true
}

// pop dequeues the oldest entry, blocking up to timeout when the queue
// is empty. On success the caller counts as active until it calls done.
// Returns false on timeout or when the frontier is closed.
func (f *frontier) pop(timeout time.Duration) (entry, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		f.mu.Lock()
		if len(f.queue) > 0 {
			e := f.queue[0]
			f.queue = f.queue[1:]
			f.active++
			f.mu.Unlock()
			return e, true
		}
		if f.closed {
			f.mu.Unlock()
			return entry{}, false
		}
		wake := f.wake
		f.mu.Unlock()

		select {
		case <-wake:
		case <-deadline.C:
			return entry{}, false
		}
	}
}

// done marks a popped entry as fully processed.
func (f *frontier) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
}

// activeCount reports how many popped entries are still in workers'
// hands.
func (f *frontier) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// idle reports whether the queue is empty and no entry is being
// processed. Both halves are read under one lock; the monitor's
// completion rule depends on them being a single observation.
func (f *frontier) idle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) == 0 && f.active == 0
}

func (f *frontier) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// seenCount reports how many unique URLs have ever been pushed.
func (f *frontier) seenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// seenURLs returns every URL that ever entered the frontier.
func (f *frontier) seenURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	urls := make([]string, 0, len(f.seen))
	for u := range f.seen {
		urls = append(urls, u)
	}
	return urls
}

// close wakes all blocked poppers and refuses further pushes. Idempotent.
func (f *frontier) close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	close(f.wake)
}
