package crawler

// Observer receives crawl lifecycle notifications. All notifications
// are fire-and-forget: the engine never waits on an observer and is
// fully functional with NopObserver.
//
// Design decision: We use an observer interface rather than callback
// fields or channels because:
//  1. Implementations can carry their own state (progress bars, counters)
//  2. A no-op default keeps the engine decoupled from any UI layer
//  3. Method calls are synchronous and cheap; observers that do real
//     work are expected to hand off internally
type Observer interface {
	// OnProgress reports crawl completion as a percentage (0-100).
	// Called by the monitor on every tick.
	OnProgress(percent int)

	// OnURLDiscovered reports a page that was just added to the
	// visited set. Called at most once per URL.
	OnURLDiscovered(url string)

	// OnComplete reports the final result. Called exactly once,
	// whether the crawl finished, was canceled, or was stopped.
	OnComplete(result *Result)
}

// NopObserver is an Observer that discards all notifications.
type NopObserver struct{}

// OnProgress implements Observer.
func (NopObserver) OnProgress(int) {}

// OnURLDiscovered implements Observer.
func (NopObserver) OnURLDiscovered(string) {}

// OnComplete implements Observer.
func (NopObserver) OnComplete(*Result) {}
