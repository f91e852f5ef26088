package crawler

import (
	"sort"
	"sync"
)

// state is the shared mutable record of one crawl. Workers write to it
// through synchronized accessors and the monitor reads aggregate counts
// from it; nothing else touches it. It is created fresh per crawl and
// discarded after the final snapshot.
type state struct {
	mu sync.Mutex

	// maxURLs caps the visited set. markVisited refuses additions
	// beyond it so the budget holds exactly.
	maxURLs int

	visited  map[string]struct{}
	inFlight map[string]struct{}
	external map[string]struct{}

	images      map[string]struct{}
	scripts     map[string]struct{}
	stylesheets map[string]struct{}
	documents   map[string]struct{}

	pageTitles  map[string]string
	statusCodes map[string]int
}

func newState(maxURLs int) *state {
	return &state{
		maxURLs:     maxURLs,
		visited:     make(map[string]struct{}),
		inFlight:    make(map[string]struct{}),
		external:    make(map[string]struct{}),
		images:      make(map[string]struct{}),
		scripts:     make(map[string]struct{}),
		stylesheets: make(map[string]struct{}),
		documents:   make(map[string]struct{}),
		pageTitles:  make(map[string]string),
		statusCodes: make(map[string]int),
	}
}

// claim reserves a URL for the calling worker. It returns false when
// the URL was already visited or another worker holds it, so each URL
// is processed by at most one worker ever.
func (st *state) claim(url string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.visited[url]; ok {
		return false
	}
	if _, ok := st.inFlight[url]; ok {
		return false
	}
	st.inFlight[url] = struct{}{}
	return true
}

// release drops a worker's claim. Called whether processing succeeded
// or failed.
func (st *state) release(url string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.inFlight, url)
}

// markVisited adds a URL to the visited set. It returns false when the
// URL is already present or the budget is exhausted; callers must not
// record titles or emit discovery notifications in that case.
func (st *state) markVisited(url string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.visited[url]; ok {
		return false
	}
	if len(st.visited) >= st.maxURLs {
		return false
	}
	st.visited[url] = struct{}{}
	return true
}

func (st *state) visitedCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.visited)
}

func (st *state) setTitle(url, title string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.pageTitles[url] = title
}

func (st *state) setStatus(url string, code int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.statusCodes[url] = code
}

func (st *state) addExternal(url string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.external[url] = struct{}{}
}

func (st *state) addResource(kind resourceKind, url string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch kind {
	case kindImage:
		st.images[url] = struct{}{}
	case kindScript:
		st.scripts[url] = struct{}{}
	case kindStylesheet:
		st.stylesheets[url] = struct{}{}
	default:
		st.documents[url] = struct{}{}
	}
}

// snapshot converts the state into an immutable Result. The discovered
// list comes from the frontier, which owns deduplication.
func (st *state) snapshot(discovered []string) *Result {
	st.mu.Lock()
	defer st.mu.Unlock()

	titles := make(map[string]string, len(st.pageTitles))
	for k, v := range st.pageTitles {
		titles[k] = v
	}
	codes := make(map[string]int, len(st.statusCodes))
	for k, v := range st.statusCodes {
		codes[k] = v
	}

	sorted := append([]string(nil), discovered...)
	sort.Strings(sorted)

	return &Result{
		VisitedURLs:    sortedKeys(st.visited),
		DiscoveredURLs: sorted,
		ExternalLinks:  sortedKeys(st.external),
		Resources: Resources{
			Images:      sortedKeys(st.images),
			Scripts:     sortedKeys(st.scripts),
			Stylesheets: sortedKeys(st.stylesheets),
			Documents:   sortedKeys(st.documents),
		},
		PageTitles:  titles,
		StatusCodes: codes,
	}
}

// sortedKeys returns the set's members as a sorted slice. Sets have no
// order; sorting makes results stable for serialization and tests.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
