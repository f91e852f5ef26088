package crawler

// Result is the immutable outcome of a crawl, snapshotted by the
// monitor at completion or cancellation.
//
// Design decision: We expose plain slices and maps rather than the
// internal sets because:
//  1. The result is a snapshot; nothing mutates it after completion
//  2. Slices serialize directly to the report formats
//  3. Callers iterate far more often than they test membership
type Result struct {
	// VisitedURLs are pages that were fetched and parsed as HTML.
	VisitedURLs []string `json:"visited_urls"`

	// DiscoveredURLs are all URLs that ever entered the frontier,
	// including ones never fetched because the budget ran out.
	DiscoveredURLs []string `json:"discovered_urls"`

	// ExternalLinks are URLs rejected by the domain scope or scheme
	// checks. They are recorded but never fetched.
	ExternalLinks []string `json:"external_links"`

	// Resources are non-HTML assets referenced by visited pages.
	Resources Resources `json:"resources"`

	// PageTitles maps visited URLs to their <title> text.
	PageTitles map[string]string `json:"page_titles"`

	// StatusCodes maps fetched URLs to the HTTP status they returned.
	// URLs classified by extension are never fetched and do not appear.
	StatusCodes map[string]int `json:"status_codes"`
}

// Resources groups discovered assets by kind.
type Resources struct {
	Images      []string `json:"images"`
	Scripts     []string `json:"scripts"`
	Stylesheets []string `json:"stylesheets"`
	Documents   []string `json:"documents"`
}

// TotalResources returns the number of resource URLs across all kinds.
func (r *Result) TotalResources() int {
	return len(r.Resources.Images) +
		len(r.Resources.Scripts) +
		len(r.Resources.Stylesheets) +
		len(r.Resources.Documents)
}
