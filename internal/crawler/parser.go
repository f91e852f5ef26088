package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts the crawlable surface of an HTML page: its title,
// anchor links, and resource references.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles the malformed HTML real sites serve
//  2. One DOM walk collects links and resources in a single pass
//  3. Attribute handling (entities, quoting) is already correct
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving
	// relative references.
	baseURL *url.URL
}

// ParseResult contains everything extracted from one HTML page.
type ParseResult struct {
	// Title is the text of the first <title> element, trimmed.
	Title string

	// Anchors are crawl candidates from <a href>: resolved to absolute,
	// fragment stripped. javascript:, mailto:, tel:, data: and
	// fragment-only references are skipped.
	Anchors []string

	// Images are resolved <img src> targets.
	Images []string

	// Scripts are resolved <script src> targets.
	Scripts []string

	// Stylesheets are resolved <link rel="stylesheet" href> targets.
	Stylesheets []string

	// Documents are anchors whose path carries a document extension
	// (.pdf, .doc, .docx, ...). These also appear in Anchors; a
	// document link is both a resource and a frontier candidate.
	Documents []string
}

// NewParser creates a parser for a page at baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse walks the HTML document once and extracts title, anchors, and
// resource references. The underlying tokenizer is error-tolerant, so
// malformed markup yields partial results rather than failure.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Anchors:     make([]string, 0),
		Images:      make([]string, 0),
		Scripts:     make([]string, 0),
		Stylesheets: make([]string, 0),
		Documents:   make([]string, 0),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			p.processElement(n, result)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// processElement handles a single HTML element node.
func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "title":
		// First title wins
		if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		if href := getAttr(n, "href"); href != "" {
			resolved := p.resolveAnchor(href)
			if resolved == "" {
				return
			}
			result.Anchors = append(result.Anchors, resolved)
			if documentExtensions[pathExt(resolved)] {
				result.Documents = append(result.Documents, resolved)
			}
		}

	case "img":
		if src := getAttr(n, "src"); src != "" {
			if resolved := p.resolveResource(src); resolved != "" {
				result.Images = append(result.Images, resolved)
			}
		}

	case "script":
		if src := getAttr(n, "src"); src != "" {
			if resolved := p.resolveResource(src); resolved != "" {
				result.Scripts = append(result.Scripts, resolved)
			}
		}

	case "link":
		rel := getAttr(n, "rel")
		if !strings.Contains(strings.ToLower(rel), "stylesheet") {
			return
		}
		if href := getAttr(n, "href"); href != "" {
			if resolved := p.resolveResource(href); resolved != "" {
				result.Stylesheets = append(result.Stylesheets, resolved)
			}
		}
	}
}

// resolveAnchor resolves an anchor href to an absolute URL with the
// fragment stripped. Non-navigable references return the empty string.
func (p *Parser) resolveAnchor(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := p.baseURL.ResolveReference(u)
	resolved.Fragment = ""
	return resolved.String()
}

// resolveResource resolves a resource reference (src or stylesheet
// href) to an absolute URL. Inline data: URIs are not resources with an
// address and are skipped.
func (p *Parser) resolveResource(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" ||
		strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "javascript:") {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(u).String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
