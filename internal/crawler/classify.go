package crawler

import (
	"net/url"
	"path"
	"strings"
)

// resourceKind identifies which resource bucket a URL belongs to.
type resourceKind int

const (
	kindImage resourceKind = iota
	kindScript
	kindStylesheet
	kindDocument
)

// binaryExtensions are path extensions that mark a URL as a binary
// resource before any fetch. Matching URLs are classified directly and
// never downloaded; fetching them would pull large bodies just to
// discard them.
var binaryExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
	".zip":  true,
	".exe":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".svg":  true,
	".webp": true,
}

// documentExtensions also drives the parser's document-anchor
// extraction.
var documentExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".ppt":  true,
	".pptx": true,
}

// isBinaryResource reports whether the URL's path extension identifies
// a binary resource that should be classified without fetching.
func isBinaryResource(rawURL string) bool {
	return binaryExtensions[pathExt(rawURL)]
}

// classifyResource buckets a resource URL by path extension first, then
// by content type. Unknown combinations land in the documents bucket
// rather than being dropped.
func classifyResource(rawURL, contentType string) resourceKind {
	ext := pathExt(rawURL)
	switch {
	case imageExtensions[ext]:
		return kindImage
	case ext == ".js":
		return kindScript
	case ext == ".css":
		return kindStylesheet
	case documentExtensions[ext]:
		return kindDocument
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "image/"):
		return kindImage
	case strings.Contains(ct, "javascript"):
		return kindScript
	case strings.Contains(ct, "css"):
		return kindStylesheet
	case strings.Contains(ct, "pdf"),
		strings.Contains(ct, "msword"),
		strings.Contains(ct, "vnd.ms-"),
		strings.Contains(ct, "vnd.openxmlformats"):
		return kindDocument
	}

	return kindDocument
}

// isHTMLContent reports whether a Content-Type header value denotes an
// HTML page worth parsing.
func isHTMLContent(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "text/html")
}

// pathExt returns the lowercased extension of the URL's path, or the
// empty string when the URL does not parse.
func pathExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}
