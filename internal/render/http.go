package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/spacemirror/internal/confluence"
)

// HTTPRenderer renders server-side Confluence markup over plain HTTP.
// It keeps one current page at a time, mirroring a single browser
// session. Not safe for concurrent use; the crawl is sequential.
//
// Design decision: We require an external *http.Client rather than
// building one because:
//  1. Cookie-jar setup (session auth) is the caller's concern
//  2. Consistent with how the asset fetcher receives its client
//  3. Tests can inject httptest-backed clients
type HTTPRenderer struct {
	// client performs the page loads. Must carry the session cookie jar.
	client *http.Client

	// space scopes link extraction to the configured document space.
	space *confluence.Space

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize caps how much of a response body is parsed.
	maxBodySize int64

	// doc is the parsed DOM of the current page.
	doc *html.Node

	// currentURL is the final URL of the current page after redirects.
	currentURL string
}

// HTTPRendererOption configures an HTTPRenderer.
type HTTPRendererOption func(*HTTPRenderer)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) HTTPRendererOption {
	return func(r *HTTPRenderer) {
		r.userAgent = ua
	}
}

// WithMaxBodySize caps the response body size read per page.
func WithMaxBodySize(size int64) HTTPRendererOption {
	return func(r *HTTPRenderer) {
		if size > 0 {
			r.maxBodySize = size
		}
	}
}

// NewHTTPRenderer creates a renderer for the given space using the given
// HTTP client.
func NewHTTPRenderer(client *http.Client, space *confluence.Space, opts ...HTTPRendererOption) *HTTPRenderer {
	r := &HTTPRenderer{
		client:      client,
		space:       space,
		userAgent:   "spacemirror/1.0 (+https://github.com/nao1215/spacemirror)",
		maxBodySize: 10 * 1024 * 1024, // 10MB
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Navigate fetches the URL and parses it into the current page.
// The previous page is kept current when the load fails, so a transient
// failure never leaves the renderer without a page.
func (r *HTTPRenderer) Navigate(ctx context.Context, rawURL string, timeout time.Duration) error {
	navCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(navCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("invalid page URL %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to load %q: status %d", rawURL, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, r.maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", rawURL, err)
	}

	r.doc = doc
	// resp.Request carries the final URL after redirect following; this is
	// what canonical-id reconciliation records into the node's hrefs.
	r.currentURL = resp.Request.URL.String()
	return nil
}

// CurrentURL returns the final URL of the current page.
func (r *HTTPRenderer) CurrentURL() string {
	return r.currentURL
}

// Identity reads the current page's canonical id, title, and parent id
// from the ajs-* meta tags. When no meta tag exposes an id, the current
// URL's explicit pageId parameter is the last resort.
func (r *HTTPRenderer) Identity() (Identity, bool) {
	if r.doc == nil {
		return Identity{}, false
	}

	var id string
	for _, name := range identityMetaNames {
		if v := metaContent(r.doc, name); v != "" {
			id = v
			break
		}
	}
	if id == "" {
		id = confluence.PageIDFromURL(r.currentURL)
	}
	if id == "" {
		return Identity{}, false
	}

	return Identity{
		ID:       id,
		Title:    pageTitle(r.doc),
		ParentID: metaContent(r.doc, "ajs-parent-page-id"),
	}, true
}

// ContentLinks returns the cleaned in-space links found in the current
// page's main content region. Links that clean away (foreign origin,
// restricted endpoints) are omitted; links identified only by page id
// are included even though they carry no space key.
func (r *HTTPRenderer) ContentLinks() []string {
	if r.doc == nil {
		return nil
	}
	main := MainContent(r.doc)
	if main == nil {
		return nil
	}

	seen := make(map[string]struct{})
	links := make([]string, 0)
	walk(main, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "a" {
			return true
		}
		href := Attr(n, "href")
		cleaned, ok := r.space.Clean(href)
		if !ok {
			return true
		}
		if confluence.PageIDFromURL(cleaned) == "" && !r.space.SameSpace(cleaned) {
			return true
		}
		if _, dup := seen[cleaned]; !dup {
			seen[cleaned] = struct{}{}
			links = append(links, cleaned)
		}
		return true
	})
	return links
}

// Content returns the current page's DOM.
func (r *HTTPRenderer) Content() *html.Node {
	return r.doc
}
