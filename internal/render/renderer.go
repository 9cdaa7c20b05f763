package render

import (
	"context"
	"time"

	"golang.org/x/net/html"
)

// Identity is the authoritative (id, title, parent) triple a rendered
// page reports about itself.
type Identity struct {
	// ID is the canonical content id.
	ID string

	// Title is the page's display name, possibly empty.
	Title string

	// ParentID is the id of the parent page, empty for the space root
	// or when the page does not expose one.
	ParentID string
}

// TreeEntry is one page harvested from the expanded navigation tree.
type TreeEntry struct {
	// ID is the page's canonical id.
	ID string

	// Title is the link text shown in the tree.
	Title string

	// ParentID is the id inferred from the tree nesting, possibly empty.
	ParentID string

	// Href is the link target.
	Href string
}

// Renderer is the capability interface the crawl orchestrator and the
// mirror materializer consume. All methods may time out; callers treat a
// timeout as a best-effort partial result, never as fatal (except for the
// seed page, where a missing identity aborts the run).
type Renderer interface {
	// Navigate loads the given URL and makes it the current page.
	// The timeout bounds the whole load.
	Navigate(ctx context.Context, rawURL string, timeout time.Duration) error

	// CurrentURL returns the URL of the current page after redirects.
	CurrentURL() string

	// Identity returns the current page's identity metadata.
	// The second return value is false when no canonical id is exposed.
	Identity() (Identity, bool)

	// ContentLinks returns the cleaned, absolute in-space links found in
	// the current page's main content region.
	ContentLinks() []string

	// ExpandNavigationTree expands the navigation tree widget as far as
	// the bounded budget allows and returns the harvested entries.
	ExpandNavigationTree(ctx context.Context) ([]TreeEntry, error)

	// Content returns the current page's DOM, or nil before the first
	// successful navigation.
	Content() *html.Node
}
