package crawler

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/spacemirror/internal/confluence"
	"github.com/nao1215/spacemirror/internal/graph"
	"github.com/nao1215/spacemirror/internal/render"
)

const fakeBase = "https://wiki.example.com"

// fakePage scripts one renderable page for the fake renderer.
type fakePage struct {
	ident   render.Identity
	noIdent bool
	links   []string
	tree    []render.TreeEntry
	// redirect, when set, is the URL the navigation "lands on".
	redirect string
	fail     bool
}

// fakeRenderer is a scripted render.Renderer for crawl tests.
type fakeRenderer struct {
	pages      map[string]fakePage
	currentURL string
	current    fakePage
	loads      int
}

func newFakeRenderer(pages map[string]fakePage) *fakeRenderer {
	return &fakeRenderer{pages: pages}
}

func (f *fakeRenderer) Navigate(_ context.Context, rawURL string, _ time.Duration) error {
	f.loads++
	p, ok := f.pages[rawURL]
	if !ok || p.fail {
		return fmt.Errorf("no route to %s", rawURL)
	}
	f.current = p
	f.currentURL = rawURL
	if p.redirect != "" {
		f.currentURL = p.redirect
	}
	return nil
}

func (f *fakeRenderer) CurrentURL() string { return f.currentURL }

func (f *fakeRenderer) Identity() (render.Identity, bool) {
	if f.current.noIdent {
		return render.Identity{}, false
	}
	return f.current.ident, true
}

func (f *fakeRenderer) ContentLinks() []string { return f.current.links }

func (f *fakeRenderer) ExpandNavigationTree(_ context.Context) ([]render.TreeEntry, error) {
	return f.current.tree, nil
}

func (f *fakeRenderer) Content() *html.Node { return nil }

func newTestCrawler(t *testing.T, pages map[string]fakePage) (*Crawler, *fakeRenderer) {
	t.Helper()
	space, err := confluence.NewSpace(fakeBase, "DOCS")
	if err != nil {
		t.Fatalf("failed to create space: %v", err)
	}
	fr := newFakeRenderer(pages)
	return New(fr, space), fr
}

func viewURL(id string) string {
	return fakeBase + "/pages/viewpage.action?pageId=" + id
}

// TestCrawl tests the full discovery crawl.
func TestCrawl(t *testing.T) {
	t.Parallel()

	t.Run("discovers pages via tree widget and content links", func(t *testing.T) {
		t.Parallel()

		start := fakeBase + "/display/DOCS/Home"
		pages := map[string]fakePage{
			start: {
				ident: render.Identity{ID: "1", Title: "Home"},
				tree: []render.TreeEntry{
					{ID: "1", Title: "Home", Href: start},
					{ID: "2", Title: "Setup", ParentID: "1", Href: viewURL("2")},
				},
				links: []string{viewURL("3")},
			},
			viewURL("2"): {ident: render.Identity{ID: "2", Title: "Setup", ParentID: "1"}},
			viewURL("3"): {ident: render.Identity{ID: "3", Title: "Usage", ParentID: "2"}},
		}

		c, _ := newTestCrawler(t, pages)
		g, err := c.Crawl(context.Background(), start)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if g.RootID() != "1" {
			t.Errorf("expected root '1', got %q", g.RootID())
		}
		if g.Len() != 3 {
			t.Errorf("expected 3 nodes, got %d", g.Len())
		}

		usage, ok := g.Node("3")
		if !ok {
			t.Fatal("content-discovered page missing from graph")
		}
		if usage.ParentID != "2" {
			t.Errorf("expected authoritative parent '2', got %q", usage.ParentID)
		}
	})

	t.Run("rendered parent overrides tree nesting", func(t *testing.T) {
		t.Parallel()

		start := fakeBase + "/display/DOCS/Home"
		pages := map[string]fakePage{
			start: {
				ident: render.Identity{ID: "1", Title: "Home"},
				tree: []render.TreeEntry{
					// Tree nesting claims 3 hangs under 1.
					{ID: "2", Title: "A", ParentID: "1", Href: viewURL("2")},
					{ID: "3", Title: "B", ParentID: "1", Href: viewURL("3")},
				},
			},
			viewURL("2"): {ident: render.Identity{ID: "2", Title: "A", ParentID: "1"}},
			// The page itself reports 2 as its parent.
			viewURL("3"): {ident: render.Identity{ID: "3", Title: "B", ParentID: "2"}},
		}

		c, _ := newTestCrawler(t, pages)
		g, err := c.Crawl(context.Background(), start)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		n, _ := g.Node("3")
		if n.ParentID != "2" {
			t.Errorf("expected rendered parent '2' to win, got %q", n.ParentID)
		}
	})

	t.Run("root never receives a parent from rendering", func(t *testing.T) {
		t.Parallel()

		start := fakeBase + "/display/DOCS/Home"
		pages := map[string]fakePage{
			// Rendering reports a bogus parent for the root itself.
			start: {ident: render.Identity{ID: "1", Title: "Home", ParentID: "999"}},
		}

		c, _ := newTestCrawler(t, pages)
		g, err := c.Crawl(context.Background(), start)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		root, _ := g.Node("1")
		if root.ParentID != "" {
			t.Errorf("root acquired a parent: %q", root.ParentID)
		}
		if g.RootID() != "1" {
			t.Errorf("root id changed: %q", g.RootID())
		}
	})

	t.Run("alias id reconciles into a single canonical node", func(t *testing.T) {
		t.Parallel()

		start := fakeBase + "/display/DOCS/Home"
		aliasURL := fakeBase + "/display/DOCS/Old+Name"
		canonicalURL := viewURL("101")
		pages := map[string]fakePage{
			start: {
				ident: render.Identity{ID: "1", Title: "Home"},
				tree: []render.TreeEntry{
					// The tree believes the page's id is 100.
					{ID: "100", Title: "Renamed", ParentID: "1", Href: aliasURL},
				},
			},
			// Visiting the alias URL renders canonical id 101.
			aliasURL:     {ident: render.Identity{ID: "101", Title: "Renamed", ParentID: "1"}, redirect: canonicalURL},
			canonicalURL: {ident: render.Identity{ID: "101", Title: "Renamed", ParentID: "1"}},
		}

		c, _ := newTestCrawler(t, pages)
		g, err := c.Crawl(context.Background(), start)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if _, ok := g.Node("100"); ok {
			t.Error("alias node 100 still present after reconciliation")
		}
		canonical, ok := g.Node("101")
		if !ok {
			t.Fatal("canonical node 101 missing")
		}

		hrefs := canonical.Hrefs()
		foundAlias := false
		for _, h := range hrefs {
			if h == aliasURL || h == canonicalURL {
				foundAlias = true
			}
		}
		if !foundAlias {
			t.Errorf("visited URL not recorded on canonical node: %v", hrefs)
		}
	})

	t.Run("transient render failure truncates only that branch", func(t *testing.T) {
		t.Parallel()

		start := fakeBase + "/display/DOCS/Home"
		pages := map[string]fakePage{
			start: {
				ident: render.Identity{ID: "1", Title: "Home"},
				tree: []render.TreeEntry{
					{ID: "2", Title: "Broken", ParentID: "1", Href: viewURL("2")},
					{ID: "3", Title: "Fine", ParentID: "1", Href: viewURL("3")},
				},
			},
			viewURL("2"): {fail: true},
			viewURL("3"): {ident: render.Identity{ID: "3", Title: "Fine", ParentID: "1"}},
		}

		c, _ := newTestCrawler(t, pages)
		g, err := c.Crawl(context.Background(), start)
		if err != nil {
			t.Fatalf("crawl should survive a single page failure: %v", err)
		}

		// The broken node stays in the graph (it was discovered) but its
		// branch contributed no further links; the sibling was visited.
		if _, ok := g.Node("2"); !ok {
			t.Error("failed node vanished from the graph")
		}
		n, _ := g.Node("3")
		if n.Title != "Fine" {
			t.Errorf("sibling was not visited: %+v", n)
		}
	})

	t.Run("seed identity failure is fatal", func(t *testing.T) {
		t.Parallel()

		start := fakeBase + "/display/DOCS/Home"
		pages := map[string]fakePage{
			start: {noIdent: true},
		}

		c, _ := newTestCrawler(t, pages)
		if _, err := c.Crawl(context.Background(), start); !errors.Is(err, ErrSeedIdentity) {
			t.Fatalf("expected ErrSeedIdentity, got %v", err)
		}
	})

	t.Run("each page is visited at most once", func(t *testing.T) {
		t.Parallel()

		start := fakeBase + "/display/DOCS/Home"
		// Pages 1 and 2 link to each other; the crawl must not loop.
		pages := map[string]fakePage{
			start: {
				ident: render.Identity{ID: "1", Title: "Home"},
				links: []string{viewURL("2")},
			},
			viewURL("1"): {
				ident: render.Identity{ID: "1", Title: "Home"},
				links: []string{viewURL("2")},
			},
			viewURL("2"): {
				ident: render.Identity{ID: "2", Title: "Loop", ParentID: "1"},
				links: []string{viewURL("1"), viewURL("2")},
			},
		}

		c, fr := newTestCrawler(t, pages)
		g, err := c.Crawl(context.Background(), start)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if g.Len() != 2 {
			t.Errorf("expected 2 nodes, got %d", g.Len())
		}
		// Seed + one visit per node is the ceiling; mutual links must not
		// add loads beyond that.
		if fr.loads > 3 {
			t.Errorf("expected at most 3 page loads, got %d", fr.loads)
		}
	})

	t.Run("re-crawl of an unchanged space yields an identical graph", func(t *testing.T) {
		t.Parallel()

		start := fakeBase + "/display/DOCS/Home"
		pages := map[string]fakePage{
			start: {
				ident: render.Identity{ID: "1", Title: "Home"},
				tree: []render.TreeEntry{
					{ID: "1", Title: "Home", Href: start},
					{ID: "2", Title: "Setup", ParentID: "1", Href: viewURL("2")},
				},
				links: []string{viewURL("3")},
			},
			viewURL("2"): {ident: render.Identity{ID: "2", Title: "Setup", ParentID: "1"}, links: []string{viewURL("3")}},
			viewURL("3"): {ident: render.Identity{ID: "3", Title: "Usage", ParentID: "2"}},
		}

		crawlOnce := func() *graph.Graph {
			c, _ := newTestCrawler(t, pages)
			g, err := c.Crawl(context.Background(), start)
			if err != nil {
				t.Fatalf("crawl failed: %v", err)
			}
			graph.AssignSlugs(g)
			return g
		}

		first := crawlOnce()
		second := crawlOnce()

		if !reflect.DeepEqual(first.AllIDs(), second.AllIDs()) {
			t.Fatalf("node sets differ: %v vs %v", first.AllIDs(), second.AllIDs())
		}
		if first.RootID() != second.RootID() {
			t.Errorf("root changed between crawls: %q vs %q", first.RootID(), second.RootID())
		}
		for _, id := range first.AllIDs() {
			a, _ := first.Node(id)
			b, _ := second.Node(id)
			if a.ParentID != b.ParentID {
				t.Errorf("node %s parent differs: %q vs %q", id, a.ParentID, b.ParentID)
			}
			if a.Title != b.Title {
				t.Errorf("node %s title differs: %q vs %q", id, a.Title, b.Title)
			}
			if a.Slug != b.Slug {
				t.Errorf("node %s slug differs: %q vs %q", id, a.Slug, b.Slug)
			}
			if !reflect.DeepEqual(a.Children, b.Children) {
				t.Errorf("node %s children differ: %v vs %v", id, a.Children, b.Children)
			}
		}
	})

	t.Run("page limit bounds the crawl", func(t *testing.T) {
		t.Parallel()

		start := fakeBase + "/display/DOCS/Home"
		pages := map[string]fakePage{
			start: {
				ident: render.Identity{ID: "1", Title: "Home"},
				links: []string{viewURL("2"), viewURL("3"), viewURL("4")},
			},
			viewURL("2"): {ident: render.Identity{ID: "2", ParentID: "1"}},
			viewURL("3"): {ident: render.Identity{ID: "3", ParentID: "1"}},
			viewURL("4"): {ident: render.Identity{ID: "4", ParentID: "1"}},
		}

		space, _ := confluence.NewSpace(fakeBase, "DOCS")
		fr := newFakeRenderer(pages)
		c := New(fr, space, WithMaxPages(2))

		g, err := c.Crawl(context.Background(), start)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		if g.Len() != 4 {
			// All four were discovered even though not all were visited.
			t.Errorf("expected 4 discovered nodes, got %d", g.Len())
		}
	})
}
