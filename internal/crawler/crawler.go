package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/spacemirror/internal/confluence"
	"github.com/nao1215/spacemirror/internal/graph"
	"github.com/nao1215/spacemirror/internal/render"
)

// Crawler performs the breadth-first discovery crawl over one space.
// It owns the work queue and the visited set; the graph it mutates is
// returned to the caller once the queue drains.
type Crawler struct {
	// renderer is the page-rendering collaborator.
	renderer render.Renderer

	// space scopes discovery to the configured document space.
	space *confluence.Space

	// navTimeout bounds each page load.
	navTimeout time.Duration

	// maxPages limits the total number of pages visited.
	// This prevents runaway crawling on unexpectedly large spaces.
	maxPages int

	// logger is used for structured crawl logging.
	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithMaxPages limits the number of pages visited.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithNavigateTimeout bounds each page load.
func WithNavigateTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		if d > 0 {
			c.navTimeout = d
		}
	}
}

// New creates a Crawler for the given space driving the given renderer.
func New(renderer render.Renderer, space *confluence.Space, opts ...Option) *Crawler {
	c := &Crawler{
		renderer:   renderer,
		space:      space,
		navTimeout: 45 * time.Second,
		maxPages:   1000,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Crawl builds the identity graph starting from startURL.
//
// The returned graph has a registered root and a consistent, acyclic
// parent/child structure, but no slugs yet; the caller runs
// graph.AssignSlugs over it once crawling terminates.
func (c *Crawler) Crawl(ctx context.Context, startURL string) (*graph.Graph, error) {
	g := graph.New(c.space.Key())

	rootID, err := c.seed(ctx, g, startURL)
	if err != nil {
		return nil, err
	}

	c.harvestTree(ctx, g, rootID)

	if err := c.visitAll(ctx, g, rootID); err != nil {
		return g, err
	}
	return g, nil
}

// seed resolves the start page's identity and registers it as root.
// Identity failure here is fatal: there is no space without a root.
func (c *Crawler) seed(ctx context.Context, g *graph.Graph, startURL string) (string, error) {
	if err := c.renderer.Navigate(ctx, startURL, c.navTimeout); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSeedIdentity, startURL, err)
	}
	ident, ok := c.renderer.Identity()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSeedIdentity, startURL)
	}

	root := g.GetOrCreate(ident.ID)
	root.AddHref(c.renderer.CurrentURL())
	root.SetTitle(ident.Title)
	if err := g.SetParent(ident.ID, ""); err != nil {
		return "", err
	}

	c.logger.Info("seeded space graph",
		"space", c.space.Key(),
		"rootID", ident.ID,
		"title", ident.Title,
	)
	return ident.ID, nil
}

// harvestTree expands the navigation tree widget on the current (start)
// page and merges the harvested entries into the graph. Tree nesting is
// weaker evidence than rendered identity: titles fill only when empty and
// the root never receives a parent from it.
func (c *Crawler) harvestTree(ctx context.Context, g *graph.Graph, rootID string) {
	entries, err := c.renderer.ExpandNavigationTree(ctx)
	if err != nil {
		c.logger.Warn("navigation tree expansion incomplete", "error", err)
	}

	for _, e := range entries {
		n := g.GetOrCreate(e.ID)
		n.AddHref(e.Href)
		n.SetTitle(e.Title)

		if e.ID == rootID {
			continue
		}
		if e.ParentID == "" {
			continue
		}
		if err := g.SetParent(e.ID, e.ParentID); err != nil {
			c.logger.Warn("rejected tree parent assignment",
				"pageID", e.ID,
				"parentID", e.ParentID,
				"error", err,
			)
		}
	}

	c.logger.Info("harvested navigation tree", "entries", len(entries), "nodes", g.Len())
}

// visitAll runs the breadth-first visit loop. Every id is visited at most
// once; enqueueing is guarded by "not visited and not already queued", so
// the loop terminates after at most one visit per discovered node.
func (c *Crawler) visitAll(ctx context.Context, g *graph.Graph, rootID string) error {
	// Seed with the root first, then every node the tree harvest already
	// discovered, so each gets visited to confirm its identity and parent.
	queue := []string{rootID}
	queued := map[string]bool{rootID: true}
	for _, id := range g.AllIDs() {
		if !queued[id] {
			queue = append(queue, id)
			queued[id] = true
		}
	}
	visited := make(map[string]bool)
	pages := 0

	enqueue := func(id string) {
		if !visited[id] && !queued[id] {
			queue = append(queue, id)
			queued[id] = true
		}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pages >= c.maxPages {
			c.logger.Warn("page limit reached, stopping discovery", "maxPages", c.maxPages)
			return nil
		}

		cur := queue[0]
		queue = queue[1:]
		delete(queued, cur)

		if visited[cur] {
			continue
		}
		visited[cur] = true
		pages++

		node := g.GetOrCreate(cur)
		href := node.PrimaryHref()
		if href == "" {
			href = c.space.ViewPageURL(cur)
		}

		if err := c.renderer.Navigate(ctx, href, c.navTimeout); err != nil {
			// Transient render failure: this branch of discovery is
			// truncated, the crawl continues.
			c.logger.Warn("failed to render page", "pageID", cur, "url", href, "error", err)
			continue
		}

		ident, ok := c.renderer.Identity()
		if ok && ident.ID != cur {
			// The URL redirected to a different canonical page; fold the
			// queued node into the canonical one and operate on that for
			// the rest of this iteration.
			c.logger.Info("reconciled alias id", "queuedID", cur, "canonicalID", ident.ID)
			node = g.Merge(cur, ident.ID)
			cur = ident.ID
			visited[cur] = true
		}

		node.AddHref(c.renderer.CurrentURL())
		if ok {
			node.SetTitle(ident.Title)
			c.applyParent(g, cur, ident.ParentID)
		} else {
			c.logger.Warn("page exposes no identity metadata", "pageID", cur, "url", href)
		}

		for _, link := range c.renderer.ContentLinks() {
			c.discover(ctx, g, link, visited, enqueue)
		}
	}
	return nil
}

// applyParent records the authoritative parent reported by a rendered
// page. The root keeps its empty parent regardless of what the rendering
// returns for it; a cycle-creating assignment is rejected and logged as a
// data anomaly, keeping the original parent.
func (c *Crawler) applyParent(g *graph.Graph, id, parentID string) {
	if id == g.RootID() {
		return
	}
	if parentID == "" {
		return
	}
	if err := g.SetParent(id, parentID); err != nil {
		if errors.Is(err, graph.ErrCycle) {
			c.logger.Warn("rejected parent assignment, would create a cycle",
				"pageID", id,
				"parentID", parentID,
			)
			return
		}
		c.logger.Warn("parent assignment failed", "pageID", id, "parentID", parentID, "error", err)
	}
}

// discover handles one same-space link found in content. Links that
// directly encode a page id enqueue without a page load; anything else
// costs one extra render to learn its identity. A link whose identity
// cannot be resolved is skipped, never fatal.
func (c *Crawler) discover(ctx context.Context, g *graph.Graph, link string, visited map[string]bool, enqueue func(string)) {
	if pid := confluence.PageIDFromURL(link); pid != "" {
		n := g.GetOrCreate(pid)
		n.AddHref(link)
		enqueue(pid)
		return
	}

	if err := c.renderer.Navigate(ctx, link, c.navTimeout); err != nil {
		c.logger.Warn("failed to resolve discovered link", "url", link, "error", err)
		return
	}
	ident, ok := c.renderer.Identity()
	if !ok {
		c.logger.Warn("discovered link exposes no identity", "url", link)
		return
	}

	n := g.GetOrCreate(ident.ID)
	n.AddHref(link)
	n.SetTitle(ident.Title)
	if !visited[ident.ID] {
		c.applyParent(g, ident.ID, ident.ParentID)
	}
	enqueue(ident.ID)
}
