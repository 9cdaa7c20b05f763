package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/spacemirror/internal/confluence"
	"github.com/nao1215/spacemirror/internal/fetch"
	"github.com/nao1215/spacemirror/internal/graph"
	"github.com/nao1215/spacemirror/internal/model"
	"github.com/nao1215/spacemirror/internal/render"
	"github.com/nao1215/spacemirror/internal/rewrite"
)

// contentDirName is the per-page directory holding downloaded assets.
const contentDirName = "content"

// defaultNavigateTimeout bounds one page load during materialization.
const defaultNavigateTimeout = 40 * time.Second

// Materializer writes the crawled graph to disk as an offline mirror.
type Materializer struct {
	graph    *graph.Graph
	layout   *graph.Layout
	space    *confluence.Space
	renderer render.Renderer
	resolver *rewrite.Resolver
	fetcher  *fetch.Fetcher

	// root is the mirror's output directory.
	root string

	// navTimeout bounds one page load.
	navTimeout time.Duration

	// now supplies timestamps for the metadata panel.
	now func() time.Time

	logger *slog.Logger
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Materializer) {
		m.logger = logger
	}
}

// WithNavigateTimeout bounds each page load during saving.
func WithNavigateTimeout(d time.Duration) Option {
	return func(m *Materializer) {
		if d > 0 {
			m.navTimeout = d
		}
	}
}

// withClock overrides the timestamp source. Used by tests.
func withClock(now func() time.Time) Option {
	return func(m *Materializer) {
		m.now = now
	}
}

// New creates a Materializer writing the given graph beneath outputDir.
// The layout must come from the same graph after slug assignment.
func New(g *graph.Graph, layout *graph.Layout, space *confluence.Space,
	renderer render.Renderer, resolver *rewrite.Resolver, fetcher *fetch.Fetcher,
	outputDir string, opts ...Option,
) *Materializer {
	m := &Materializer{
		graph:      g,
		layout:     layout,
		space:      space,
		renderer:   renderer,
		resolver:   resolver,
		fetcher:    fetcher,
		root:       outputDir,
		navTimeout: defaultNavigateTimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Materialize writes every page of the graph to disk and finishes with the
// offline_graph.json snapshot. Per-page problems are collected on the
// result and never abort the run; only filesystem setup failures and
// context cancellation do.
func (m *Materializer) Materialize(ctx context.Context) (*model.MirrorResult, error) {
	start := m.now()
	res := &model.MirrorResult{
		Space:           m.graph.Space(),
		RootID:          m.graph.RootID(),
		OutputDir:       m.root,
		StartedAt:       start,
		PagesDiscovered: m.graph.Len(),
	}

	if err := m.createFolders(); err != nil {
		return nil, err
	}

	for _, id := range m.saveOrder() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := m.savePage(ctx, id, res); err != nil {
			return nil, err
		}
	}

	if err := m.writeSnapshot(); err != nil {
		return nil, fmt.Errorf("writing graph snapshot: %w", err)
	}

	res.Duration = time.Since(start)
	return res, nil
}

// createFolders builds the page directory tree, including each page's
// content directory. Creation is idempotent.
func (m *Materializer) createFolders() error {
	for _, id := range m.graph.AllIDs() {
		folder, ok := m.layout.Folder(id)
		if !ok {
			return fmt.Errorf("no layout entry for page %s", id)
		}
		dir := filepath.Join(m.root, filepath.FromSlash(folder), contentDirName)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating page directory: %w", err)
		}
	}
	return nil
}

// saveOrder returns the page ids root-first depth-first, children ordered
// by (title, id). Without a root every node is saved in id order.
func (m *Materializer) saveOrder() []string {
	rootID := m.graph.RootID()
	if _, ok := m.graph.Node(rootID); rootID == "" || !ok {
		return m.graph.AllIDs()
	}

	order := make([]string, 0, m.graph.Len())
	var dfs func(string)
	dfs = func(id string) {
		order = append(order, id)
		for _, kid := range sortedChildren(m.graph, id) {
			dfs(kid)
		}
	}
	dfs(rootID)

	// Orphans disconnected from the root still get saved.
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		seen[id] = struct{}{}
	}
	for _, id := range m.graph.AllIDs() {
		if _, ok := seen[id]; !ok {
			order = append(order, id)
		}
	}
	return order
}
