package rewrite

import (
	"net/url"
	"strings"

	"github.com/nao1215/spacemirror/internal/confluence"
	"github.com/nao1215/spacemirror/internal/graph"
)

// Resolver rewrites in-space hrefs against a finalized graph and layout.
// It is read-only over both; one resolver serves every page of a run.
type Resolver struct {
	// graph is the completed identity graph.
	graph *graph.Graph

	// layout holds the frozen output paths.
	layout *graph.Layout

	// space classifies and parses candidate hrefs.
	space *confluence.Space

	// titleIndex maps normalized titles to page ids, built lazily once.
	titleIndex map[string]string
}

// NewResolver creates a Resolver over a finalized graph and layout.
func NewResolver(g *graph.Graph, layout *graph.Layout, space *confluence.Space) *Resolver {
	r := &Resolver{
		graph:  g,
		layout: layout,
		space:  space,
	}
	r.buildTitleIndex()
	return r
}

// buildTitleIndex indexes every node by normalized title. When two pages
// normalize to the same title the smaller id wins, keeping resolution
// deterministic across runs.
func (r *Resolver) buildTitleIndex() {
	r.titleIndex = make(map[string]string, r.graph.Len())
	for _, id := range r.graph.AllIDs() {
		n, ok := r.graph.Node(id)
		if !ok || n.Title == "" {
			continue
		}
		key := confluence.NormalizeTitle(n.Title)
		if key == "" {
			continue
		}
		if existing, dup := r.titleIndex[key]; !dup || id < existing {
			r.titleIndex[key] = id
		}
	}
}

// Resolve converts a raw href found in the content of page srcID into a
// local relative path. The second return value is false when the href is
// not a resolvable in-space content reference, in which case the caller
// leaves the original href untouched.
func (r *Resolver) Resolve(srcID, rawHref string) (string, bool) {
	if rawHref == "" {
		return "", false
	}

	// Keep the fragment aside for reattachment.
	href := rawHref
	fragment := ""
	if i := strings.IndexByte(href, '#'); i >= 0 {
		fragment = href[i:]
		href = href[:i]
		if href == "" {
			// Pure in-page fragment; nothing to rewrite.
			return "", false
		}
	}

	// Profile links become mailto references instead of page lookups.
	if u, err := r.space.Resolve(href); err == nil {
		if user, ok := confluence.ProfileUser(u); ok {
			return "mailto:" + user, true
		}
	}

	cleaned, ok := r.space.Clean(href)
	if !ok {
		return "", false
	}

	targetID := r.targetID(cleaned)
	if targetID == "" {
		return "", false
	}

	rel, ok := r.layout.Rel(srcID, targetID)
	if !ok {
		return "", false
	}
	return rel + fragment, true
}

// targetID determines the graph node a cleaned in-space URL refers to,
// or empty when it cannot be resolved.
func (r *Resolver) targetID(cleaned string) string {
	// An explicit page id beats any title interpretation.
	if pid := confluence.PageIDFromURL(cleaned); pid != "" {
		if _, ok := r.graph.Node(pid); ok {
			return pid
		}
		return ""
	}

	u, err := url.Parse(cleaned)
	if err != nil {
		return ""
	}
	space, title := confluence.SpaceAndTitle(u)
	if !strings.EqualFold(space, r.space.Key()) || title == "" {
		return ""
	}
	return r.titleIndex[confluence.NormalizeTitle(title)]
}
