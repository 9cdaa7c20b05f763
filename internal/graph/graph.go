package graph

import (
	"sort"

	"github.com/nao1215/spacemirror/internal/model"
)

// Graph is the identity graph of one document space.
// Nodes are keyed by canonical page id and linked into a tree via
// parent/child edges. Mutated only by the crawl orchestrator.
type Graph struct {
	// space is the key of the document space this graph describes.
	space string

	// nodes maps canonical page ids to their nodes.
	nodes map[string]*model.PageNode

	// rootID is the id of the designated root page, empty until seeded.
	rootID string
}

// New creates an empty graph for the given space key.
func New(space string) *Graph {
	return &Graph{
		space: space,
		nodes: make(map[string]*model.PageNode),
	}
}

// Space returns the space key this graph belongs to.
func (g *Graph) Space() string {
	return g.space
}

// RootID returns the id of the designated root page, or empty if no root
// has been registered yet.
func (g *Graph) RootID() string {
	return g.rootID
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// GetOrCreate returns the node for id, creating it on first reference.
func (g *Graph) GetOrCreate(id string) *model.PageNode {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := model.NewPageNode(id)
	g.nodes[id] = n
	return n
}

// Node returns the node for id if it exists.
func (g *Graph) Node(id string) (*model.PageNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// AllIDs returns every node id in sorted order.
func (g *Graph) AllIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetParent links child under parent, creating both nodes as needed.
// An empty parent designates child as the root of the space.
//
// The assignment is rejected with ErrCycle when parent is a descendant of
// child, because accepting it would make child its own ancestor. Parent
// information always comes from external authoritative data, so a cycle
// here means the source data is inconsistent; the caller logs it and keeps
// the previous parent.
func (g *Graph) SetParent(child, parent string) error {
	n := g.GetOrCreate(child)

	if parent == "" {
		g.detachFromParent(n)
		n.ParentID = ""
		g.rootID = child
		return nil
	}

	if parent == child || g.isAncestor(child, parent) {
		return ErrCycle
	}

	p := g.GetOrCreate(parent)
	g.detachFromParent(n)
	n.ParentID = parent
	p.Children[child] = struct{}{}
	return nil
}

// detachFromParent removes n from its current parent's child set.
func (g *Graph) detachFromParent(n *model.PageNode) {
	if n.ParentID == "" {
		return
	}
	if p, ok := g.nodes[n.ParentID]; ok {
		delete(p.Children, n.ID)
	}
}

// isAncestor reports whether ancestor appears on the parent chain of id.
// The walk is bounded by the graph size; the acyclicity invariant
// guarantees it terminates well before that.
func (g *Graph) isAncestor(ancestor, id string) bool {
	cur := id
	for range g.nodes {
		n, ok := g.nodes[cur]
		if !ok || n.ParentID == "" {
			return false
		}
		if n.ParentID == ancestor {
			return true
		}
		cur = n.ParentID
	}
	return false
}

// Merge reconciles an alias id with the canonical id of the same logical
// page. The situation arises when a queued URL redirects to a different
// canonical page: without merging, the graph would accumulate two nodes
// for one page.
//
// All observations recorded under alias (URLs, title, children, parent)
// are folded into the canonical node, and the alias node is removed.
// The canonical node's own observations win on conflict. Returns the
// canonical node.
func (g *Graph) Merge(alias, canonical string) *model.PageNode {
	target := g.GetOrCreate(canonical)
	if alias == canonical {
		return target
	}

	src, ok := g.nodes[alias]
	if !ok {
		return target
	}

	for _, href := range src.Hrefs() {
		target.AddHref(href)
	}
	target.SetTitle(src.Title)

	// Re-point the alias's children at the canonical node.
	for _, childID := range src.ChildIDs() {
		if child, ok := g.nodes[childID]; ok && child.ParentID == alias {
			child.ParentID = canonical
			target.Children[childID] = struct{}{}
		}
		delete(src.Children, childID)
	}

	// Adopt the alias's position in the tree when the canonical node has
	// none of its own yet.
	if target.ParentID == "" && g.rootID != canonical {
		if g.rootID == alias {
			g.rootID = canonical
			target.ParentID = ""
		} else if src.ParentID != "" {
			// Ignore a cycle here the same way callers of SetParent do.
			_ = g.SetParent(canonical, src.ParentID)
		}
	}

	g.detachFromParent(src)
	delete(g.nodes, alias)
	return target
}
