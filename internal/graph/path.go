package graph

import (
	"fmt"
	"path"
	"strings"
)

// PageExtension is the file extension of every written page.
const PageExtension = "html"

// Layout freezes the on-disk location of every page after slugs have been
// assigned. A node's directory is the sequence of slugs from the root down
// to the node; its page file sits inside that directory as <slug>.html.
//
// All paths are slash-separated and relative to the mirror root, so they
// double as stable keys across operating systems. Callers join them with
// the mirror root using filepath.FromSlash when touching the disk.
type Layout struct {
	// folders maps page id to the page's directory.
	folders map[string]string

	// files maps page id to the page's HTML file.
	files map[string]string
}

// NewLayout computes the output path of every node in the graph.
// AssignSlugs must have run first. An error is returned if any node's
// ancestor walk fails to reach the root within the graph size, which
// would mean the acyclicity invariant was violated.
func NewLayout(g *Graph) (*Layout, error) {
	l := &Layout{
		folders: make(map[string]string, g.Len()),
		files:   make(map[string]string, g.Len()),
	}

	for _, id := range g.AllIDs() {
		comps, err := pathComponents(g, id)
		if err != nil {
			return nil, err
		}
		folder := path.Join(comps...)
		n := g.GetOrCreate(id)
		l.folders[id] = folder
		l.files[id] = path.Join(folder, n.Slug+"."+PageExtension)
	}
	return l, nil
}

// pathComponents walks from id up to the root and returns the slug
// sequence in root-first order.
func pathComponents(g *Graph, id string) ([]string, error) {
	comps := make([]string, 0, 8)
	cur := id
	for steps := 0; ; steps++ {
		if steps > g.Len() {
			return nil, fmt.Errorf("%w: ancestor walk from %s did not terminate", ErrCycle, id)
		}
		n, ok := g.Node(cur)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNode, cur)
		}
		slug := n.Slug
		if slug == "" {
			slug = FallbackTitle(n.ID)
		}
		comps = append(comps, slug)
		if n.ParentID == "" {
			break
		}
		cur = n.ParentID
	}
	// Reverse into root-first order.
	for i, j := 0, len(comps)-1; i < j; i, j = i+1, j-1 {
		comps[i], comps[j] = comps[j], comps[i]
	}
	return comps, nil
}

// Folder returns the directory of the given page relative to the mirror root.
func (l *Layout) Folder(id string) (string, bool) {
	f, ok := l.folders[id]
	return f, ok
}

// File returns the HTML file of the given page relative to the mirror root.
func (l *Layout) File(id string) (string, bool) {
	f, ok := l.files[id]
	return f, ok
}

// Rel computes the href that reaches the target page's HTML file from the
// source page's directory, e.g. "../y/B.html" or "A.html" for a self-link.
//
// This is recomputed per referring page rather than precomputed once,
// because the relative path depends on both endpoints' positions.
func (l *Layout) Rel(fromID, toID string) (string, bool) {
	fromDir, ok := l.folders[fromID]
	if !ok {
		return "", false
	}
	toFile, ok := l.files[toID]
	if !ok {
		return "", false
	}
	return relPath(fromDir, toFile), true
}

// relPath computes a slash-separated relative path from directory base to
// file target, both given relative to the same root.
func relPath(base, target string) string {
	baseParts := splitPath(base)
	targetParts := splitPath(target)

	common := 0
	for common < len(baseParts) && common < len(targetParts)-1 &&
		baseParts[common] == targetParts[common] {
		common++
	}

	parts := make([]string, 0, len(baseParts)-common+len(targetParts)-common)
	for i := common; i < len(baseParts); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts[common:]...)
	return strings.Join(parts, "/")
}

// splitPath splits a slash path into components, treating "" and "." as empty.
func splitPath(p string) []string {
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}
