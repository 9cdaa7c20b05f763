package render

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/spacemirror/internal/confluence"
)

// childULPattern extracts the parent page id from a nested tree list id,
// e.g. "child_ul282896951-0".
var childULPattern = regexp.MustCompile(`child_ul(\d+)-`)

// maxExpansionRounds bounds tree expansion so a widget that never fully
// settles cannot stall the crawl. Server-rendered markup arrives fully
// expanded, so one round normally suffices.
const maxExpansionRounds = 60

// ExpandNavigationTree harvests the page tree widget of the current page.
//
// Server-rendered Confluence emits the whole .plugin_pagetree structure
// in the initial markup, so expansion here is a bounded re-scan: each
// round re-harvests the tree and stops as soon as a round discovers no
// new entries. The harvested tuples carry the parent inferred from the
// list nesting, which the orchestrator treats as weaker evidence than the
// parent the page itself reports when visited.
func (r *HTTPRenderer) ExpandNavigationTree(ctx context.Context) ([]TreeEntry, error) {
	if r.doc == nil {
		return nil, nil
	}
	if findElement(r.doc, selector{attr: "class", val: "plugin_pagetree"}) == nil {
		// No tree widget on this page; not an error.
		return nil, nil
	}

	var entries []TreeEntry
	seen := make(map[string]struct{})
	for round := 0; round < maxExpansionRounds; round++ {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		added := 0
		for _, e := range r.harvestPageTree() {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			entries = append(entries, e)
			added++
		}
		if added == 0 {
			break
		}
	}
	return entries, nil
}

// harvestPageTree extracts (id, title, parent, href) tuples from the
// current DOM's page tree lists.
func (r *HTTPRenderer) harvestPageTree() []TreeEntry {
	var entries []TreeEntry
	walk(r.doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "li" || !insideTreeList(n) {
			return true
		}
		entry, ok := r.treeEntryFromItem(n)
		if ok {
			entries = append(entries, entry)
		}
		return true
	})
	return entries
}

// insideTreeList reports whether the node sits under a
// plugin_pagetree_children_list element.
func insideTreeList(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hasClass(Attr(p, "class"), "plugin_pagetree_children_list") {
			return true
		}
	}
	return false
}

// treeEntryFromItem reads one tree list item: the anchor supplies href and
// title, the child toggle supplies the page id (falling back to the
// href's pageId parameter), and the nearest ancestor list id supplies the
// parent inferred from nesting.
func (r *HTTPRenderer) treeEntryFromItem(li *html.Node) (TreeEntry, bool) {
	var anchor *html.Node
	walk(li, func(n *html.Node) bool {
		if n == li {
			return true
		}
		// Stay within this item; nested children have their own <li>.
		if n.Type == html.ElementNode && n.Data == "li" {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "a" &&
			!hasClass(Attr(n, "class"), "plugin_pagetree_childtoggle") &&
			Attr(n, "href") != "" {
			anchor = n
			return false
		}
		return true
	})
	if anchor == nil {
		return TreeEntry{}, false
	}

	href := Attr(anchor, "href")
	if abs, err := r.space.Resolve(href); err == nil {
		href = abs.String()
	}

	id := ""
	walk(li, func(n *html.Node) bool {
		if n != li && n.Type == html.ElementNode && n.Data == "li" {
			return false
		}
		if n.Type == html.ElementNode && hasClass(Attr(n, "class"), "plugin_pagetree_childtoggle") {
			id = Attr(n, "data-page-id")
			return false
		}
		return true
	})
	if id == "" {
		id = Attr(anchor, "data-page-id")
	}
	if id == "" {
		if cleaned, ok := r.space.Clean(href); ok {
			id = confluence.PageIDFromURL(cleaned)
		}
	}
	if id == "" {
		return TreeEntry{}, false
	}

	parentID := ""
	for p := li.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "ul" {
			if m := childULPattern.FindStringSubmatch(Attr(p, "id")); m != nil {
				parentID = m[1]
			}
			break
		}
	}

	return TreeEntry{
		ID:       id,
		Title:    strings.TrimSpace(textContent(anchor)),
		ParentID: parentID,
		Href:     href,
	}, true
}
