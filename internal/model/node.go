package model

import "sort"

// PageNode represents one logical page in the document space.
//
// Design decision: We key nodes by canonical content id rather than URL
// because:
//  1. The same page is reachable through several URLs (display form,
//     viewpage.action form, alias redirects)
//  2. The id is what the server reports as the page's identity, so it is
//     the only value stable enough to deduplicate on
//  3. Parent/child metadata from the server is expressed in ids
type PageNode struct {
	// ID is the canonical content identifier. Assigned when the page's
	// true identity is first observed and never reassigned afterward.
	ID string

	// Title is the display name. Empty until first observed; the first
	// non-empty observation wins and later ones are ignored.
	Title string

	// Slug is the filesystem-safe name assigned once during finalization.
	// Immutable afterward.
	Slug string

	// ParentID is the id of the parent page, or empty for the root.
	ParentID string

	// Children holds the ids of pages whose ParentID points here.
	Children map[string]struct{}

	// hrefs is the set of URLs observed to reach this page.
	hrefs map[string]struct{}
}

// NewPageNode creates an empty node for the given canonical id.
func NewPageNode(id string) *PageNode {
	return &PageNode{
		ID:       id,
		Children: make(map[string]struct{}),
		hrefs:    make(map[string]struct{}),
	}
}

// AddHref records a URL observed to reach this page. Duplicates are ignored.
func (n *PageNode) AddHref(href string) {
	if href == "" {
		return
	}
	n.hrefs[href] = struct{}{}
}

// Hrefs returns all known URLs for this page in sorted order.
// Sorting makes re-runs produce identical snapshots.
func (n *PageNode) Hrefs() []string {
	out := make([]string, 0, len(n.hrefs))
	for h := range n.hrefs {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// PrimaryHref returns a deterministic URL to (re)visit this page,
// or empty if no URL is known yet.
func (n *PageNode) PrimaryHref() string {
	hrefs := n.Hrefs()
	if len(hrefs) == 0 {
		return ""
	}
	return hrefs[0]
}

// SetTitle records the title if none is known yet.
// First non-empty observation wins.
func (n *PageNode) SetTitle(title string) {
	if n.Title == "" && title != "" {
		n.Title = title
	}
}

// ChildIDs returns the child ids in sorted order.
func (n *PageNode) ChildIDs() []string {
	out := make([]string, 0, len(n.Children))
	for id := range n.Children {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
