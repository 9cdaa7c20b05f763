package render

import (
	"strings"

	"golang.org/x/net/html"
)

// identityMetaNames are the meta tag names that expose the canonical
// content id, in preference order.
var identityMetaNames = []string{"ajs-content-id", "ajs-page-id", "ajs-latest-page-id"}

// mainContentSelectors describe the element carrying the page's main
// content region, in preference order: the classic editor id and class,
// the newer renderer root, then generic document landmarks.
type selector struct {
	tag  string
	attr string
	val  string
}

var mainContentSelectors = []selector{
	{attr: "id", val: "main-content"},
	{attr: "class", val: "wiki-content"},
	{attr: "data-testid", val: "ak-renderer-root"},
	{tag: "main"},
	{tag: "article"},
}

// Attr returns the value of the named attribute on an element node.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// walk visits every node in the tree until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// findElement returns the first element matching the selector.
func findElement(root *html.Node, sel selector) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if sel.tag != "" && n.Data != sel.tag {
			return true
		}
		if sel.attr != "" {
			v := Attr(n, sel.attr)
			if sel.attr == "class" {
				if !hasClass(v, sel.val) {
					return true
				}
			} else if v != sel.val {
				return true
			}
		}
		found = n
		return false
	})
	return found
}

// hasClass reports whether the space-separated class list contains name.
func hasClass(classList, name string) bool {
	for _, c := range strings.Fields(classList) {
		if c == name {
			return true
		}
	}
	return false
}

// metaContent returns the content attribute of <meta name="...">.
func metaContent(root *html.Node, name string) string {
	var content string
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "meta" && Attr(n, "name") == name {
			content = Attr(n, "content")
			return false
		}
		return true
	})
	return content
}

// textContent collects and trims the text under a node.
func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return strings.TrimSpace(b.String())
}

// MainContent locates the main content region of a rendered page, or nil
// when none of the known selectors match.
func MainContent(doc *html.Node) *html.Node {
	if doc == nil {
		return nil
	}
	for _, sel := range mainContentSelectors {
		if n := findElement(doc, sel); n != nil {
			return n
		}
	}
	return nil
}

// pageTitle extracts the display title of a rendered page: the
// #title-text heading first, then the ajs-page-title meta, then the
// document <title> with the product suffix stripped.
func pageTitle(doc *html.Node) string {
	if h := findElement(doc, selector{attr: "id", val: "title-text"}); h != nil {
		if t := textContent(h); t != "" {
			return t
		}
	}
	if t := strings.TrimSpace(metaContent(doc, "ajs-page-title")); t != "" {
		return t
	}
	if el := findElement(doc, selector{tag: "title"}); el != nil {
		t := textContent(el)
		if i := strings.Index(t, " - Confluence"); i >= 0 {
			t = t[:i]
		}
		return strings.TrimSpace(t)
	}
	return ""
}
