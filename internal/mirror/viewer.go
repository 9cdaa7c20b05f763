package mirror

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/spacemirror/internal/graph"
	"github.com/nao1215/spacemirror/internal/model"
)

// viewerStyle is the stylesheet of the offline viewer shell: a three-column
// grid with a collapsible sidebar (page tree) and metadata panel.
const viewerStyle = `<style>
body { margin:0; font-family: system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif; }
.sm-container { display:grid; grid-template-columns:300px 1fr 300px; min-height:100vh; }
.sm-sidebar { border-right:1px solid #e2e2e2; padding:12px; overflow:auto; }
.sm-main { padding:0; }
.sm-metadata { border-left:1px solid #e2e2e2; padding:12px; overflow:auto; }
.sm-header { display:flex; align-items:center; justify-content:space-between; padding:8px 12px; border-bottom:1px solid #e2e2e2; background:#fafafa; position:sticky; top:0; z-index:5; }
.sm-title { font-weight:700; }
button.sm-toggle { border:1px solid #ccc; background:#fff; padding:6px 10px; border-radius:6px; cursor:pointer; }
ul.sm-tree { list-style:none; padding-left:0; }
ul.sm-tree ul { list-style:none; padding-left:16px; }
ul.sm-tree li { margin:2px 0; }
ul.sm-tree li > a { text-decoration:none; color:#1f4aa3; }
ul.sm-tree li.active > a { font-weight:700; text-decoration:underline; }
.sm-breadcrumbs { font-size:13px; padding:6px 12px; border-bottom:1px solid #eee; color:#555; }
.sm-breadcrumbs a { color:#1f4aa3; text-decoration:none; }
.sm-collapsed .sm-sidebar { display:none; }
.sm-collapsed { grid-template-columns:1fr 300px; }
.sm-meta-collapsed .sm-metadata { display:none; }
.sm-meta-collapsed { grid-template-columns:300px 1fr; }
.sm-collapsed.sm-meta-collapsed { grid-template-columns:1fr; }
#sm-content { padding:16px; }
.sm-meta-kv { font-size:14px; line-height:1.5; }
.sm-meta-kv dt { font-weight:600; }
.sm-meta-kv dd { margin:0 0 8px 0; word-break:break-all; }
</style>`

// viewerScript wires the sidebar and metadata toggle buttons.
const viewerScript = `<script>
(function(){
  var root = document.querySelector('.sm-container');
  document.querySelector('#sm-toggle-nav').addEventListener('click', function(){
    root.classList.toggle('sm-collapsed');
  });
  document.querySelector('#sm-toggle-meta').addEventListener('click', function(){
    root.classList.toggle('sm-meta-collapsed');
  });
})();
</script>`

// headAsset is one stylesheet or script carried into the shell head after
// it was downloaded into the page's content directory.
type headAsset struct {
	// stylesheet distinguishes <link rel="stylesheet"> from <script src>.
	stylesheet bool

	// href is the rewritten local reference ("./content/<file>").
	href string
}

// buildSidebar renders the whole page tree as nested lists with links
// relative to the current page. The current page gets the active class.
func buildSidebar(g *graph.Graph, layout *graph.Layout, currentID string) string {
	rootID := g.RootID()
	if _, ok := g.Node(rootID); rootID == "" || !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<ul class="sm-tree">`)
	writeTreeItem(&b, g, layout, rootID, currentID)
	b.WriteString(`</ul>`)
	return b.String()
}

// writeTreeItem appends one <li> (and its subtree) to the sidebar.
// Children are ordered by (title, id), matching the slug assignment order.
func writeTreeItem(b *strings.Builder, g *graph.Graph, layout *graph.Layout, id, currentID string) {
	n, ok := g.Node(id)
	if !ok {
		return
	}

	href, _ := layout.Rel(currentID, id)
	label := n.Title
	if label == "" {
		label = graph.FallbackTitle(id)
	}

	if id == currentID {
		b.WriteString(`<li class="active">`)
	} else {
		b.WriteString(`<li>`)
	}
	fmt.Fprintf(b, `<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(label))

	if kids := sortedChildren(g, id); len(kids) > 0 {
		b.WriteString(`<ul>`)
		for _, kid := range kids {
			writeTreeItem(b, g, layout, kid, currentID)
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</li>`)
}

// buildBreadcrumbs renders the root-to-page trail. Ancestors are links,
// the current page is plain text.
func buildBreadcrumbs(g *graph.Graph, layout *graph.Layout, currentID string) string {
	trail := ancestorChain(g, currentID)
	if len(trail) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<nav class="sm-breadcrumbs">`)
	for i, id := range trail {
		if i > 0 {
			b.WriteString(" &rsaquo; ")
		}
		n, ok := g.Node(id)
		label := graph.FallbackTitle(id)
		if ok && n.Title != "" {
			label = n.Title
		}
		if id == currentID {
			b.WriteString(html.EscapeString(label))
			continue
		}
		href, _ := layout.Rel(currentID, id)
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(label))
	}
	b.WriteString(`</nav>`)
	return b.String()
}

// ancestorChain returns the ids from the root down to id.
// The walk is bounded by the graph size.
func ancestorChain(g *graph.Graph, id string) []string {
	chain := []string{}
	cur := id
	for steps := 0; steps <= g.Len(); steps++ {
		n, ok := g.Node(cur)
		if !ok {
			return nil
		}
		chain = append(chain, cur)
		if n.ParentID == "" {
			break
		}
		cur = n.ParentID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// buildMetadata renders the metadata panel for one page.
func buildMetadata(n *model.PageNode, title string, savedAt time.Time) string {
	var b strings.Builder
	b.WriteString(`<dl class="sm-meta-kv">`)
	fmt.Fprintf(&b, `<dt>Saved at</dt><dd>%s</dd>`, savedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, `<dt>Local title</dt><dd>%s</dd>`, html.EscapeString(title))
	fmt.Fprintf(&b, `<dt>Page ID</dt><dd>%s</dd>`, html.EscapeString(n.ID))
	fmt.Fprintf(&b, `<dt>Original URL</dt><dd>%s</dd>`, html.EscapeString(n.PrimaryHref()))
	b.WriteString(`</dl>`)
	return b.String()
}

// wrapShell assembles the final page document: shell head (viewer style
// plus the page's surviving stylesheets and scripts), sidebar, breadcrumb
// trail, rewritten main content, and metadata panel.
func wrapShell(title, sidebar, breadcrumbs, metadata, mainHTML string, assets []headAsset) string {
	var head strings.Builder
	for _, a := range assets {
		if a.stylesheet {
			fmt.Fprintf(&head, "<link rel=\"stylesheet\" href=\"%s\">\n", html.EscapeString(a.href))
		} else {
			fmt.Fprintf(&head, "<script src=\"%s\"></script>\n", html.EscapeString(a.href))
		}
	}

	return fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
%s
%s</head>
<body>
<div class="sm-container sm-meta-collapsed">
  <div class="sm-sidebar">
    <div class="sm-header">
      <div class="sm-title">spacemirror</div>
    </div>
    %s
  </div>
  <div class="sm-main">
    <div class="sm-header">
      <button class="sm-toggle" id="sm-toggle-nav" aria-label="Show/Hide page tree">&#9776;</button>
      <div class="sm-title">%s</div>
      <button class="sm-toggle" id="sm-toggle-meta" aria-label="Show/Hide metadata">&#8505;</button>
    </div>
    %s
    <div id="sm-content">%s</div>
  </div>
  <aside class="sm-metadata">
    <div class="sm-title" style="margin-bottom:8px;">Page metadata</div>
    %s
  </aside>
</div>
%s
</body>
</html>`,
		html.EscapeString(title), viewerStyle, head.String(), sidebar,
		html.EscapeString(title), breadcrumbs, mainHTML, metadata, viewerScript)
}

// sortedChildren returns the children of id ordered by (title, id), the
// same ordering slug assignment uses, so the sidebar matches the disk tree.
func sortedChildren(g *graph.Graph, id string) []string {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	kids := n.ChildIDs()
	titleOf := func(id string) string {
		if c, ok := g.Node(id); ok {
			return c.Title
		}
		return ""
	}
	sort.Slice(kids, func(i, j int) bool {
		ti, tj := titleOf(kids[i]), titleOf(kids[j])
		if ti != tj {
			return ti < tj
		}
		return kids[i] < kids[j]
	})
	return kids
}
