package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/spacemirror/internal/fetch"
	"github.com/nao1215/spacemirror/internal/graph"
	"github.com/nao1215/spacemirror/internal/model"
	"github.com/nao1215/spacemirror/internal/render"
)

// attachmentMarker identifies attachment download links in page content.
const attachmentMarker = "/download/attachments/"

// savePage renders one page, rewrites it for offline use, downloads its
// assets, and writes the final document. Problems are recorded on the
// result; only a nil node is reported as an error.
func (m *Materializer) savePage(ctx context.Context, id string, res *model.MirrorResult) error {
	n, ok := m.graph.Node(id)
	if !ok {
		return fmt.Errorf("unknown page id %s", id)
	}

	href := n.PrimaryHref()
	if href == "" {
		res.AddFailure(id, "", model.StageRender, errors.New("no known URL for page"))
		return nil
	}

	if err := m.renderer.Navigate(ctx, href, m.navTimeout); err != nil {
		m.logger.Warn("page render failed, skipping", "id", id, "url", href, "error", err)
		res.AddFailure(id, href, model.StageRender, err)
		return nil
	}
	if ident, ok := m.renderer.Identity(); ok && ident.ID != id {
		// Alias URL resolved to a different canonical page while saving.
		// The page is still written under its planned path, but the run
		// report must surface the stale identity.
		m.logger.Warn("page resolved to different canonical id while saving",
			"id", id, "url", href, "canonical", ident.ID)
		res.AddFailure(id, href, model.StageIdentity,
			fmt.Errorf("page resolved to canonical id %s", ident.ID))
	}

	doc := m.renderer.Content()
	main := render.MainContent(doc)
	if main == nil {
		main = &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	}

	folder, _ := m.layout.Folder(id)
	file, _ := m.layout.File(id)
	contentDir := filepath.Join(m.root, filepath.FromSlash(folder), contentDirName)

	m.rewriteContentLinks(id, main)

	headAssets := m.processAssets(ctx, id, doc, main, contentDir, res)

	title := n.Title
	if title == "" {
		title = graph.FallbackTitle(id)
	}

	var body bytes.Buffer
	if err := html.Render(&body, main); err != nil {
		res.AddFailure(id, href, model.StageWrite, err)
		return nil
	}

	page := wrapShell(
		title,
		buildSidebar(m.graph, m.layout, id),
		buildBreadcrumbs(m.graph, m.layout, id),
		buildMetadata(n, title, m.now()),
		body.String(),
		headAssets,
	)

	dest := filepath.Join(m.root, filepath.FromSlash(file))
	if err := os.WriteFile(dest, []byte(page), 0600); err != nil {
		res.AddFailure(id, href, model.StageWrite, err)
		return nil
	}

	m.logger.Info("saved page", "id", id, "file", file)
	res.PagesWritten++
	return nil
}

// rewriteContentLinks points in-space anchors inside the main content at
// their local HTML files. Anchors that do not resolve to a mirrored page
// are left untouched.
func (m *Materializer) rewriteContentLinks(id string, main *html.Node) {
	forEachElement(main, "a", func(a *html.Node) {
		href := render.Attr(a, "href")
		if href == "" {
			return
		}
		if local, ok := m.resolver.Resolve(id, href); ok {
			setAttr(a, "href", local)
		}
	})
}

// processAssets gathers every downloadable reference on the page (head
// stylesheets and scripts, content images, attachment links), fetches them
// as one batch through the bounded pool, and applies the outcomes:
// successes are rewritten to ./content/<file>, failed content references
// fall back to the absolute remote URL, and failed head assets are
// dropped. Returns the head assets that survived.
func (m *Materializer) processAssets(ctx context.Context, id string, doc, main *html.Node, contentDir string, res *model.MirrorResult) []headAsset {
	type ref struct {
		node       *html.Node
		attr       string
		url        string
		head       bool
		stylesheet bool
	}
	var refs []ref

	if doc != nil {
		if head := findHead(doc); head != nil {
			forEachElement(head, "link", func(n *html.Node) {
				if !strings.EqualFold(render.Attr(n, "rel"), "stylesheet") {
					return
				}
				if href := render.Attr(n, "href"); href != "" {
					refs = append(refs, ref{node: n, attr: "href", url: href, head: true, stylesheet: true})
				}
			})
			forEachElement(head, "script", func(n *html.Node) {
				if src := render.Attr(n, "src"); src != "" {
					refs = append(refs, ref{node: n, attr: "src", url: src, head: true})
				}
			})
		}
	}
	forEachElement(main, "img", func(n *html.Node) {
		if src := render.Attr(n, "src"); src != "" {
			refs = append(refs, ref{node: n, attr: "src", url: src})
		}
	})
	forEachElement(main, "a", func(n *html.Node) {
		if href := render.Attr(n, "href"); strings.Contains(href, attachmentMarker) {
			refs = append(refs, ref{node: n, attr: "href", url: href})
		}
	})

	// One job per distinct URL; multiple references share the outcome.
	jobs := make([]fetch.Job, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		if _, dup := seen[r.url]; dup {
			continue
		}
		seen[r.url] = struct{}{}
		jobs = append(jobs, fetch.Job{URL: r.url, Dir: contentDir})
	}

	outcomes := make(map[string]fetch.Result, len(jobs))
	for _, result := range m.fetcher.FetchAll(ctx, jobs) {
		outcomes[result.Job.URL] = result
		switch {
		case result.Err != nil:
			m.logger.Warn("asset download failed", "url", result.Job.URL, "error", result.Err)
			res.AddFailure(id, result.Job.URL, model.StageAsset, result.Err)
		case result.Skipped:
			res.AssetsSkipped++
		default:
			res.AssetsDownloaded++
		}
	}

	var kept []headAsset
	for _, r := range refs {
		outcome := outcomes[r.url]
		if r.head {
			if outcome.Err == nil && outcome.Filename != "" {
				kept = append(kept, headAsset{stylesheet: r.stylesheet, href: "./" + contentDirName + "/" + outcome.Filename})
			}
			continue
		}
		if outcome.Err == nil && outcome.Filename != "" {
			setAttr(r.node, r.attr, "./"+contentDirName+"/"+outcome.Filename)
			continue
		}
		// Keep a followable remote reference on failure.
		if abs, err := m.space.Resolve(r.url); err == nil {
			setAttr(r.node, r.attr, abs.String())
		}
	}
	return kept
}

// forEachElement calls fn for every element named tag beneath root,
// including root itself.
func forEachElement(root *html.Node, tag string, fn func(*html.Node)) {
	if root == nil {
		return
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			fn(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

// findHead returns the document's <head> element, or nil.
func findHead(doc *html.Node) *html.Node {
	var head *html.Node
	forEachElement(doc, "head", func(n *html.Node) {
		if head == nil {
			head = n
		}
	})
	return head
}

// setAttr sets or replaces an attribute on an element.
func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
