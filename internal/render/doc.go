// Package render defines the page-rendering collaborator the crawl drives.
//
// # Architecture
//
// The core never talks to a browser or HTTP stack directly. It consumes
// the narrow Renderer capability interface: navigate to a URL, read the
// current page's identity metadata, list the same-space links in its
// content, and expand the navigation tree widget. Any concrete binding
// that can answer those four questions can drive a mirror run.
//
// The renderer is stateful by design: it models one rendering session
// with one "current page", matching the single sequential crawl loop.
// Concurrent navigation against one renderer would corrupt the current
// page state, so none is permitted.
//
// HTTPRenderer is the concrete binding for server-rendered Confluence
// markup. It fetches pages with net/http and parses them with
// golang.org/x/net/html, reading identity from the ajs-* meta tags and
// the page tree from the .plugin_pagetree widget markup. Every wait is
// bounded by a timeout and degrades to "proceed with whatever is
// available" rather than failing the crawl.
package render
