// Package mirror materializes a crawled space graph into a self-contained
// offline folder tree.
//
// The Materializer walks the finalized graph root-first, re-renders each
// page through the shared renderer session, extracts the main content
// region, rewrites in-space links to relative paths, downloads page assets
// into a per-page content/ directory, and wraps everything in a small
// offline viewer shell (sidebar tree, breadcrumb trail, metadata panel).
// After the last page it writes offline_graph.json at the mirror root so
// the run can be audited or rebuilt without re-crawling.
//
// Design decision: Pages are saved sequentially because they share one
// renderer session, but each page's asset downloads fan out through the
// bounded fetch pool. Every written file is independently valid, so an
// interrupted run leaves a usable partial mirror and a re-run simply
// overwrites page files and skips assets whose local size already matches.
package mirror
