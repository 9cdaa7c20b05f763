// Package crawler builds the identity graph of a document space.
//
// # Architecture
//
// The crawler discovers pages through two channels: the navigation tree
// widget of the start page, and same-space links found in each visited
// page's content. Both feed one breadth-first visit loop over canonical
// page ids, so each logical page is rendered at most once no matter how
// many URLs reach it.
//
// Design decision: We crawl strictly sequentially because the renderer
// models a single rendering session with one current page; parallel
// visits would corrupt its DOM-read state. The only concurrency in a
// mirror run lives in the asset fetcher, which is independent of the
// crawl.
//
// # Identity reconciliation
//
// A queued id and the id the rendered page actually reports can differ
// when the visited URL was an alias that redirected to the canonical
// page. The crawler folds the queued node into the canonical one with an
// explicit graph merge, so the "one node per logical page" invariant
// stays auditable.
//
// # Failure semantics
//
// A page that fails to render is logged and contributes no further links;
// it stays marked visited, so a transient failure permanently truncates
// that discovery branch until the operator re-runs the crawl. Only the
// seed page is special: without its identity there is no root, so seed
// failure aborts the run.
package crawler
