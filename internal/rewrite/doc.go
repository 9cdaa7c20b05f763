// Package rewrite resolves in-space hrefs into local relative paths.
//
// Every link found in a page's rendered content is classified: links that
// directly encode a page id map to that node, links that encode a space
// key and title map through normalized-title lookup, and user-profile
// links become mailto references. Anything else (foreign origins,
// administrative action endpoints, unknown pages) is left exactly as it
// was found, so the offline copy degrades to the remote link rather than
// a broken local one.
//
// Resolution runs independently for every referring page, because the
// relative path between two pages depends on both endpoints' positions
// in the materialized tree.
package rewrite
