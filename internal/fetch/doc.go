// Package fetch downloads page assets (images, stylesheets, scripts,
// attachments) into per-page content directories.
//
// Downloads are keyed by content URL and write to independent files, so
// unlike page rendering they parallelize safely: FetchAll runs a batch
// through a bounded errgroup worker pool. A download is skipped when a
// local file of matching byte size already exists, which makes re-runs
// idempotent; a failed download removes any partial file and leaves the
// page's reference pointing at the remote URL.
package fetch
