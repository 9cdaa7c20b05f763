// Package model defines the data structures shared across spacemirror.
//
// The central type is PageNode, one logical page in the mirrored space.
// A node is keyed by its canonical content id, which stays stable across
// every URL that resolves to the same underlying page. Nodes accumulate
// observations monotonically during the crawl (URLs and titles are only
// added, never removed) and are frozen once slugs are assigned.
//
// Snapshot is the serialized form of a finished graph, written next to the
// mirror so a run can be audited or reconstructed without re-crawling.
// MirrorResult summarizes one run for reporting and database storage.
package model
