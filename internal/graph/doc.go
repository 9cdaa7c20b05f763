// Package graph maintains the in-memory identity graph of a document space.
//
// # Architecture
//
// The Graph maps canonical page ids to model.PageNode values and tracks a
// single designated root. It reconciles the different places identity can
// come from during a crawl: the navigation tree widget, in-content links,
// and the authoritative metadata read when a page is actually rendered.
//
// Design decision: The graph is single-writer and carries no locking.
// The crawl is strictly sequential because it drives one rendering session,
// so synchronization would add cost without protecting anything. Each phase
// receives the graph explicitly by reference; there is no package-level state.
//
// # Invariants
//
//   - Exactly one node is the root (empty ParentID).
//   - Parent/child edges are mutually consistent: a child's ParentID always
//     names an existing node that lists the child in Children.
//   - The hierarchy is acyclic. SetParent rejects any assignment that would
//     close a cycle back to an ancestor; callers treat that as a data
//     anomaly, keep the previous parent, and continue.
//
// After the crawl completes, AssignSlugs derives collision-free
// filesystem-safe names and NewLayout freezes the on-disk paths.
package graph
