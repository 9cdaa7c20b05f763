package graph

import "errors"

// Graph manipulation errors.
//
// Design decision: We use package-level sentinel errors so callers can
// distinguish anomalies with errors.Is() while the graph keeps mutating.
// A rejected parent assignment is logged and survived, never fatal.
var (
	// ErrCycle is returned by SetParent when the requested parent is a
	// descendant of the child, so the assignment would make the child its
	// own ancestor. The previous parent is retained.
	ErrCycle = errors.New("parent assignment would create a cycle")

	// ErrUnknownNode is returned when an operation references an id that
	// is not present in the graph.
	ErrUnknownNode = errors.New("unknown node id")
)
