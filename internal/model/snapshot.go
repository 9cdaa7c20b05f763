package model

// Snapshot is the serialized form of a completed space graph.
// It is written to the mirror root as offline_graph.json and contains
// everything needed to audit or rebuild the mirror without re-crawling.
type Snapshot struct {
	// Space is the key of the mirrored document space.
	Space string `json:"space"`

	// RootID is the canonical id of the space's root page.
	RootID string `json:"root_id"`

	// Nodes maps canonical page ids to their finalized records.
	Nodes map[string]NodeRecord `json:"nodes"`
}

// NodeRecord is the snapshot entry for a single page.
type NodeRecord struct {
	// Title is the final display name of the page.
	Title string `json:"title"`

	// Slug is the filesystem-safe name used for the page's folder and file.
	Slug string `json:"slug"`

	// Parent is the canonical id of the parent page, empty for the root.
	Parent string `json:"parent,omitempty"`

	// Hrefs lists every URL observed to reach the page, sorted.
	Hrefs []string `json:"hrefs"`

	// Folder is the page's output directory relative to the mirror root.
	Folder string `json:"folder"`

	// File is the page's output HTML file relative to the mirror root.
	File string `json:"file"`
}
