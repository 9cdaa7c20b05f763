package mirror

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nao1215/spacemirror/internal/graph"
	"github.com/nao1215/spacemirror/internal/model"
)

// SnapshotFileName is the graph snapshot written at the mirror root.
const SnapshotFileName = "offline_graph.json"

// BuildSnapshot converts the finalized graph and layout into the
// serializable snapshot form. Paths are slash-separated and relative to
// the mirror root.
func BuildSnapshot(g *graph.Graph, layout *graph.Layout) *model.Snapshot {
	snap := &model.Snapshot{
		Space:  g.Space(),
		RootID: g.RootID(),
		Nodes:  make(map[string]model.NodeRecord, g.Len()),
	}
	for _, id := range g.AllIDs() {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		folder, _ := layout.Folder(id)
		file, _ := layout.File(id)
		snap.Nodes[id] = model.NodeRecord{
			Title:  n.Title,
			Slug:   n.Slug,
			Parent: n.ParentID,
			Hrefs:  n.Hrefs(),
			Folder: folder,
			File:   file,
		}
	}
	return snap
}

// writeSnapshot persists the graph snapshot at the mirror root.
func (m *Materializer) writeSnapshot() error {
	snap := BuildSnapshot(m.graph, m.layout)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.root, SnapshotFileName), data, 0600)
}
