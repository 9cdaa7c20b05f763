package graph

import (
	"errors"
	"testing"
)

// TestGraphParenting tests parent/child edge maintenance.
func TestGraphParenting(t *testing.T) {
	t.Parallel()

	t.Run("links child under parent and keeps edges consistent", func(t *testing.T) {
		t.Parallel()

		g := New("DOCS")
		if err := g.SetParent("1", ""); err != nil {
			t.Fatalf("failed to register root: %v", err)
		}
		if err := g.SetParent("2", "1"); err != nil {
			t.Fatalf("failed to set parent: %v", err)
		}

		child, ok := g.Node("2")
		if !ok {
			t.Fatal("child node was not created")
		}
		if child.ParentID != "1" {
			t.Errorf("expected parent '1', got %q", child.ParentID)
		}

		parent, _ := g.Node("1")
		if _, ok := parent.Children["2"]; !ok {
			t.Error("parent does not list child in its children set")
		}
	})

	t.Run("reparenting removes the old edge", func(t *testing.T) {
		t.Parallel()

		g := New("DOCS")
		_ = g.SetParent("1", "")
		_ = g.SetParent("2", "1")
		_ = g.SetParent("3", "1")
		if err := g.SetParent("3", "2"); err != nil {
			t.Fatalf("reparenting failed: %v", err)
		}

		root, _ := g.Node("1")
		if _, ok := root.Children["3"]; ok {
			t.Error("old parent still lists the reparented child")
		}
		mid, _ := g.Node("2")
		if _, ok := mid.Children["3"]; !ok {
			t.Error("new parent does not list the reparented child")
		}
	})

	t.Run("rejects parent assignment that closes a cycle", func(t *testing.T) {
		t.Parallel()

		g := New("DOCS")
		_ = g.SetParent("1", "")
		_ = g.SetParent("2", "1")
		_ = g.SetParent("3", "2")

		err := g.SetParent("1", "3")
		if !errors.Is(err, ErrCycle) {
			t.Fatalf("expected ErrCycle, got %v", err)
		}

		// Original relation must survive the rejected assignment.
		root, _ := g.Node("1")
		if root.ParentID != "" {
			t.Errorf("root parent changed after rejected assignment: %q", root.ParentID)
		}
	})

	t.Run("rejects self-parenting", func(t *testing.T) {
		t.Parallel()

		g := New("DOCS")
		if err := g.SetParent("1", "1"); !errors.Is(err, ErrCycle) {
			t.Fatalf("expected ErrCycle, got %v", err)
		}
	})

	t.Run("exactly one root survives re-registration", func(t *testing.T) {
		t.Parallel()

		g := New("DOCS")
		_ = g.SetParent("1", "")
		_ = g.SetParent("1", "")
		if g.RootID() != "1" {
			t.Errorf("expected root '1', got %q", g.RootID())
		}

		roots := 0
		for _, id := range g.AllIDs() {
			n, _ := g.Node(id)
			if n.ParentID == "" {
				roots++
			}
		}
		if roots != 1 {
			t.Errorf("expected exactly one parentless node, got %d", roots)
		}
	})
}

// TestGraphMerge tests alias/canonical reconciliation.
func TestGraphMerge(t *testing.T) {
	t.Parallel()

	t.Run("folds alias observations into the canonical node", func(t *testing.T) {
		t.Parallel()

		g := New("DOCS")
		_ = g.SetParent("1", "")
		_ = g.SetParent("100", "1")

		alias := g.GetOrCreate("100")
		alias.AddHref("http://wiki.example.com/pages/viewpage.action?pageId=100")
		alias.SetTitle("Old Title")
		_ = g.SetParent("300", "100")

		target := g.Merge("100", "101")
		if target.ID != "101" {
			t.Fatalf("expected canonical id 101, got %s", target.ID)
		}
		if _, ok := g.Node("100"); ok {
			t.Error("alias node still present after merge")
		}
		if target.Title != "Old Title" {
			t.Errorf("alias title was not carried over: %q", target.Title)
		}
		if len(target.Hrefs()) != 1 {
			t.Errorf("alias hrefs were not carried over: %v", target.Hrefs())
		}
		if target.ParentID != "1" {
			t.Errorf("alias parent was not adopted: %q", target.ParentID)
		}

		child, _ := g.Node("300")
		if child.ParentID != "101" {
			t.Errorf("child was not re-pointed to canonical id: %q", child.ParentID)
		}
	})

	t.Run("canonical node keeps its own title on conflict", func(t *testing.T) {
		t.Parallel()

		g := New("DOCS")
		g.GetOrCreate("101").SetTitle("Canonical")
		g.GetOrCreate("100").SetTitle("Alias")

		target := g.Merge("100", "101")
		if target.Title != "Canonical" {
			t.Errorf("expected canonical title to win, got %q", target.Title)
		}
	})

	t.Run("merging the root relabels the root id", func(t *testing.T) {
		t.Parallel()

		g := New("DOCS")
		_ = g.SetParent("100", "")
		g.Merge("100", "101")

		if g.RootID() != "101" {
			t.Errorf("expected root '101', got %q", g.RootID())
		}
	})

	t.Run("merge with unknown alias is a lookup", func(t *testing.T) {
		t.Parallel()

		g := New("DOCS")
		target := g.Merge("missing", "101")
		if target.ID != "101" {
			t.Errorf("expected node 101, got %s", target.ID)
		}
		if g.Len() != 1 {
			t.Errorf("expected 1 node, got %d", g.Len())
		}
	})
}

// TestAcyclicity verifies the parent walk terminates for every node.
func TestAcyclicity(t *testing.T) {
	t.Parallel()

	g := New("DOCS")
	_ = g.SetParent("1", "")
	_ = g.SetParent("2", "1")
	_ = g.SetParent("3", "2")
	_ = g.SetParent("4", "2")
	_ = g.SetParent("5", "1")

	for _, id := range g.AllIDs() {
		cur := id
		steps := 0
		for {
			n, ok := g.Node(cur)
			if !ok {
				t.Fatalf("dangling parent reference at %s", cur)
			}
			if n.ParentID == "" {
				break
			}
			cur = n.ParentID
			steps++
			if steps > g.Len() {
				t.Fatalf("parent walk from %s did not terminate", id)
			}
		}
		if cur != "1" {
			t.Errorf("walk from %s ended at %s, want root '1'", id, cur)
		}
	}
}
