package graph

import (
	"errors"
	"strings"
	"testing"
)

// buildLayout constructs a small finalized graph:
//
//	Root (1)
//	├── x (2)
//	│   └── A (4)
//	└── y (3)
//	    └── B (5)
func buildLayout(t *testing.T) (*Graph, *Layout) {
	t.Helper()

	g := New("DOCS")
	_ = g.SetParent("1", "")
	_ = g.SetParent("2", "1")
	_ = g.SetParent("3", "1")
	_ = g.SetParent("4", "2")
	_ = g.SetParent("5", "3")
	g.GetOrCreate("1").SetTitle("Root")
	g.GetOrCreate("2").SetTitle("x")
	g.GetOrCreate("3").SetTitle("y")
	g.GetOrCreate("4").SetTitle("A")
	g.GetOrCreate("5").SetTitle("B")

	AssignSlugs(g)
	l, err := NewLayout(g)
	if err != nil {
		t.Fatalf("failed to compute layout: %v", err)
	}
	return g, l
}

// TestLayoutPaths tests folder and file computation.
func TestLayoutPaths(t *testing.T) {
	t.Parallel()

	g, l := buildLayout(t)

	t.Run("path equals root-to-node slug sequence", func(t *testing.T) {
		t.Parallel()

		folder, ok := l.Folder("4")
		if !ok {
			t.Fatal("no folder for node 4")
		}
		if folder != "Root/x/A" {
			t.Errorf("expected folder 'Root/x/A', got %q", folder)
		}

		file, _ := l.File("4")
		if file != "Root/x/A/A.html" {
			t.Errorf("expected file 'Root/x/A/A.html', got %q", file)
		}
	})

	t.Run("round-trips through the ancestor walk", func(t *testing.T) {
		t.Parallel()

		for _, id := range g.AllIDs() {
			folder, _ := l.Folder(id)
			comps, err := pathComponents(g, id)
			if err != nil {
				t.Fatalf("ancestor walk failed for %s: %v", id, err)
			}
			if joined := strings.Join(comps, "/"); joined != folder {
				t.Errorf("path mismatch for %s: %q vs %q", id, folder, joined)
			}
		}
	})
}

// TestLayoutRel tests relative href computation between pages.
func TestLayoutRel(t *testing.T) {
	t.Parallel()

	_, l := buildLayout(t)

	tests := []struct {
		name string
		from string
		to   string
		want string
	}{
		{name: "cross-branch link", from: "4", to: "5", want: "../../y/B/B.html"},
		{name: "self link", from: "4", to: "4", want: "A.html"},
		{name: "child link", from: "2", to: "4", want: "A/A.html"},
		{name: "parent link", from: "4", to: "2", want: "../x.html"},
		{name: "link to root", from: "4", to: "1", want: "../../Root.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := l.Rel(tt.from, tt.to)
			if !ok {
				t.Fatalf("Rel(%s, %s) unresolved", tt.from, tt.to)
			}
			if got != tt.want {
				t.Errorf("Rel(%s, %s) = %q, want %q", tt.from, tt.to, got, tt.want)
			}
		})
	}

	t.Run("unknown endpoint is reported", func(t *testing.T) {
		t.Parallel()
		if _, ok := l.Rel("4", "999"); ok {
			t.Error("expected Rel to fail for unknown target")
		}
	})
}

// TestLayoutDanglingParent verifies a broken parent reference surfaces as an error.
func TestLayoutDanglingParent(t *testing.T) {
	t.Parallel()

	g := New("DOCS")
	_ = g.SetParent("1", "")
	n := g.GetOrCreate("2")
	n.ParentID = "missing" // simulate corrupted data bypassing SetParent
	AssignSlugs(g)

	if _, err := NewLayout(g); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}
