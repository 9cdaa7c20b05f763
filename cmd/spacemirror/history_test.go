package main

import (
	"context"
	"testing"
	"time"

	"github.com/nao1215/spacemirror/internal/database"
	"github.com/nao1215/spacemirror/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history [space-key]" {
			t.Errorf("expected use 'history [space-key]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("pages")
		if flag == nil {
			t.Fatal("expected pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has latest flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("latest")
		if flag == nil {
			t.Fatal("expected latest flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})
}

// openHistoryTestDB creates a database with one recorded run for tests.
func openHistoryTestDB(t *testing.T) (*database.MirrorDB, int64) {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	result := &model.MirrorResult{
		Space:            "DOCS",
		RootID:           "1",
		OutputDir:        "DOCS_offline",
		StartedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:         90 * time.Second,
		PagesDiscovered:  12,
		PagesWritten:     11,
		AssetsDownloaded: 34,
		AssetsSkipped:    2,
		Failures: []model.Failure{
			{PageID: "100", Stage: model.StageRender, Message: "timeout"},
		},
	}
	runID, err := db.InsertRun(context.Background(), result)
	if err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}
	return db, runID
}

// TestListRunHistory tests run listing against a populated database.
func TestListRunHistory(t *testing.T) {
	db, _ := openHistoryTestDB(t)
	ctx := context.Background()

	t.Run("lists all runs", func(t *testing.T) {
		if err := listRunHistory(ctx, db, "", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("filters by space", func(t *testing.T) {
		if err := listRunHistory(ctx, db, "DOCS", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("handles unknown space", func(t *testing.T) {
		if err := listRunHistory(ctx, db, "NOPE", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// TestShowLatestRun tests latest-run lookup against a populated database.
func TestShowLatestRun(t *testing.T) {
	db, _ := openHistoryTestDB(t)
	ctx := context.Background()

	t.Run("shows latest run", func(t *testing.T) {
		if err := showLatestRun(ctx, db, "DOCS", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("errors for unknown space", func(t *testing.T) {
		if err := showLatestRun(ctx, db, "NOPE", false); err == nil {
			t.Error("expected error for unknown space")
		}
	})
}

// TestShowRunPages tests page inventory lookup.
func TestShowRunPages(t *testing.T) {
	db, runID := openHistoryTestDB(t)
	ctx := context.Background()

	t.Run("handles run without pages", func(t *testing.T) {
		if err := showRunPages(ctx, db, runID, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("handles unknown run ID", func(t *testing.T) {
		if err := showRunPages(ctx, db, 9999, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// TestFormatProblemCount tests problem count rendering.
func TestFormatProblemCount(t *testing.T) {
	t.Parallel()

	if got := formatProblemCount(0); got != "none" {
		t.Errorf("expected 'none', got %q", got)
	}
	if got := formatProblemCount(3); got != "3" {
		t.Errorf("expected '3', got %q", got)
	}
}

// TestTruncateCell tests table cell truncation.
func TestTruncateCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "Title", maxLen: 30, want: "Title"},
		{name: "long string truncated", input: "A very long page title indeed yes", maxLen: 10, want: "A very ..."},
		{name: "tiny limit", input: "abcdef", maxLen: 2, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := truncateCell(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateCell(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
