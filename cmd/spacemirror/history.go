package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/spacemirror/internal/config"
	"github.com/nao1215/spacemirror/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command inspects the mirror runs recorded in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [space-key]",
		Short: "Show recorded mirror runs",
		Long: `History lists the mirror runs recorded in the run database.

Every 'spacemirror mirror' run is recorded together with its page counts,
asset counts, duration, and any problems encountered. This command shows
that history, newest first, optionally filtered to a single space.

Examples:
  # List all recorded runs
  spacemirror history

  # List runs for a single space
  spacemirror history DOCS

  # Show the full page inventory of a run by ID
  spacemirror history --pages 5

  # Show details of the most recent run for a space
  spacemirror history --latest DOCS

  # Output history in JSON format
  spacemirror history --json DOCS`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("pages", "p", 0,
		"Show the page inventory of the run with this ID")
	cmd.Flags().BoolP("latest", "l", false,
		"Show details of the most recent run (requires a space key)")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var spaceKey string
	if len(args) > 0 {
		spaceKey = args[0]
	}

	pagesRunID, err := cmd.Flags().GetInt64("pages")
	if err != nil {
		return err
	}
	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	if latest && spaceKey == "" {
		return errors.New("--latest requires a space key argument")
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database read-only: a missing database simply means no runs yet.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		fmt.Println("No recorded runs found.")
		fmt.Println("\nUse 'spacemirror mirror' to mirror a space.")
		return nil
	}
	defer db.Close()

	ctx := context.Background()

	if pagesRunID > 0 {
		return showRunPages(ctx, db, pagesRunID, jsonOutput)
	}
	if latest {
		return showLatestRun(ctx, db, spaceKey, jsonOutput)
	}
	return listRunHistory(ctx, db, spaceKey, jsonOutput)
}

// listRunHistory lists recorded runs, newest first.
func listRunHistory(ctx context.Context, db *database.MirrorDB, spaceKey string, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, spaceKey)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		return writeJSON(runs)
	}

	if len(runs) == 0 {
		if spaceKey != "" {
			fmt.Printf("No recorded runs found for %s\n", spaceKey)
		} else {
			fmt.Println("No recorded runs found.")
		}
		fmt.Println("\nUse 'spacemirror mirror' to mirror a space.")
		return nil
	}

	fmt.Printf("Recorded runs (%d):\n\n", len(runs))
	fmt.Printf("  %-6s  %-10s  %-20s  %-8s  %-8s  %s\n",
		"ID", "Space", "Started", "Pages", "Assets", "Problems")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, run := range runs {
		fmt.Printf("  %-6d  %-10s  %-20s  %-8s  %-8d  %s\n",
			run.ID,
			run.Space,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d/%d", run.PagesWritten, run.PagesDiscovered),
			run.AssetsDownloaded,
			formatProblemCount(len(run.Failures)),
		)
	}

	fmt.Println("\nUse 'spacemirror history --pages <id>' to see a run's page inventory.")

	return nil
}

// showLatestRun prints details of the most recent run for a space.
func showLatestRun(ctx context.Context, db *database.MirrorDB, spaceKey string, jsonOutput bool) error {
	run, err := db.LatestRun(ctx, spaceKey)
	if err != nil {
		return fmt.Errorf("failed to look up latest run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no recorded runs found for %s", spaceKey)
	}

	if jsonOutput {
		return writeJSON(run)
	}

	fmt.Printf("Latest run for %s (ID %d):\n\n", run.Space, run.ID)
	fmt.Printf("  Started:          %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Duration:         %s\n", run.Duration)
	fmt.Printf("  Output:           %s\n", run.OutputDir)
	fmt.Printf("  Root page:        %s\n", run.RootID)
	fmt.Printf("  Pages:            %d written of %d discovered\n", run.PagesWritten, run.PagesDiscovered)
	fmt.Printf("  Assets:           %d downloaded, %d skipped\n", run.AssetsDownloaded, run.AssetsSkipped)
	fmt.Printf("  Problems:         %s\n", formatProblemCount(len(run.Failures)))

	if len(run.Failures) > 0 {
		fmt.Println("\n  Recorded problems:")
		for _, f := range run.Failures {
			target := f.URL
			if target == "" {
				target = "page " + f.PageID
			}
			fmt.Printf("    [%s] %s: %s\n", strings.ToUpper(f.Stage), target, f.Message)
		}
	}

	return nil
}

// showRunPages prints the page inventory recorded for a run.
func showRunPages(ctx context.Context, db *database.MirrorDB, runID int64, jsonOutput bool) error {
	pages, err := db.GetRunPages(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run pages: %w", err)
	}

	if jsonOutput {
		return writeJSON(pages)
	}

	if len(pages) == 0 {
		fmt.Printf("No pages recorded for run %d\n", runID)
		fmt.Println("\nUse 'spacemirror history' to see available run IDs.")
		return nil
	}

	fmt.Printf("Pages recorded for run %d (%d pages):\n\n", runID, len(pages))
	fmt.Printf("  %-10s  %-30s  %s\n", "Page ID", "Title", "File")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, p := range pages {
		fmt.Printf("  %-10s  %-30s  %s\n", p.PageID, truncateCell(p.Title, 30), p.File)
	}

	return nil
}

// formatProblemCount renders a failure count for the history tables.
func formatProblemCount(n int) string {
	if n == 0 {
		return "none"
	}
	return fmt.Sprintf("%d", n)
}

// truncateCell shortens a table cell value to fit its column.
func truncateCell(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// writeJSON prints v as indented JSON to stdout.
func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
