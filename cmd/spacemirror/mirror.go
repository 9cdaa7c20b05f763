package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/spacemirror/internal/config"
	"github.com/nao1215/spacemirror/internal/confluence"
	"github.com/nao1215/spacemirror/internal/crawler"
	"github.com/nao1215/spacemirror/internal/database"
	"github.com/nao1215/spacemirror/internal/fetch"
	"github.com/nao1215/spacemirror/internal/graph"
	"github.com/nao1215/spacemirror/internal/log"
	"github.com/nao1215/spacemirror/internal/mirror"
	"github.com/nao1215/spacemirror/internal/model"
	"github.com/nao1215/spacemirror/internal/render"
	"github.com/nao1215/spacemirror/internal/report"
	"github.com/nao1215/spacemirror/internal/rewrite"
	"github.com/spf13/cobra"
)

// NewMirrorCmd creates the mirror command.
func NewMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror [space-key]",
		Short: "Mirror a wiki document space to a local directory",
		Long: `Mirror crawls a wiki document space and writes a browsable offline copy.

It walks the space's page hierarchy starting from the space overview (or a
page you name with --start-page), downloads each page together with its
images and attachments, rewrites links between pages to relative paths, and
wraps every page in a small offline viewer shell with a navigation sidebar.

Authenticated spaces need a session cookie file exported from a logged-in
browser session; pass it with --cookies.

Examples:
  # Mirror a public space
  spacemirror mirror DOCS --base-url https://wiki.example.com

  # Mirror an authenticated space starting from a specific page
  spacemirror mirror DOCS --base-url https://wiki.example.com \
    --cookies cookies.json --start-page "Release Notes"

  # Write the mirror somewhere else and cap the page count
  spacemirror mirror DOCS --base-url https://wiki.example.com \
    --dir /srv/mirrors/docs --max-pages 200

  # Output a JSON run report to a file
  spacemirror mirror DOCS --base-url https://wiki.example.com \
    --json -o report.json

  # Use a custom configuration file
  spacemirror mirror DOCS -c myconfig.yaml

Configuration file (.spacemirror) example:
  defaults:
    baseURL: "https://wiki.example.com"
  spaces:
    DOCS:
      cookiesFile: "cookies.json"
      startPage: "Product Documentation"
    ENG:
      maxPages: 500`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMirrorCmd,
	}

	// Target flags
	cmd.Flags().StringP("base-url", "u", "",
		"Origin of the wiki instance (e.g. https://wiki.example.com)")
	cmd.Flags().StringP("space", "s", "",
		"Key of the document space to mirror (alternative to the positional argument)")
	cmd.Flags().String("start-page", "",
		"Page title or full URL where the crawl begins (default: space overview)")
	cmd.Flags().String("cookies", "",
		"Path to a JSON session cookie file for authenticated spaces")

	// Mirror behavior flags
	cmd.Flags().StringP("dir", "d", "",
		"Output directory for the mirror (default: <SPACE>_offline)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to mirror")
	cmd.Flags().DurationP("timeout", "t", config.DefaultNavigateTimeout,
		"Timeout for loading a single page")
	cmd.Flags().Int("asset-workers", config.DefaultAssetWorkers,
		"Number of concurrent asset downloads per page")
	cmd.Flags().Duration("asset-timeout", config.DefaultAssetTimeout,
		"Timeout for downloading a single asset")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with HTTP requests")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .spacemirror in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runMirrorCmd executes the mirror command.
func runMirrorCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runMirror(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.SpaceKey, err = cmd.Flags().GetString("space")
	if err != nil {
		return nil, err
	}
	// The positional argument wins over --space when both are given.
	if len(args) > 0 {
		cfg.SpaceKey = args[0]
	}

	cfg.BaseURL, err = cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, err
	}

	cfg.StartPage, err = cmd.Flags().GetString("start-page")
	if err != nil {
		return nil, err
	}

	cfg.CookiesFile, err = cmd.Flags().GetString("cookies")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.NavigateTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.AssetWorkers, err = cmd.Flags().GetInt("asset-workers")
	if err != nil {
		return nil, err
	}

	cfg.AssetTimeout, err = cmd.Flags().GetDuration("asset-timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-space configurations from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SpaceConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SpaceConfigs = &config.File{
			Spaces: make(map[string]config.SpaceConfig),
		}
	}

	applySpaceConfig(cmd, cfg)

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// applySpaceConfig fills in config values from the per-space configuration
// file. A flag the user set on the command line always wins over the file.
func applySpaceConfig(cmd *cobra.Command, cfg *config.Config) {
	if cfg.SpaceConfigs == nil || cfg.SpaceKey == "" {
		return
	}
	sc := cfg.SpaceConfigs.GetSpaceConfig(cfg.SpaceKey)

	if cfg.BaseURL == "" && sc.BaseURL != "" {
		cfg.BaseURL = sc.BaseURL
	}
	if cfg.StartPage == "" && sc.StartPage != "" {
		cfg.StartPage = sc.StartPage
	}
	if cfg.CookiesFile == "" && sc.CookiesFile != "" {
		cfg.CookiesFile = sc.CookiesFile
	}
	if cfg.OutputDir == "" && sc.OutputDir != "" {
		cfg.OutputDir = sc.OutputDir
	}
	if !cmd.Flags().Changed("max-pages") && sc.MaxPages > 0 {
		cfg.MaxPages = sc.MaxPages
	}
	if !cmd.Flags().Changed("user-agent") && sc.UserAgent != "" {
		cfg.UserAgent = sc.UserAgent
	}
}

// setupLogger creates a structured logger based on verbosity setting.
// The secure handler redacts session cookies and tokens so that log
// output never leaks the credentials used to reach authenticated spaces.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runMirror executes the mirror run.
func runMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting mirror",
		"space", cfg.SpaceKey,
		"baseURL", cfg.BaseURL,
		"outputDir", cfg.EffectiveOutputDir(),
		"maxPages", cfg.MaxPages,
		"saveToDB", cfg.SaveToDB,
	)

	space, err := confluence.NewSpace(cfg.BaseURL, cfg.SpaceKey)
	if err != nil {
		return fmt.Errorf("invalid space configuration: %w", err)
	}

	client, err := render.NewSessionClient(cfg.BaseURL, cfg.CookiesFile)
	if err != nil {
		return fmt.Errorf("failed to prepare HTTP session: %w", err)
	}

	renderer := render.NewHTTPRenderer(client, space,
		render.WithUserAgent(cfg.UserAgent),
		render.WithMaxBodySize(cfg.MaxBodySize),
	)

	// Open database connection if saving is enabled
	var db *database.MirrorDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	fmt.Printf("Crawling space %s at %s...\n", cfg.SpaceKey, cfg.BaseURL)
	startTime := time.Now()

	c := crawler.New(renderer, space,
		crawler.WithLogger(logger),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithNavigateTimeout(cfg.NavigateTimeout),
	)

	g, err := c.Crawl(ctx, cfg.StartPageURL())
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	fmt.Printf("Discovered %d pages; saving to %s...\n", g.Len(), cfg.EffectiveOutputDir())

	graph.AssignSlugs(g)
	layout, err := graph.NewLayout(g)
	if err != nil {
		return fmt.Errorf("failed to lay out mirror paths: %w", err)
	}

	resolver := rewrite.NewResolver(g, layout, space)

	fetcher, err := fetch.New(client, cfg.BaseURL,
		fetch.WithWorkers(cfg.AssetWorkers),
		fetch.WithTimeout(cfg.AssetTimeout),
		fetch.WithFetchLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create asset fetcher: %w", err)
	}

	m := mirror.New(g, layout, space, renderer, resolver, fetcher,
		cfg.EffectiveOutputDir(),
		mirror.WithLogger(logger),
		mirror.WithNavigateTimeout(cfg.NavigateTimeout),
	)

	result, err := m.Materialize(ctx)
	if err != nil {
		return fmt.Errorf("mirror failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Mirror completed in %s\n\n", elapsed.Round(time.Millisecond))

	// Generate and output report
	if err := outputReport(cfg, result); err != nil {
		logger.Error("report failed", "space", cfg.SpaceKey, "error", err)
	}

	// Save to database if enabled
	if err := saveRun(ctx, db, result, g, layout, logger); err != nil {
		logger.Error("failed to save run", "space", cfg.SpaceKey, "error", err)
	}

	return nil
}

// outputReport outputs the run report in the requested format.
func outputReport(cfg *config.Config, result *model.MirrorResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports list internal page URLs that should only be readable by the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output, report.WithPrettyPrint())
		_, err := writer.Write(result)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(result)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(result)
	return err
}

// saveRun records the run and its page inventory in the history database.
// If db is nil, this function is a no-op.
func saveRun(ctx context.Context, db *database.MirrorDB, result *model.MirrorResult,
	g *graph.Graph, layout *graph.Layout, logger *slog.Logger,
) error {
	if db == nil {
		return nil
	}

	runID, err := db.InsertRun(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	snap := mirror.BuildSnapshot(g, layout)
	if err := db.InsertPages(ctx, runID, snap); err != nil {
		return fmt.Errorf("failed to save run pages: %w", err)
	}

	logger.Info("run saved to database", "space", result.Space, "runID", runID)
	return nil
}
