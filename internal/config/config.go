package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on how server-rendered wiki instances
// typically behave and the limits a polite mirroring run should respect.
const (
	// DefaultNavigateTimeout bounds a single page load. Wiki pages on
	// loaded instances can take tens of seconds to render server-side,
	// so this is generous; a page that takes longer is treated as a
	// transient failure and skipped.
	DefaultNavigateTimeout = 45 * time.Second

	// DefaultMaxPages is the maximum number of pages to mirror per run.
	// This prevents runaway crawling on huge spaces (or spaces whose
	// navigation tree links outside themselves). Users can override this
	// via the --max-pages CLI flag.
	DefaultMaxPages = 1000

	// DefaultAssetWorkers is the number of concurrent asset downloads per
	// page. Assets write to independent files so parallelism is safe;
	// four keeps us polite toward the origin server.
	DefaultAssetWorkers = 4

	// DefaultAssetTimeout bounds a single asset download.
	DefaultAssetTimeout = 60 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "spacemirror"

	// DefaultUserAgent identifies spacemirror in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify mirroring traffic in their logs.
	DefaultUserAgent = "spacemirror/1.0 (+https://github.com/nao1215/spacemirror)"

	// DefaultMaxBodySize limits the maximum page body size to parse.
	// 10MB covers even very large wiki pages while preventing memory
	// exhaustion from unexpected responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Config holds all configuration options for spacemirror.
// This struct is designed to be populated from CLI flags and the optional
// .spacemirror file, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// BaseURL is the origin of the wiki instance, e.g.
	// "https://wiki.example.com". Required.
	BaseURL string

	// SpaceKey is the key of the document space to mirror, e.g. "DOCS".
	// Required.
	SpaceKey string

	// StartPage is where the crawl begins: either a full page URL or a
	// page title within the space. When empty, the space overview page
	// is used.
	StartPage string

	// CookiesFile is the path to a JSON file of session cookies exported
	// from an authenticated browser session. When empty, the crawl runs
	// unauthenticated.
	CookiesFile string

	// OutputDir is the mirror's output directory.
	// Defaults to "<SPACE>_offline" in the current directory.
	OutputDir string

	// MaxPages is the maximum number of pages to mirror.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// NavigateTimeout bounds a single page load during crawling and saving.
	NavigateTimeout time.Duration

	// AssetWorkers is the number of concurrent asset downloads per page.
	AssetWorkers int

	// AssetTimeout bounds a single asset download.
	AssetTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, informational progress and problems are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .spacemirror in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// SpaceConfigs holds per-space configurations loaded from the config
	// file. This is populated by LoadConfigFile.
	SpaceConfigs *File

	// DBDir is the directory path for storing the SQLite run history.
	// When empty, runs are not persisted.
	// Defaults to the XDG data directory when SaveToDB is set.
	DBDir string

	// SaveToDB indicates whether to record the run in the history database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum page body size in bytes to parse.
	// Set to 0 to use the default (10MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, limits).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		NavigateTimeout: DefaultNavigateTimeout,
		MaxPages:        DefaultMaxPages,
		AssetWorkers:    DefaultAssetWorkers,
		AssetTimeout:    DefaultAssetTimeout,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
	}
}

// EffectiveOutputDir returns the configured output directory, or the
// conventional "<SPACE>_offline" default next to where the tool runs.
func (c *Config) EffectiveOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return c.SpaceKey + "_offline"
}

// StartPageURL returns the absolute URL the crawl starts from.
// A StartPage that already carries a scheme is used as-is; otherwise it is
// treated as a page title within the space. An empty StartPage falls back
// to the space overview.
func (c *Config) StartPageURL() string {
	base := strings.TrimRight(c.BaseURL, "/")
	switch {
	case strings.Contains(c.StartPage, "://"):
		return c.StartPage
	case c.StartPage != "":
		return base + "/display/" + c.SpaceKey + "/" + url.PathEscape(c.StartPage)
	default:
		return base + "/display/" + c.SpaceKey
	}
}

// XDGDataDir returns the XDG data directory for spacemirror.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/spacemirror
// On macOS: ~/Library/Application Support/spacemirror
// On Windows: %LOCALAPPDATA%\spacemirror
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for spacemirror.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/spacemirror
// On macOS: ~/Library/Application Support/spacemirror
// On Windows: %APPDATA%\spacemirror
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for spacemirror.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/spacemirror
// On macOS: ~/Library/Caches/spacemirror
// On Windows: %LOCALAPPDATA%\spacemirror\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.SpaceKey == "" {
		return ErrNoSpaceKey
	}

	if c.NavigateTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.AssetWorkers <= 0 {
		return ErrInvalidAssetWorkers
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
