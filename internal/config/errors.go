package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoBaseURL is returned when no wiki origin is configured.
	ErrNoBaseURL = errors.New("no base URL specified: set --base-url or the baseURL config entry")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http(s) URL with a host.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be absolute, e.g. https://wiki.example.com")

	// ErrNoSpaceKey is returned when no space key is configured.
	ErrNoSpaceKey = errors.New("no space key specified: set --space or the spaceKey config entry")

	// ErrInvalidTimeout is returned when the navigation timeout is not positive.
	// A timeout of zero or negative would cause immediate page-load failures.
	ErrInvalidTimeout = errors.New("invalid navigate timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is not positive.
	// A limit of zero would mean mirroring nothing.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidAssetWorkers is returned when the asset worker count is not
	// positive. Zero workers would stall every asset download.
	ErrInvalidAssetWorkers = errors.New("invalid asset workers: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
