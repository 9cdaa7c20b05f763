package config

// SpaceConfig holds per-space configuration.
// This allows keeping the settings of several mirrored spaces in one file
// and switching between them with just --space.
type SpaceConfig struct {
	// BaseURL is the wiki origin for this space.
	BaseURL string `yaml:"baseURL,omitempty"`

	// StartPage is where the crawl begins: a full page URL or a page
	// title within the space.
	StartPage string `yaml:"startPage,omitempty"`

	// CookiesFile is the path to the session cookie file for this space.
	CookiesFile string `yaml:"cookiesFile,omitempty"`

	// OutputDir overrides the default "<SPACE>_offline" output directory.
	OutputDir string `yaml:"outputDir,omitempty"`

	// MaxPages overrides the global page limit for this space.
	// If zero, the global limit is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// UserAgent overrides the User-Agent header for this space.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .spacemirror configuration file.
type File struct {
	// Spaces maps space keys to their configurations.
	Spaces map[string]SpaceConfig `yaml:"spaces,omitempty"`

	// Defaults contains default space configuration applied to all spaces
	// unless overridden in the space-specific configuration.
	Defaults SpaceConfig `yaml:"defaults,omitempty"`
}

// GetSpaceConfig returns the configuration for a specific space key.
// It merges the space-specific configuration with defaults.
func (cf *File) GetSpaceConfig(spaceKey string) SpaceConfig {
	// Start with defaults
	result := cf.Defaults

	if sc, ok := cf.Spaces[spaceKey]; ok {
		if sc.BaseURL != "" {
			result.BaseURL = sc.BaseURL
		}
		if sc.StartPage != "" {
			result.StartPage = sc.StartPage
		}
		if sc.CookiesFile != "" {
			result.CookiesFile = sc.CookiesFile
		}
		if sc.OutputDir != "" {
			result.OutputDir = sc.OutputDir
		}
		if sc.MaxPages != 0 {
			result.MaxPages = sc.MaxPages
		}
		if sc.UserAgent != "" {
			result.UserAgent = sc.UserAgent
		}
	}

	return result
}
