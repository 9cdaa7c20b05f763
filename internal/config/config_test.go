package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	c := NewConfig()
	c.BaseURL = "https://wiki.example.com"
	c.SpaceKey = "DOCS"
	return c
}

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	if c.NavigateTimeout != DefaultNavigateTimeout {
		t.Errorf("NavigateTimeout = %v, want %v", c.NavigateTimeout, DefaultNavigateTimeout)
	}
	if c.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", c.MaxPages, DefaultMaxPages)
	}
	if c.AssetWorkers != DefaultAssetWorkers {
		t.Errorf("AssetWorkers = %d, want %d", c.AssetWorkers, DefaultAssetWorkers)
	}
	if c.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want %q", c.UserAgent, DefaultUserAgent)
	}
	if c.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("MaxBodySize = %d, want %d", c.MaxBodySize, DefaultMaxBodySize)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantErr: ErrNoBaseURL,
		},
		{
			name:    "relative base URL",
			mutate:  func(c *Config) { c.BaseURL = "wiki.example.com/path" },
			wantErr: ErrInvalidBaseURL,
		},
		{
			name:    "missing space key",
			mutate:  func(c *Config) { c.SpaceKey = "" },
			wantErr: ErrNoSpaceKey,
		},
		{
			name:    "zero navigate timeout",
			mutate:  func(c *Config) { c.NavigateTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "zero asset workers",
			mutate:  func(c *Config) { c.AssetWorkers = 0 },
			wantErr: ErrInvalidAssetWorkers,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "negative max body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartPageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		startPage string
		want      string
	}{
		{
			name:      "empty start page uses space overview",
			startPage: "",
			want:      "https://wiki.example.com/display/DOCS",
		},
		{
			name:      "title becomes display URL",
			startPage: "Getting Started",
			want:      "https://wiki.example.com/display/DOCS/Getting%20Started",
		},
		{
			name:      "full URL passes through",
			startPage: "https://wiki.example.com/pages/viewpage.action?pageId=42",
			want:      "https://wiki.example.com/pages/viewpage.action?pageId=42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := validConfig()
			c.StartPage = tt.startPage
			if got := c.StartPageURL(); got != tt.want {
				t.Errorf("StartPageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEffectiveOutputDir(t *testing.T) {
	t.Parallel()

	c := validConfig()
	if got := c.EffectiveOutputDir(); got != "DOCS_offline" {
		t.Errorf("EffectiveOutputDir() = %q, want DOCS_offline", got)
	}

	c.OutputDir = "/srv/mirrors/docs"
	if got := c.EffectiveOutputDir(); got != "/srv/mirrors/docs" {
		t.Errorf("EffectiveOutputDir() = %q, want /srv/mirrors/docs", got)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		content := `
defaults:
  baseURL: https://wiki.example.com
  cookiesFile: cookies.json
spaces:
  DOCS:
    startPage: Home
    maxPages: 500
  OPS:
    baseURL: https://ops.example.com
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}

		docs := cf.GetSpaceConfig("DOCS")
		if docs.BaseURL != "https://wiki.example.com" {
			t.Errorf("DOCS baseURL = %q, want the default", docs.BaseURL)
		}
		if docs.StartPage != "Home" || docs.MaxPages != 500 {
			t.Errorf("DOCS config = %+v", docs)
		}
		if docs.CookiesFile != "cookies.json" {
			t.Errorf("DOCS cookiesFile = %q, want the default", docs.CookiesFile)
		}

		ops := cf.GetSpaceConfig("OPS")
		if ops.BaseURL != "https://ops.example.com" {
			t.Errorf("OPS baseURL = %q, want the override", ops.BaseURL)
		}

		unknown := cf.GetSpaceConfig("NOPE")
		if unknown.BaseURL != "https://wiki.example.com" {
			t.Errorf("unknown space must fall back to defaults, got %+v", unknown)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("LoadConfigFile() = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(":\tnot yaml"), 0600); err != nil {
			t.Fatalf("writing config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("LoadConfigFile() must fail on malformed YAML")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("spaces: {}"), 0600); err != nil {
			t.Fatalf("writing config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile(%q) = %q", path, got)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if dir == "" {
			t.Errorf("%s dir is empty", name)
		}
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q must end in %q", name, dir, AppName)
		}
	}
}

func TestDefaultNavigateTimeoutIsGenerous(t *testing.T) {
	t.Parallel()

	if DefaultNavigateTimeout < 30*time.Second {
		t.Errorf("DefaultNavigateTimeout = %v, want at least 30s", DefaultNavigateTimeout)
	}
}
