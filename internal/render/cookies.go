package render

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"

	"golang.org/x/net/publicsuffix"
)

// cookieRecord is one entry in the persisted cookie file. The format is a
// plain JSON array so that a session exported from a browser or an earlier
// run can be fed back in.
type cookieRecord struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
	Secure bool   `json:"secure,omitempty"`
}

// LoadCookieFile reads session cookies from a JSON file.
// A missing file is not an error; the run simply starts unauthenticated.
func LoadCookieFile(path string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided cookie path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var records []cookieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file %s: %w", path, err)
	}

	cookies := make([]*http.Cookie, 0, len(records))
	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:   rec.Name,
			Value:  rec.Value,
			Domain: rec.Domain,
			Path:   rec.Path,
			Secure: rec.Secure,
		})
	}
	return cookies, nil
}

// NewSessionClient builds an HTTP client whose cookie jar carries the
// cookies loaded from cookieFile (if any) for the given origin.
func NewSessionClient(baseURL, cookieFile string) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if cookieFile != "" {
		cookies, err := LoadCookieFile(cookieFile)
		if err != nil {
			return nil, err
		}
		if len(cookies) > 0 {
			origin, err := url.Parse(baseURL)
			if err != nil {
				return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
			}
			jar.SetCookies(origin, cookies)
		}
	}

	return &http.Client{Jar: jar}, nil
}
