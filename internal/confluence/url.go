package confluence

import (
	"fmt"
	"net/url"
	"strings"
)

// restrictedPaths lists action and administrative endpoints that look like
// in-space links but are not followable content references. Links whose
// path contains one of these are left untouched in the output.
var restrictedPaths = []string{
	"/pages/copypage.action",
	"/pages/copyscaffoldfromajax.action",
	"/pages/createpage.action",
	"/usage/report.action",
	"/plugins/confanalytics/analytics.action",
	"/spaces/viewspacesummary.action",
	"/collector/pages.action",
	"/pages/reorderpages.action",
	"undefined",
}

// Space describes the bounded document collection being mirrored:
// one origin plus one space key.
type Space struct {
	// base is the parsed origin URL, without a trailing slash.
	base *url.URL

	// key is the space key, e.g. "DOCS".
	key string
}

// NewSpace creates a Space for the given origin URL and space key.
func NewSpace(baseURL, key string) (*Space, error) {
	trimmed := strings.TrimRight(baseURL, "/")
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute with scheme and host", baseURL)
	}
	if key == "" {
		return nil, fmt.Errorf("space key must not be empty")
	}
	return &Space{base: u, key: key}, nil
}

// Key returns the space key.
func (s *Space) Key() string {
	return s.key
}

// BaseURL returns the configured origin without a trailing slash.
func (s *Space) BaseURL() string {
	return s.base.String()
}

// Resolve makes a possibly-relative href absolute against the origin.
func (s *Space) Resolve(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	return s.base.ResolveReference(u), nil
}

// Clean normalizes a raw href into an absolute, followable in-space URL.
// The second return value is false when the href is not a content
// reference: different scheme or host, a restricted action endpoint, or a
// label-browsing path. The fragment and all query parameters except the
// identity-carrying ones (pageId, or the spaceKey/title pair of the
// viewpage.action form) are dropped.
func (s *Space) Clean(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := s.Resolve(raw)
	if err != nil {
		return "", false
	}
	if !strings.EqualFold(u.Scheme, s.base.Scheme) || !strings.EqualFold(u.Host, s.base.Host) {
		return "", false
	}
	full := u.String()
	for _, bad := range restrictedPaths {
		if strings.Contains(full, bad) {
			return "", false
		}
	}
	if strings.Contains(u.Path, "/label/") {
		return "", false
	}

	// Identity lives in the query; keep pageId when present, otherwise
	// the spaceKey/title pair of the title-based form, drop everything else.
	pid := PageID(u)
	q := u.Query()
	u.Fragment = ""
	u.RawQuery = ""
	switch {
	case pid != "":
		u.RawQuery = "pageId=" + pid
	case strings.HasSuffix(u.Path, "/pages/viewpage.action"):
		kept := url.Values{}
		if v := q.Get("spaceKey"); v != "" {
			kept.Set("spaceKey", v)
		}
		if v := q.Get("title"); v != "" {
			kept.Set("title", v)
		}
		u.RawQuery = kept.Encode()
	}
	return u.String(), true
}

// SameSpace reports whether the URL's space key matches this space.
func (s *Space) SameSpace(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	space, _ := SpaceAndTitle(u)
	return strings.EqualFold(space, s.key)
}

// ViewPageURL returns the canonical URL template for a page id. It is the
// fallback used to (re)visit a page for which no URL was ever observed.
func (s *Space) ViewPageURL(id string) string {
	return s.base.String() + "/pages/viewpage.action?pageId=" + url.QueryEscape(id)
}

// DisplayURL returns the /display/<space>/<title> URL for a page title.
func (s *Space) DisplayURL(title string) string {
	return s.base.String() + "/display/" + url.PathEscape(s.key) + "/" + url.PathEscape(title)
}

// ProfileUser extracts the user reference from a /display/~<user> profile
// link. Such links are mapped to mailto: references instead of page
// resolution.
func ProfileUser(u *url.URL) (string, bool) {
	parts := splitPath(u.Path)
	for i, p := range parts {
		if p == "display" && i+1 < len(parts) && strings.HasPrefix(parts[i+1], "~") {
			user, err := url.PathUnescape(strings.TrimPrefix(parts[i+1], "~"))
			if err != nil || user == "" {
				return "", false
			}
			return user, true
		}
	}
	return "", false
}

// PageID extracts the explicit pageId query parameter from a
// viewpage.action URL, or empty if absent.
func PageID(u *url.URL) string {
	if !strings.HasSuffix(u.Path, "/pages/viewpage.action") {
		return ""
	}
	return u.Query().Get("pageId")
}

// PageIDFromURL is PageID for a raw URL string.
func PageIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return PageID(u)
}

// SpaceAndTitle extracts the space key and page title encoded in a URL.
// It understands the /display/<space>/<title> path form and the
// viewpage.action?spaceKey=&title= query form. Either value may be empty.
func SpaceAndTitle(u *url.URL) (space, title string) {
	parts := splitPath(u.Path)
	for i, p := range parts {
		if p != "display" {
			continue
		}
		if i+1 < len(parts) && !strings.HasPrefix(parts[i+1], "~") {
			space = parts[i+1]
		}
		if i+2 < len(parts) {
			if t, err := url.PathUnescape(parts[i+2]); err == nil {
				title = strings.ReplaceAll(t, "+", " ")
			}
		}
		return space, title
	}

	if strings.HasSuffix(u.Path, "/pages/viewpage.action") {
		q := u.Query()
		space = q.Get("spaceKey")
		title = strings.ReplaceAll(q.Get("title"), "+", " ")
	}
	return space, title
}

// splitPath splits a URL path into non-empty segments.
func splitPath(p string) []string {
	raw := strings.Split(p, "/")
	out := raw[:0]
	for _, seg := range raw {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
