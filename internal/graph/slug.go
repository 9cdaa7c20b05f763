package graph

import (
	"net/url"
	"sort"
	"strings"
)

// maxSlugLength caps slug length to stay comfortably inside filesystem
// component limits even after a "-<id>" disambiguation suffix.
const maxSlugLength = 120

// windowsReserved lists device names that cannot be used as file or folder
// names on case-insensitive Windows filesystems. Slugs matching one of
// these are suffixed with "_page" before use.
var windowsReserved = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// FallbackTitle returns the deterministic display name used for pages
// whose real title was never observed.
func FallbackTitle(id string) string {
	return "page-" + id
}

// Sanitize converts a page title into a filesystem-safe slug.
//
// Path separators are stripped entirely rather than replaced, so a title
// like "Compressor/Inlet" collapses to "CompressorInlet" instead of
// nesting. Whitespace is removed, characters outside letters, digits,
// space, '_', '-' and '.' are dropped, leading/trailing dots and spaces
// are trimmed, and the result is capped at maxSlugLength. When nothing
// survives sanitization the fallback is used.
func Sanitize(title, fallback string) string {
	base := fallback
	if title != "" {
		s := title
		if unescaped, err := url.QueryUnescape(s); err == nil {
			s = unescaped
		}
		s = strings.ReplaceAll(s, "/", "")
		s = strings.ReplaceAll(s, "\\", "")

		var b strings.Builder
		for _, r := range s {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				b.WriteRune(r)
			case r == '_', r == '-', r == '.':
				b.WriteRune(r)
			case r == ' ' || r == '\t' || r == '\n' || r == '\r':
				// whitespace collapses to nothing: "Compressor Inlet"
				// becomes "CompressorInlet"
			}
		}
		if cleaned := b.String(); cleaned != "" {
			base = cleaned
		}
	}

	base = strings.Trim(base, ". ")
	if base == "" {
		base = fallback
	}
	if windowsReserved[strings.ToLower(base)] {
		base += "_page"
	}
	if len(base) > maxSlugLength {
		base = base[:maxSlugLength]
	}
	if base == "" {
		base = fallback
	}
	return base
}

// AssignSlugs finalizes a slug for every node in the graph.
//
// Nodes without a title first receive the deterministic fallback. Nodes
// are then grouped by parent and processed in (title, id) order so that a
// re-crawl of an unchanged space yields identical slugs. Within each
// sibling group slugs are case-insensitively unique; a collision is
// resolved by appending "-<id>", which always succeeds in one shot
// because ids are unique.
//
// Slugs are assigned exactly once; the graph must not be mutated afterward.
func AssignSlugs(g *Graph) {
	for _, id := range g.AllIDs() {
		n := g.GetOrCreate(id)
		if n.Title == "" {
			n.Title = FallbackTitle(id)
		}
	}

	byParent := make(map[string][]string)
	for _, id := range g.AllIDs() {
		n := g.GetOrCreate(id)
		byParent[n.ParentID] = append(byParent[n.ParentID], id)
	}

	for _, siblings := range byParent {
		sort.Slice(siblings, func(i, j int) bool {
			a := g.GetOrCreate(siblings[i])
			b := g.GetOrCreate(siblings[j])
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return a.ID < b.ID
		})

		used := make(map[string]bool)
		for _, id := range siblings {
			n := g.GetOrCreate(id)
			slug := Sanitize(n.Title, FallbackTitle(id))
			if used[strings.ToLower(slug)] {
				slug = slug + "-" + id
			}
			n.Slug = slug
			used[strings.ToLower(slug)] = true
		}
	}
}
