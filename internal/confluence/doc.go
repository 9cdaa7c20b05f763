// Package confluence understands the URL shapes of a Confluence-style
// document space.
//
// A single logical page is reachable through several URL forms:
//
//   - /display/<SPACE>/<Title>
//   - /pages/viewpage.action?pageId=<id>
//   - /pages/viewpage.action?spaceKey=<SPACE>&title=<Title>
//
// The Space type classifies raw hrefs found in content: it normalizes them
// against the configured origin, filters out action/administrative
// endpoints that are not followable content references, extracts page ids
// and space/title pairs, and recognizes user-profile links. Title matching
// is done on a normalized form (URL-decoded, whitespace-collapsed,
// case-folded) so that URL-encoded and display variants of the same title
// compare equal.
package confluence
