// Package main provides the entry point for the spacemirror CLI.
//
// spacemirror creates a self-contained offline copy of a wiki document
// space: it crawls the space's page hierarchy, downloads pages and their
// assets, and rewrites links so the copy can be browsed from disk.
//
// Usage:
//
//	spacemirror mirror --base-url https://wiki.example.com --space DOCS
//	spacemirror history DOCS
//
// See --help for all available options.
package main

// main is the entry point for spacemirror.
func main() {
	Execute()
}
