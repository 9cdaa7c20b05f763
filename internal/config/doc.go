// Package config provides configuration structures and utilities for
// spacemirror. It defines the main options for the space to mirror, crawl
// limits, asset downloading, and report generation preferences.
package config
