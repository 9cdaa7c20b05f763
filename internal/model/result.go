package model

import "time"

// Failure stages recorded during a mirror run.
const (
	// StageRender marks a page that could not be rendered.
	StageRender = "render"

	// StageIdentity marks a page whose canonical id could not be read.
	StageIdentity = "identity"

	// StageAsset marks an asset that could not be downloaded.
	StageAsset = "asset"

	// StageWrite marks a page file that could not be written to disk.
	StageWrite = "write"

	// StageParent marks a rejected parent assignment (would create a cycle).
	StageParent = "parent"
)

// Failure records one non-fatal problem encountered during a run.
// Failures never abort the run; they are collected for the final report.
type Failure struct {
	// PageID is the canonical id of the affected page, if known.
	PageID string `json:"page_id,omitempty"`

	// URL is the URL involved in the failure.
	URL string `json:"url,omitempty"`

	// Stage identifies where the failure happened (see Stage constants).
	Stage string `json:"stage"`

	// Message is the human-readable error text.
	Message string `json:"message"`
}

// MirrorResult summarizes one completed mirror run.
// It feeds the report writers and the run history database.
type MirrorResult struct {
	// Space is the key of the mirrored space.
	Space string `json:"space"`

	// RootID is the canonical id of the root page.
	RootID string `json:"root_id"`

	// OutputDir is the mirror root directory on disk.
	OutputDir string `json:"output_dir"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// PagesDiscovered is the number of logical pages in the final graph.
	PagesDiscovered int `json:"pages_discovered"`

	// PagesWritten is the number of page files successfully written.
	PagesWritten int `json:"pages_written"`

	// AssetsDownloaded is the number of assets fetched during the run.
	AssetsDownloaded int `json:"assets_downloaded"`

	// AssetsSkipped is the number of assets skipped because an up-to-date
	// local copy already existed.
	AssetsSkipped int `json:"assets_skipped"`

	// Failures lists every non-fatal problem encountered.
	Failures []Failure `json:"failures,omitempty"`
}

// AddFailure appends a failure record to the result.
func (r *MirrorResult) AddFailure(pageID, url, stage string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.Failures = append(r.Failures, Failure{
		PageID:  pageID,
		URL:     url,
		Stage:   stage,
		Message: msg,
	})
}

// Complete reports whether the run finished without any failures.
func (r *MirrorResult) Complete() bool {
	return len(r.Failures) == 0
}
