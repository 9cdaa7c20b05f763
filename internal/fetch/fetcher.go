package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Fetcher downloads binary assets over HTTP.
// Safe for concurrent use; FetchAll fans out over a bounded pool.
type Fetcher struct {
	// client performs the downloads. Shares the session cookie jar with
	// the renderer so authenticated attachments resolve.
	client *http.Client

	// base resolves scheme-relative and path-relative asset URLs.
	base *url.URL

	// workers bounds concurrent downloads in FetchAll.
	workers int

	// timeout bounds each individual download.
	timeout time.Duration

	// logger is used for download logging.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithWorkers sets the maximum number of concurrent downloads.
func WithWorkers(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithTimeout bounds each individual download.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithFetchLogger sets a custom logger.
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher resolving relative asset URLs against baseURL.
func New(client *http.Client, baseURL string, opts ...FetcherOption) (*Fetcher, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	f := &Fetcher{
		client:  client,
		base:    base,
		workers: 4,
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f, nil
}

// Job is one asset download request.
type Job struct {
	// URL is the asset's remote URL, absolute or relative to the base.
	URL string

	// Dir is the destination directory.
	Dir string
}

// Result is the outcome of one Job.
type Result struct {
	// Job echoes the request.
	Job Job

	// Filename is the local file name inside Job.Dir on success.
	Filename string

	// Skipped reports that an up-to-date local copy already existed.
	Skipped bool

	// Err is non-nil when the download failed.
	Err error
}

// SanitizeFilename derives a safe local file name from an asset URL:
// the last path segment, URL-decoded, with everything outside letters,
// digits, '.', '_' and '-' replaced by underscores.
func SanitizeFilename(rawURL string) string {
	name := rawURL
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if unescaped, err := url.QueryUnescape(name); err == nil {
		name = unescaped
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// Fetch downloads one asset into dir and returns its local file name.
// The download is skipped when a local file of matching byte size
// already exists. A failed download removes any partial file.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dir string) (Result, error) {
	job := Job{URL: rawURL, Dir: dir}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Result{Job: job, Err: err}, err
	}
	abs := f.base.ResolveReference(u)

	filename := SanitizeFilename(abs.String())
	dest := filepath.Join(dir, filename)

	if err := os.MkdirAll(dir, 0750); err != nil {
		return Result{Job: job, Err: err}, err
	}

	fetchCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, abs.String(), nil)
	if err != nil {
		return Result{Job: job, Err: err}, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{Job: job, Err: err}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err := fmt.Errorf("download failed with status %d", resp.StatusCode)
		return Result{Job: job, Err: err}, err
	}

	// Idempotent re-run: an existing file of the advertised size is
	// already up to date.
	if info, statErr := os.Stat(dest); statErr == nil &&
		resp.ContentLength > 0 && info.Size() == resp.ContentLength {
		f.logger.Debug("asset up to date, skipping", "file", filename)
		return Result{Job: job, Filename: filename, Skipped: true}, nil
	}

	out, err := os.Create(dest) //nolint:gosec // Destination derives from the sanitized filename
	if err != nil {
		return Result{Job: job, Err: err}, err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest) // do not leave a truncated asset behind
		return Result{Job: job, Err: err}, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return Result{Job: job, Err: err}, err
	}

	f.logger.Debug("downloaded asset", "url", abs.String(), "file", filename)
	return Result{Job: job, Filename: filename}, nil
}

// FetchAll downloads a batch of assets through a bounded worker pool and
// returns one Result per job, in job order. Individual failures are
// reported in the results, never as an error; only context cancellation
// aborts the batch.
func (f *Fetcher) FetchAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	var mu sync.Mutex
	for i, job := range jobs {
		g.Go(func() error {
			res, _ := f.Fetch(groupCtx, job.URL, job.Dir)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in results
	return results
}
