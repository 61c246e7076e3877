package audio_downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Status is the per-task outcome of one Run.
type Status string

const (
	// StatusCached means the destination already held a non-empty file and
	// no network request was made.
	StatusCached = Status("cached")
	// StatusDownloaded means the file was fetched and placed atomically.
	StatusDownloaded = Status("downloaded")
	// StatusFailed means every attempt failed; no destination file exists.
	StatusFailed = Status("failed")
)

// Result pairs a task with its outcome. Err is set only for StatusFailed.
type Result struct {
	Task   Task
	Status Status
	Err    error
}

// Summary aggregates the outcomes of one Run. OK counts both fresh
// downloads and cached files, mirroring what the progress output reports.
type Summary struct {
	Total      int
	Downloaded int
	Cached     int
	Failed     int
}

// OK returns the number of tasks whose destination file is in place.
func (s Summary) OK() int {
	return s.Downloaded + s.Cached
}

func (s Summary) String() string {
	return fmt.Sprintf("ok=%d/%d (%d cached, %d failed)", s.OK(), s.Total, s.Cached, s.Failed)
}

// Logger is the subset of the application logger the downloader needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

const (
	defaultWorkers         = 8
	defaultDownloadTimeout = 60 * time.Second
	copyChunkSize          = 8 * 1024
	progressEvery          = 25
	tempSuffix             = ".part"
)

// Downloader runs batches of download tasks with a bounded worker pool.
type Downloader struct {
	http    *resty.Client
	workers int
	retry   RetryPolicy
	log     Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithWorkers sets the number of concurrent download workers (default 8).
func WithWorkers(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(d *Downloader) {
		d.retry = p
	}
}

// WithTimeout sets the per-attempt network timeout (default 60s).
func WithTimeout(timeout time.Duration) Option {
	return func(d *Downloader) {
		d.http.SetTimeout(timeout)
	}
}

// WithLogger sets the progress/warning logger. A nil logger silences output.
func WithLogger(log Logger) Option {
	return func(d *Downloader) {
		d.log = log
	}
}

// New creates a Downloader with the given options.
func New(opts ...Option) *Downloader {
	client := resty.New()
	client.SetTimeout(defaultDownloadTimeout)
	// Browser-like and harmless when the host ignores ranges.
	client.SetHeader("range", "bytes=0-")

	d := &Downloader{
		http:    client,
		workers: defaultWorkers,
		retry:   DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run fetches every task, deduplicated by (URL, Dest) pair, with up to the
// configured number of workers in flight at once. A single task failing
// never aborts the batch. Results are returned in first-seen task order.
// Cancelling the context stops dispatching new tasks; attempts already in
// flight run to completion.
func (d *Downloader) Run(ctx context.Context, tasks []Task) (Summary, []Result) {
	unique := Dedupe(tasks)
	results := make([]Result, len(unique))

	var (
		mu        sync.Mutex
		summary   = Summary{Total: len(unique)}
		processed int
	)

	type indexedTask struct {
		idx  int
		task Task
	}
	queue := make(chan indexedTask)

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range queue {
				res := d.runTask(ctx, it.task)
				results[it.idx] = res

				mu.Lock()
				processed++
				switch res.Status {
				case StatusDownloaded:
					summary.Downloaded++
				case StatusCached:
					summary.Cached++
				case StatusFailed:
					summary.Failed++
					if d.log != nil {
						d.log.Warn("download failed", "url", res.Task.URL, "error", res.Err)
					}
				}
				if d.log != nil && (processed%progressEvery == 0 || processed == summary.Total) {
					d.log.Info("download progress",
						"processed", processed, "total", summary.Total,
						"ok", summary.OK(), "cached", summary.Cached, "failed", summary.Failed)
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for i, task := range unique {
		select {
		case <-ctx.Done():
			// Undispatched tasks are reported as failed with the context error.
			mu.Lock()
			for j := i; j < len(unique); j++ {
				results[j] = Result{Task: unique[j], Status: StatusFailed, Err: ctx.Err()}
				summary.Failed++
				processed++
			}
			mu.Unlock()
			break dispatch
		case queue <- indexedTask{idx: i, task: task}:
		}
	}
	close(queue)
	wg.Wait()

	return summary, results
}

// runTask produces the outcome for a single task, retrying per the policy.
func (d *Downloader) runTask(ctx context.Context, task Task) Result {
	if info, err := os.Stat(task.Dest); err == nil && info.Size() > 0 {
		return Result{Task: task, Status: StatusCached}
	}

	var lastErr error
	for attempt := 1; attempt <= d.retry.MaxAttempts; attempt++ {
		lastErr = d.attempt(ctx, task)
		if lastErr == nil {
			return Result{Task: task, Status: StatusDownloaded}
		}
		if attempt < d.retry.MaxAttempts {
			select {
			case <-time.After(d.retry.Backoff(attempt)):
			case <-ctx.Done():
				return Result{Task: task, Status: StatusFailed, Err: ctx.Err()}
			}
		}
	}
	return Result{
		Task:   task,
		Status: StatusFailed,
		Err:    fmt.Errorf("download failed after %d attempts: %w", d.retry.MaxAttempts, lastErr),
	}
}

// attempt streams the remote file to a temporary sibling path and renames it
// onto the destination on success. The temporary file is removed on any
// failure, so a failed task leaves nothing behind.
func (d *Downloader) attempt(ctx context.Context, task Task) (err error) {
	if err := os.MkdirAll(filepath.Dir(task.Dest), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	resp, err := d.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(task.URL)
	if err != nil {
		return err
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.IsError() {
		return fmt.Errorf("HTTP %d fetching %s", resp.StatusCode(), task.URL)
	}

	tmpPath := task.Dest + tempSuffix
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = io.CopyBuffer(tmp, body, make([]byte, copyChunkSize)); err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush temporary file: %w", err)
	}
	if err = os.Rename(tmpPath, task.Dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to place downloaded file: %w", err)
	}
	return nil
}
