// Package audio_downloader fetches remote audio clips to local files with
// bounded parallelism, per-task retry with backoff, and atomic placement of
// completed files. It is safe to re-run against a partially populated
// destination directory: existing non-empty files are skipped without a
// network call.
package audio_downloader

import "fmt"

// Task is one remote file to fetch to a local destination path.
// Uniqueness is by the (URL, Dest) pair.
type Task struct {
	URL  string
	Dest string
}

func (t Task) String() string {
	return fmt.Sprintf("%s -> %s", t.URL, t.Dest)
}

// Dedupe removes duplicate (URL, Dest) pairs, keeping the first occurrence
// and preserving order. The same URL requested for two different
// destinations remains two tasks.
func Dedupe(tasks []Task) []Task {
	seen := make(map[Task]struct{}, len(tasks))
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := seen[task]; ok {
			continue
		}
		seen[task] = struct{}{}
		out = append(out, task)
	}
	return out
}
