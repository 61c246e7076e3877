// Package flashcard_exporter turns fetched flashcards into tab-separated
// files, downloaded audio clips, and an optional Anki package. The pipeline
// is a straight line: fetch, partition into buckets, render rows, write one
// file per non-empty bucket, download referenced audio, package.
package flashcard_exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/anki_package"
	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/audio_downloader"
	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/filelock"
	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/logger"
	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/yoyo_api"
)

// SessionLike abstracts the authenticated API session for testability.
type SessionLike interface {
	FetchAll(ctx context.Context, filters yoyo_api.Filters, opts yoyo_api.FetchOptions, log yoyo_api.PageLogger) ([]yoyo_api.Flashcard, error)
}

// mediaDirName is the subdirectory of the output directory that holds
// downloaded audio files.
const mediaDirName = "media"

// Exporter sequences one export run.
type Exporter struct {
	session SessionLike
	outDir  string
	fs      FileSystemOperations
	log     logger.Logger

	format       Format
	includeAudio bool
	speed        yoyo_api.AudioSpeed
	workers      int
	deckName     string
	makePackage  bool
	packagePath  string
	fetchOpts    yoyo_api.FetchOptions
	audioBaseURL string
	retry        audio_downloader.RetryPolicy

	// dryRun disables all writes and downloads; the run only reports what
	// it would have produced. Immutable after construction.
	dryRun bool
}

// ExporterOption configures an Exporter at construction time.
type ExporterOption func(*Exporter)

// WithFileSystem replaces the file system implementation. Intended for tests.
func WithFileSystem(fs FileSystemOperations) ExporterOption {
	return func(e *Exporter) { e.fs = fs }
}

// WithLogger sets the logger used for progress and warnings.
func WithLogger(log logger.Logger) ExporterOption {
	return func(e *Exporter) { e.log = log }
}

// WithFormat selects the tabular row layout (default simple).
func WithFormat(f Format) ExporterOption {
	return func(e *Exporter) { e.format = f }
}

// WithAudio enables audio download and marker generation at the given speed.
func WithAudio(speed yoyo_api.AudioSpeed) ExporterOption {
	return func(e *Exporter) {
		e.includeAudio = true
		e.speed = speed
	}
}

// WithWorkers sets the audio download concurrency (default 8).
func WithWorkers(n int) ExporterOption {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithDeckName sets the base name used for output files and deck names.
func WithDeckName(name string) ExporterOption {
	return func(e *Exporter) {
		if name != "" {
			e.deckName = name
		}
	}
}

// WithPackage enables .apkg production. An empty path defaults to
// "<outDir>/<base name>.apkg".
func WithPackage(path string) ExporterOption {
	return func(e *Exporter) {
		e.makePackage = true
		e.packagePath = path
	}
}

// WithFetchOptions sets pagination options for the API fetch.
func WithFetchOptions(opts yoyo_api.FetchOptions) ExporterOption {
	return func(e *Exporter) { e.fetchOpts = opts }
}

// WithAudioBaseURL overrides the audio host prefix. Used in tests.
func WithAudioBaseURL(base string) ExporterOption {
	return func(e *Exporter) { e.audioBaseURL = base }
}

// WithRetryPolicy overrides the download retry policy. Used in tests.
func WithRetryPolicy(p audio_downloader.RetryPolicy) ExporterOption {
	return func(e *Exporter) { e.retry = p }
}

// WithDryRun sets the dryRun option.
func WithDryRun(dryRun bool) ExporterOption {
	return func(e *Exporter) { e.dryRun = dryRun }
}

// NewExporter creates an Exporter writing into outDir.
func NewExporter(session SessionLike, outDir string, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		session:      session,
		outDir:       outDir,
		fs:           &DefaultFileSystem{},
		log:          logger.Default(),
		format:       FormatSimple,
		speed:        yoyo_api.SpeedNormal,
		workers:      8,
		deckName:     "YoyoChinese",
		audioBaseURL: yoyo_api.DefaultAudioBaseURL,
		retry:        audio_downloader.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsDryRun returns true if the exporter is in dry-run mode.
func (e *Exporter) IsDryRun() bool {
	return e.dryRun
}

// bucket is one named group of cards in output order.
type bucket struct {
	key   string
	cards []yoyo_api.Flashcard
}

// Export fetches all cards matching the filters and writes them either as a
// single group or split by word-type label.
func (e *Exporter) Export(ctx context.Context, filters yoyo_api.Filters, splitByWordType bool) (ExportStats, error) {
	strategy := PartitionNone()
	if splitByWordType {
		strategy = PartitionByWordType()
	}

	cards, err := e.session.FetchAll(ctx, filters, e.fetchOpts, e.log)
	if err != nil {
		return ExportStats{}, fmt.Errorf("failed to fetch flashcards: %w", err)
	}
	e.log.Info("fetch complete", "cards", len(cards))

	return e.export(ctx, filters, bucketize(cards, strategy))
}

// ExportLevels fetches the course one level at a time and buckets the cards
// by level. Any level's fetch failing fails the whole run.
func (e *Exporter) ExportLevels(ctx context.Context, filters yoyo_api.Filters, courseID string) (ExportStats, error) {
	levelIDs, ok := yoyo_api.CourseLevels(courseID)
	if !ok {
		return ExportStats{}, fmt.Errorf("%w: %s", ErrNoLevelMapping, courseID)
	}
	filters.CourseID = courseID

	var buckets []bucket
	for i, levelID := range levelIDs {
		strategy := PartitionByLevel(i + 1)
		key := strategy.Buckets()[0]
		cards, err := e.session.FetchAll(ctx, filters.WithLevel(levelID), e.fetchOpts, e.log)
		if err != nil {
			return ExportStats{}, fmt.Errorf("failed to fetch flashcards for %s: %w", key, err)
		}
		e.log.Info("level fetch complete", "level", key, "cards", len(cards))
		buckets = append(buckets, bucket{key: key, cards: cards})
	}

	return e.export(ctx, filters, buckets)
}

// bucketize groups cards under a partition strategy, seeding the canonical
// bucket order and appending discovered keys in first-seen order.
func bucketize(cards []yoyo_api.Flashcard, strategy PartitionStrategy) []bucket {
	index := map[string]int{}
	var buckets []bucket
	add := func(key string) int {
		if i, ok := index[key]; ok {
			return i
		}
		buckets = append(buckets, bucket{key: key})
		index[key] = len(buckets) - 1
		return len(buckets) - 1
	}
	for _, key := range strategy.Buckets() {
		add(key)
	}
	for _, card := range cards {
		i := add(strategy.Key(card))
		buckets[i].cards = append(buckets[i].cards, card)
	}
	return buckets
}

// export runs the write/download/package stages over pre-partitioned buckets.
func (e *Exporter) export(ctx context.Context, filters yoyo_api.Filters, buckets []bucket) (ExportStats, error) {
	stats := ExportStats{}
	for _, b := range buckets {
		stats.Cards += len(b.cards)
	}

	if !e.dryRun {
		if err := os.MkdirAll(e.outDir, 0o755); err != nil {
			return stats, fmt.Errorf("failed to create output directory: %w", err)
		}
		lock, err := filelock.AcquireDir(e.outDir)
		if err != nil {
			return stats, fmt.Errorf("output directory %s is busy: %w", e.outDir, err)
		}
		defer lock.Release()
	}

	mediaDir := filepath.Join(e.outDir, mediaDirName)
	var tasks []audio_downloader.Task

	// Render and write one TSV per non-empty bucket, collecting download
	// tasks as a side product of row rendering.
	for _, b := range buckets {
		if len(b.cards) == 0 {
			continue
		}
		var lines strings.Builder
		for _, card := range b.cards {
			row := renderRow(e.format, card, e.includeAudio, e.speed)
			lines.WriteString(SerializeRow(row))
			lines.WriteByte('\n')
			if row.AudioFilename != "" {
				tasks = append(tasks, audio_downloader.Task{
					URL:  e.audioBaseURL + row.AudioFilename,
					Dest: filepath.Join(mediaDir, row.AudioFilename),
				})
			}
		}

		path := filepath.Join(e.outDir, e.tsvFileName(b.key))
		if e.dryRun {
			e.log.Info("dry run: would write tsv", "path", path, "rows", len(b.cards))
		} else {
			if err := e.fs.CreateFile(path, []byte(lines.String()), 0o755, 0o644); err != nil {
				return stats, TSVWriteError(err.Error())
			}
			e.log.Info("wrote tsv", "path", path, "rows", len(b.cards))
		}
		stats.TSVFiles = append(stats.TSVFiles, path)
	}
	if len(stats.TSVFiles) == 0 {
		e.log.Warn("no tsv written: no cards returned")
	}

	// Audio downloads never fail the run; the tabular output stands on its
	// own even when every download fails.
	var downloaded []audio_downloader.Result
	if len(tasks) > 0 {
		if e.dryRun {
			e.log.Info("dry run: would download audio", "files", len(audio_downloader.Dedupe(tasks)))
		} else {
			d := audio_downloader.New(
				audio_downloader.WithWorkers(e.workers),
				audio_downloader.WithRetryPolicy(e.retry),
				audio_downloader.WithLogger(e.log),
			)
			var summary audio_downloader.Summary
			summary, downloaded = d.Run(ctx, tasks)
			stats.AudioDownloaded = summary.Downloaded
			stats.AudioCached = summary.Cached
			stats.AudioFailed = summary.Failed
			e.log.Info("audio downloads completed", "summary", summary.String())
		}
	}

	if e.makePackage {
		if e.dryRun {
			e.log.Info("dry run: would write anki package", "path", e.resolvePackagePath(filters))
		} else if path, err := e.writePackage(filters, buckets, downloaded); err != nil {
			// Packaging failures degrade to a warning: the TSVs are written.
			e.log.Warn("skipping anki package", "error", err)
		} else {
			stats.PackagePath = path
			e.log.Info("wrote anki package", "path", path)
		}
	}

	return stats, nil
}

// tsvFileName names a bucket's output file from the deck name, the bucket
// key, and the format mode.
func (e *Exporter) tsvFileName(key string) string {
	if suffix := fileSuffix(key); suffix != "" {
		return fmt.Sprintf("%s.%s.%s.tsv", e.deckName, suffix, e.format)
	}
	return fmt.Sprintf("%s.%s.tsv", e.deckName, e.format)
}

// packageBaseName prefers the configured course display name so packages
// sort next to their course in Anki; otherwise the deck name is used.
func (e *Exporter) packageBaseName(filters yoyo_api.Filters) string {
	if filters.CourseID != "" {
		if name := yoyo_api.CourseName(filters.CourseID); name != filters.CourseID {
			return "YoyoChinese " + name
		}
	}
	return e.deckName
}

func (e *Exporter) resolvePackagePath(filters yoyo_api.Filters) string {
	if e.packagePath != "" {
		return e.packagePath
	}
	return filepath.Join(e.outDir, e.packageBaseName(filters)+".apkg")
}

// writePackage mirrors the bucket partition into Anki decks and bundles the
// successfully placed audio files.
func (e *Exporter) writePackage(filters yoyo_api.Filters, buckets []bucket, downloaded []audio_downloader.Result) (string, error) {
	base := e.packageBaseName(filters)
	model := anki_package.DefaultModel()

	var decks []*anki_package.Deck
	var media []string
	placed := map[string]struct{}{}
	for _, res := range downloaded {
		if res.Status == audio_downloader.StatusDownloaded || res.Status == audio_downloader.StatusCached {
			placed[res.Task.Dest] = struct{}{}
		}
	}

	mediaDir := filepath.Join(e.outDir, mediaDirName)
	for _, b := range buckets {
		if len(b.cards) == 0 {
			continue
		}
		deck := anki_package.NewDeck(deckName(base, b.key))
		for _, card := range b.cards {
			var audioField string
			if e.includeAudio {
				if fn := card.AudioFilename(e.speed); fn != "" {
					audioField = "[sound:" + fn + "]"
					dest := filepath.Join(mediaDir, fn)
					if _, ok := placed[dest]; ok {
						media = append(media, dest)
						delete(placed, dest) // each file embedded once
					}
				}
			}
			index := card.Code
			if index == "" {
				index = card.ID
			}
			deck.AddNote(anki_package.Note{
				Model: model,
				Fields: []string{
					index,
					card.Simplified,
					card.Traditional,
					card.Pinyin,
					card.English(),
					audioField,
				},
			})
		}
		decks = append(decks, deck)
	}

	path := e.resolvePackagePath(filters)
	pkg := &anki_package.Package{Decks: decks, MediaFiles: media}
	if err := pkg.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}
