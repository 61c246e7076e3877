package flashcard_exporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/audio_downloader"
	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/filelock"
	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/logger"
	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/yoyo_api"
)

// beginnerCourseID is a course with a configured level mapping.
const beginnerCourseID = "5f9c5382c32d410f1447bee9"

// stubSession serves canned cards keyed by level ID, or the flat list when
// no level restriction is set.
type stubSession struct {
	cards        []yoyo_api.Flashcard
	cardsByLevel map[string][]yoyo_api.Flashcard
	err          error
	calls        []yoyo_api.Filters
}

func (s *stubSession) FetchAll(ctx context.Context, filters yoyo_api.Filters, opts yoyo_api.FetchOptions, log yoyo_api.PageLogger) ([]yoyo_api.Flashcard, error) {
	s.calls = append(s.calls, filters)
	if s.err != nil {
		return nil, s.err
	}
	if filters.LevelID != "" {
		return s.cardsByLevel[filters.LevelID], nil
	}
	return s.cards, nil
}

// mockFileSystem records created files instead of touching the disk.
type mockFileSystem struct {
	files map[string][]byte
}

func newMockFileSystem() *mockFileSystem {
	return &mockFileSystem{files: map[string][]byte{}}
}

func (fs *mockFileSystem) CreateFile(filename string, data []byte, dirPerm, filePerm os.FileMode) error {
	fs.files[filename] = data
	return nil
}

func makeCard(id string, wordType int) yoyo_api.Flashcard {
	card := sampleCard()
	card.ID = id
	card.Code = "code-" + id
	card.WordType = intPtr(wordType)
	card.AudioCodeNormal = "audio-" + id
	return card
}

func TestExportSingleBucket(t *testing.T) {
	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("a", 2), makeCard("b", 3)}}
	fs := newMockFileSystem()
	outDir := t.TempDir()

	e := NewExporter(session, outDir,
		WithFileSystem(fs),
		WithLogger(logger.Discard()),
		WithDeckName("MyDeck"),
	)
	stats, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), false)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Cards)
	require.Len(t, stats.TSVFiles, 1)

	path := filepath.Join(outDir, "MyDeck.simple.tsv")
	assert.Equal(t, path, stats.TSVFiles[0])
	content, ok := fs.files[path]
	require.True(t, ok)

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "你好\tnǐ hǎo — hello", lines[0])
}

func TestExportSplitByWordType(t *testing.T) {
	session := &stubSession{cards: []yoyo_api.Flashcard{
		makeCard("s1", 3),
		makeCard("w1", 2),
		makeCard("w2", 2),
	}}
	fs := newMockFileSystem()
	outDir := t.TempDir()

	e := NewExporter(session, outDir,
		WithFileSystem(fs),
		WithLogger(logger.Discard()),
		WithDeckName("MyDeck"),
		WithFormat(FormatRich),
	)
	stats, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), true)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Cards)

	// Word precedes Sentence in the canonical order even though a sentence
	// card arrived first; the empty unlabeled bucket produces no file.
	require.Equal(t, []string{
		filepath.Join(outDir, "MyDeck.word.rich.tsv"),
		filepath.Join(outDir, "MyDeck.sentence.rich.tsv"),
	}, stats.TSVFiles)

	word := string(fs.files[stats.TSVFiles[0]])
	assert.Len(t, strings.Split(strings.TrimRight(word, "\n"), "\n"), 2)
}

func TestExportUnlabeledCardsGoToDefaultBucket(t *testing.T) {
	unlabeled := makeCard("u1", 2)
	unlabeled.WordType = nil
	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("w1", 2), unlabeled}}
	fs := newMockFileSystem()
	outDir := t.TempDir()

	e := NewExporter(session, outDir, WithFileSystem(fs), WithLogger(logger.Discard()), WithDeckName("Deck"))
	stats, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), true)

	require.NoError(t, err)
	assert.Contains(t, stats.TSVFiles, filepath.Join(outDir, "Deck.word.simple.tsv"))
	assert.Contains(t, stats.TSVFiles, filepath.Join(outDir, "Deck.simple.tsv"))
}

func TestExportFetchErrorAborts(t *testing.T) {
	session := &stubSession{err: yoyo_api.APIError("boom")}
	e := NewExporter(session, t.TempDir(), WithLogger(logger.Discard()))

	_, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch flashcards")
}

func TestExportDownloadsAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "payload for %s", r.URL.Path)
	}))
	defer server.Close()

	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("a", 2), makeCard("b", 2)}}
	outDir := t.TempDir()

	e := NewExporter(session, outDir,
		WithLogger(logger.Discard()),
		WithAudio(yoyo_api.SpeedNormal),
		WithAudioBaseURL(server.URL+"/"),
		WithWorkers(2),
	)
	stats, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), false)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.AudioDownloaded)
	assert.Zero(t, stats.AudioFailed)
	assert.Equal(t, 2, stats.AudioOK())

	for _, name := range []string{"audio-a.mp3", "audio-b.mp3"} {
		data, err := os.ReadFile(filepath.Join(outDir, "media", name))
		require.NoError(t, err)
		assert.Equal(t, "payload for /"+name, string(data))
	}
}

func TestExportAudioFailureDoesNotFailRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("a", 2)}}
	outDir := t.TempDir()

	e := NewExporter(session, outDir,
		WithLogger(logger.Discard()),
		WithAudio(yoyo_api.SpeedNormal),
		WithAudioBaseURL(server.URL+"/"),
		WithRetryPolicy(audio_downloader.RetryPolicy{
			MaxAttempts: 2,
			BaseDelay:   time.Millisecond,
			Multiplier:  1,
		}),
	)
	stats, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), false)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.AudioFailed)
	assert.Zero(t, stats.AudioOK())

	// The tabular output is still written.
	require.Len(t, stats.TSVFiles, 1)
	_, statErr := os.Stat(stats.TSVFiles[0])
	assert.NoError(t, statErr)
}

func TestExportLevelsUnknownCourse(t *testing.T) {
	e := NewExporter(&stubSession{}, t.TempDir(), WithLogger(logger.Discard()))

	_, err := e.ExportLevels(context.Background(), yoyo_api.NewFilters("all"), "no-such-course")

	assert.ErrorIs(t, err, ErrNoLevelMapping)
}

func TestExportLevelsBucketsByLevel(t *testing.T) {
	levels, ok := yoyo_api.CourseLevels(beginnerCourseID)
	require.True(t, ok)
	require.Len(t, levels, 6)

	session := &stubSession{cardsByLevel: map[string][]yoyo_api.Flashcard{
		levels[0]: {makeCard("a", 2), makeCard("b", 2)},
		levels[2]: {makeCard("c", 3)},
	}}
	fs := newMockFileSystem()
	outDir := t.TempDir()

	e := NewExporter(session, outDir, WithFileSystem(fs), WithLogger(logger.Discard()), WithDeckName("Deck"))
	stats, err := e.ExportLevels(context.Background(), yoyo_api.NewFilters("all"), beginnerCourseID)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Cards)
	require.Equal(t, []string{
		filepath.Join(outDir, "Deck.level1.simple.tsv"),
		filepath.Join(outDir, "Deck.level3.simple.tsv"),
	}, stats.TSVFiles)

	// One fetch per level, each scoped to that level's ID.
	require.Len(t, session.calls, 6)
	for i, call := range session.calls {
		assert.Equal(t, beginnerCourseID, call.CourseID)
		assert.Equal(t, levels[i], call.LevelID)
	}
}

func TestExportLevelsFetchErrorAborts(t *testing.T) {
	session := &stubSession{err: yoyo_api.APIError("boom")}
	e := NewExporter(session, t.TempDir(), WithLogger(logger.Discard()))

	_, err := e.ExportLevels(context.Background(), yoyo_api.NewFilters("all"), beginnerCourseID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level 1")
	assert.Len(t, session.calls, 1)
}

func TestExportDryRunWritesNothing(t *testing.T) {
	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("a", 2)}}
	outDir := filepath.Join(t.TempDir(), "out")

	e := NewExporter(session, outDir,
		WithLogger(logger.Discard()),
		WithAudio(yoyo_api.SpeedNormal),
		WithPackage(""),
		WithDryRun(true),
	)
	stats, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), false)

	require.NoError(t, err)
	assert.True(t, e.IsDryRun())
	assert.Equal(t, 1, stats.Cards)
	assert.Len(t, stats.TSVFiles, 1)
	assert.Empty(t, stats.PackagePath)

	// The output directory itself is never created in a dry run.
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportLockedOutputDirRefused(t *testing.T) {
	outDir := t.TempDir()
	lock, err := filelock.AcquireDir(outDir)
	require.NoError(t, err)
	defer lock.Release()

	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("a", 2)}}
	e := NewExporter(session, outDir, WithLogger(logger.Discard()))

	_, err = e.Export(context.Background(), yoyo_api.NewFilters("all"), false)

	assert.ErrorIs(t, err, filelock.ErrLockHeld)
}

func TestExportReleasesLockOnCompletion(t *testing.T) {
	outDir := t.TempDir()
	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("a", 2)}}
	e := NewExporter(session, outDir, WithFileSystem(newMockFileSystem()), WithLogger(logger.Discard()))

	_, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), false)
	require.NoError(t, err)

	lock, err := filelock.AcquireDir(outDir)
	require.NoError(t, err)
	lock.Release()
}

func TestExportWritesAnkiPackage(t *testing.T) {
	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("a", 2), makeCard("b", 3)}}
	outDir := t.TempDir()

	e := NewExporter(session, outDir,
		WithLogger(logger.Discard()),
		WithDeckName("Deck"),
		WithPackage(""),
	)
	filters := yoyo_api.NewFilters("all")
	filters.CourseID = beginnerCourseID
	stats, err := e.Export(context.Background(), filters, false)

	require.NoError(t, err)
	require.NotEmpty(t, stats.PackagePath)
	assert.Equal(t, filepath.Join(outDir, "YoyoChinese Beginner Conversational.apkg"), stats.PackagePath)

	info, statErr := os.Stat(stats.PackagePath)
	require.NoError(t, statErr)
	assert.Positive(t, info.Size())
}

func TestExportPackageFailureIsWarningOnly(t *testing.T) {
	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("a", 2)}}
	outDir := t.TempDir()

	// Point the package at an unwritable path; the export itself succeeds.
	e := NewExporter(session, outDir,
		WithLogger(logger.Discard()),
		WithPackage(filepath.Join(outDir, "missing-dir", "deck.apkg")),
	)
	stats, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), false)

	require.NoError(t, err)
	assert.Empty(t, stats.PackagePath)
	require.Len(t, stats.TSVFiles, 1)
}

func TestExportNoCardsWritesNoFiles(t *testing.T) {
	session := &stubSession{}
	fs := newMockFileSystem()

	e := NewExporter(session, t.TempDir(), WithFileSystem(fs), WithLogger(logger.Discard()))
	stats, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), false)

	require.NoError(t, err)
	assert.Zero(t, stats.Cards)
	assert.Empty(t, stats.TSVFiles)
	assert.Empty(t, fs.files)
}

func TestExportTSVWriteError(t *testing.T) {
	session := &stubSession{cards: []yoyo_api.Flashcard{makeCard("a", 2)}}
	e := NewExporter(session, t.TempDir(),
		WithFileSystem(&failingFileSystem{}),
		WithLogger(logger.Discard()),
	)

	_, err := e.Export(context.Background(), yoyo_api.NewFilters("all"), false)

	require.Error(t, err)
	var writeErr TSVWriteError
	assert.True(t, errors.As(err, &writeErr))
}

type failingFileSystem struct{}

func (fs *failingFileSystem) CreateFile(string, []byte, os.FileMode, os.FileMode) error {
	return errors.New("disk full")
}
