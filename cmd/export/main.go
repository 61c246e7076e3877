package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/flashcard_exporter"
	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/logger"
	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/yoyo_api"
)

const Version = "0.1.0"

// Process exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
	exitFetch  = 3
)

func init() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on environment variables")
	}
}

// printUsage prints the complete usage information including flags and environment variables
func printUsage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	flag.PrintDefaults()

	fmt.Fprintln(flag.CommandLine.Output(), "\nLogger environment variables:")
	for _, v := range logger.GetEnvVarsHelp() {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-20s %s\n", v.Name, v.Description)
	}

	yoyoEnvVars := []struct {
		Name        string
		Description string
	}{
		{"YOYO_COOKIE", "Session cookie copied from a logged-in yoyochinese.com browser session"},
		{"YOYO_OUTPUT_DIR", "Directory to write exported files (default: current directory)"},
	}

	fmt.Fprintln(flag.CommandLine.Output(), "\nYoyoChinese environment variables:")
	for _, v := range yoyoEnvVars {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-20s %s\n", v.Name, v.Description)
	}
}

// promptCourse asks the operator to pick a course by number. A non-terminal
// stdin or an empty answer selects the first configured course.
func promptCourse(in io.Reader, interactive bool) yoyo_api.Course {
	courses := yoyo_api.Courses()
	if !interactive {
		return courses[0]
	}

	fmt.Println("Select a course:")
	for i, course := range courses {
		fmt.Printf("  %d) %s\n", i+1, course.Name)
	}
	fmt.Printf("Course [1-%d, default 1]: ", len(courses))

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		answer := strings.TrimSpace(scanner.Text())
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(courses) {
			return courses[n-1]
		}
	}
	return courses[0]
}

func main() {
	flag.Usage = printUsage

	cookieFlag := flag.String("cookie", "", "YoyoChinese session cookie (bare value or full Cookie: header line)")
	deckNameFlag := flag.String("deck-name", "", "Base name for output files and Anki decks (default: YoyoChinese)")
	outputFlag := flag.String("output", "", "Directory to write exported files")
	perPageFlag := flag.Int("per-page", yoyo_api.DefaultPerPage, "Cards requested per API page")
	maxFlag := flag.Int("max", 0, "Maximum number of cards to fetch (0 = no limit)")
	delayFlag := flag.Duration("delay", 0, "Pause between page requests (e.g. 500ms)")
	masteryFlag := flag.String("mastery-type", "all", "Mastery filter (all, learning, mastered)")
	courseIDFlag := flag.String("course-id", "", "Restrict to one course by ID (empty prompts for a course)")
	levelIDFlag := flag.String("level-id", "", "Restrict to one level by ID")
	unitIDFlag := flag.String("unit-id", "", "Restrict to one unit by ID")
	lessonIDFlag := flag.String("lesson-id", "", "Restrict to one lesson by ID")
	formatFlag := flag.String("format", string(flashcard_exporter.FormatSimple), "Row layout (simple or rich)")
	includeAudioFlag := flag.Bool("include-audio", false, "Download audio clips and add sound markers")
	audioWorkersFlag := flag.Int("audio-workers", 8, "Concurrent audio downloads")
	audioSpeedFlag := flag.String("audio-speed", string(yoyo_api.SpeedNormal), "Audio clip speed (normal or slow)")
	makeApkgFlag := flag.Bool("make-apkg", false, "Also write an Anki .apkg package")
	apkgPathFlag := flag.String("apkg-path", "", "Path of the .apkg to write (default: derived from the deck name)")
	splitFlag := flag.Bool("split-by-wordtype", false, "Write separate files for words and sentences")
	levelsFlag := flag.Bool("levels-subdecks", false, "Fetch the course level by level and group output per level")
	dryRunFlag := flag.Bool("dry-run", false, "If set, perform a dry run (no writes or downloads, only show what would happen)")
	logLevelFlag := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormatFlag := flag.String("log-format", "", "Log output format (text or json)")

	flag.Parse()

	log := logger.New(logger.LoadConfig(*logLevelFlag, *logFormatFlag))
	log.Info("YoyoChinese flashcard exporter started", "version", Version)

	cookie := *cookieFlag
	if cookie == "" {
		cookie = os.Getenv("YOYO_COOKIE")
	}
	if cookie == "" {
		fmt.Fprintln(os.Stderr, "Missing session cookie: provide -cookie or set YOYO_COOKIE")
		flag.Usage()
		os.Exit(exitConfig)
	}

	format := flashcard_exporter.Format(*formatFlag)
	if !format.IsValid() {
		fmt.Fprintf(os.Stderr, "Invalid format %q: must be simple or rich\n", *formatFlag)
		os.Exit(exitConfig)
	}
	speed := yoyo_api.AudioSpeed(*audioSpeedFlag)
	if !speed.IsValid() {
		fmt.Fprintf(os.Stderr, "Invalid audio speed %q: must be normal or slow\n", *audioSpeedFlag)
		os.Exit(exitConfig)
	}

	outDir := *outputFlag
	if outDir == "" {
		outDir = os.Getenv("YOYO_OUTPUT_DIR")
	}
	if outDir == "" {
		outDir = "."
	}
	outDir, err := filepath.Abs(outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve output directory: %v\n", err)
		os.Exit(exitConfig)
	}

	filters := yoyo_api.NewFilters(*masteryFlag)
	filters.CourseID = *courseIDFlag
	filters.LevelID = *levelIDFlag
	filters.UnitID = *unitIDFlag
	filters.LessonID = *lessonIDFlag

	deckName := *deckNameFlag
	levelsSubdecks := *levelsFlag

	// With no course restriction at all, ask for one the way the web client
	// groups cards. Picking interactively implies per-level grouping and a
	// course-derived deck name unless the operator set one.
	if filters.CourseID == "" && filters.LevelID == "" && filters.UnitID == "" && filters.LessonID == "" {
		course := promptCourse(os.Stdin, isatty.IsTerminal(os.Stdin.Fd()))
		fmt.Printf("Exporting course: %s\n", course.Name)
		filters.CourseID = course.ID
		levelsSubdecks = true
		if deckName == "" {
			deckName = "YoyoChinese " + course.Name
		}
	}

	session := yoyo_api.NewSession(cookie)

	opts := []flashcard_exporter.ExporterOption{
		flashcard_exporter.WithLogger(log),
		flashcard_exporter.WithFormat(format),
		flashcard_exporter.WithWorkers(*audioWorkersFlag),
		flashcard_exporter.WithDeckName(deckName),
		flashcard_exporter.WithFetchOptions(yoyo_api.FetchOptions{
			PerPage:  *perPageFlag,
			MaxCards: *maxFlag,
			Delay:    *delayFlag,
		}),
		flashcard_exporter.WithDryRun(*dryRunFlag),
	}
	if *includeAudioFlag {
		opts = append(opts, flashcard_exporter.WithAudio(speed))
	}
	if *makeApkgFlag {
		opts = append(opts, flashcard_exporter.WithPackage(*apkgPathFlag))
	}

	exporter := flashcard_exporter.NewExporter(session, outDir, opts...)
	if exporter.IsDryRun() {
		fmt.Println("Dry run: nothing will be written")
	}
	fmt.Printf("Files will be written to: %s\n", outDir)

	ctx := context.Background()
	var stats flashcard_exporter.ExportStats
	if levelsSubdecks {
		stats, err = exporter.ExportLevels(ctx, filters, filters.CourseID)
	} else {
		stats, err = exporter.Export(ctx, filters, *splitFlag)
	}
	if err != nil {
		log.Error("Export failed", "error", err)
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(exportExitCode(err))
	}

	log.Info("Export completed",
		"cards", stats.Cards,
		"tsv_files", len(stats.TSVFiles),
		"audio_ok", stats.AudioOK(),
		"audio_failed", stats.AudioFailed,
		"package", stats.PackagePath)
	fmt.Println(stats.String())
	if stats.PackagePath != "" {
		fmt.Printf("Anki package: %s\n", stats.PackagePath)
	}
	os.Exit(exitOK)
}

// exportExitCode maps an export failure to a process exit code: 2 for
// configuration problems, 3 for API fetch failures, 1 otherwise.
func exportExitCode(err error) int {
	if errors.Is(err, flashcard_exporter.ErrNoLevelMapping) {
		return exitConfig
	}
	var apiErr yoyo_api.APIError
	var httpErr yoyo_api.HTTPError
	if errors.As(err, &apiErr) || errors.As(err, &httpErr) {
		return exitFetch
	}
	return exitError
}
