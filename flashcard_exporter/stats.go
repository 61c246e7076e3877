package flashcard_exporter

import "fmt"

// ExportStats summarizes one export run.
type ExportStats struct {
	Cards           int      // Number of cards fetched
	TSVFiles        []string // Paths of the tabular files written
	AudioDownloaded int      // Audio files fetched this run
	AudioCached     int      // Audio files already present and skipped
	AudioFailed     int      // Audio files that failed every retry
	PackagePath     string   // Path of the .apkg written, empty if none
}

// AudioOK returns the number of audio files in place after the run.
func (s ExportStats) AudioOK() int {
	return s.AudioDownloaded + s.AudioCached
}

// String returns a one-line summary of the export statistics.
func (s ExportStats) String() string {
	return fmt.Sprintf("cards=%d, tsv_files=%d, audio_ok=%d, audio_cached=%d, audio_failed=%d",
		s.Cards, len(s.TSVFiles), s.AudioOK(), s.AudioCached, s.AudioFailed)
}
