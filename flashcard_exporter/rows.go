package flashcard_exporter

import (
	"strings"

	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/yoyo_api"
)

// Format selects the tabular row layout.
type Format string

const (
	// FormatSimple renders two fields: front and back.
	FormatSimple = Format("simple")
	// FormatRich renders seven fields: simplified, pinyin, english,
	// traditional, audio marker, code, word-type label.
	FormatRich = Format("rich")
)

// IsValid reports whether the format is one of the recognized values.
func (f Format) IsValid() bool {
	switch f {
	case FormatSimple, FormatRich:
		return true
	default:
		return false
	}
}

// Row is one rendered card: its ordered output fields plus the resolved
// audio filename so the caller can register a download without recomputing
// it. AudioFilename is empty when audio was not requested or the card has
// no clip at the selected speed.
type Row struct {
	Fields        []string
	AudioFilename string
}

func soundMarker(filename string) string {
	return "[sound:" + filename + "]"
}

// CompactRow renders the two-field layout. The front is the simplified
// text, suffixed with a sound marker when audio is requested and available;
// the back joins pinyin and the English gloss with an em-dash, or is just
// the gloss when pinyin is empty.
func CompactRow(card yoyo_api.Flashcard, includeAudio bool, speed yoyo_api.AudioSpeed) Row {
	var audioFn string
	if includeAudio {
		audioFn = card.AudioFilename(speed)
	}

	front := card.Simplified
	if audioFn != "" {
		front = front + " " + soundMarker(audioFn)
	}

	back := card.English()
	if card.Pinyin != "" {
		back = card.Pinyin + " — " + back
	}

	return Row{Fields: []string{front, back}, AudioFilename: audioFn}
}

// RichRow renders the seven-field layout.
func RichRow(card yoyo_api.Flashcard, includeAudio bool, speed yoyo_api.AudioSpeed) Row {
	var audioFn, audioField string
	if includeAudio {
		audioFn = card.AudioFilename(speed)
	}
	if audioFn != "" {
		audioField = soundMarker(audioFn)
	}

	fields := []string{
		card.Simplified,
		card.Pinyin,
		card.English(),
		card.Traditional,
		audioField,
		card.Code,
		card.WordTypeLabel(),
	}
	return Row{Fields: fields, AudioFilename: audioFn}
}

// renderRow renders a card in the given format.
func renderRow(format Format, card yoyo_api.Flashcard, includeAudio bool, speed yoyo_api.AudioSpeed) Row {
	if format == FormatRich {
		return RichRow(card, includeAudio, speed)
	}
	return CompactRow(card, includeAudio, speed)
}

// SerializeRow joins the row's fields with tabs. Tab is reserved as the
// field separator, so any literal tab inside a field is replaced with a
// single space first.
func SerializeRow(row Row) string {
	safe := make([]string, len(row.Fields))
	for i, field := range row.Fields {
		safe[i] = strings.ReplaceAll(field, "\t", " ")
	}
	return strings.Join(safe, "\t")
}
