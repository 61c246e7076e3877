// Package anki_package writes Anki-importable .apkg files: a zip archive
// holding a SQLite collection (schema version 11, the format genanki and
// Anki 2.1 importers understand), a media manifest, and the media files
// themselves.
package anki_package

import (
	"crypto/md5"
	_ "embed"
	"encoding/hex"
	"strconv"
)

//go:embed templates/front.html
var defaultFrontTemplate string

//go:embed templates/back.html
var defaultBackTemplate string

//go:embed templates/style.css
var defaultCSS string

// Template is one question/answer rendering pair of a model.
type Template struct {
	Name  string
	Front string
	Back  string
}

// Model describes a note type: its ordered field names, its card templates,
// and the shared stylesheet.
type Model struct {
	ID        int64
	Name      string
	Fields    []string
	Templates []Template
	CSS       string
}

// DefaultModel returns the note type used for exported flashcards. Field
// order is fixed; the tabular export and the packaged deck rely on it.
func DefaultModel() Model {
	name := "YoYoChinese Model"
	return Model{
		ID:     StableID(name + "-v1"),
		Name:   name,
		Fields: []string{"index", "simplified", "traditional", "pinyin", "english", "audio"},
		Templates: []Template{
			{Name: "Card 1", Front: defaultFrontTemplate, Back: defaultBackTemplate},
		},
		CSS: defaultCSS,
	}
}

// StableID derives a deterministic 32-bit identifier from a name, so decks
// and models keep the same IDs across export runs and re-imports update
// rather than duplicate.
func StableID(name string) int64 {
	sum := md5.Sum([]byte(name))
	id, err := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	if err != nil {
		// Cannot happen: the input is always 8 hex digits.
		panic(err)
	}
	return id
}
