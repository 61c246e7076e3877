package yoyo_api

import "strings"

// AudioSpeed selects which of the two recorded clips a card refers to.
type AudioSpeed string

const (
	SpeedNormal = AudioSpeed("normal")
	SpeedSlow   = AudioSpeed("slow")
)

// IsValid reports whether the speed is one of the recognized values.
func (s AudioSpeed) IsValid() bool {
	switch s {
	case SpeedNormal, SpeedSlow:
		return true
	default:
		return false
	}
}

// Word type values used by the API. Anything else is unlabeled.
const (
	wordTypeWord     = 2
	wordTypeSentence = 3
)

// Flashcard is one normalized card record fetched from the API.
// Text fields are whitespace-trimmed and never absent (empty string means
// the service did not provide a value). Optional integers keep the
// present/absent distinction via pointers.
type Flashcard struct {
	ID           string
	Code         string
	MasteryLevel *int
	WordType     *int
	Simplified   string
	Traditional  string
	Pinyin       string
	English1     string
	English2     string

	// Opaque audio codes; empty means no clip exists at that speed.
	AudioCodeNormal string
	AudioCodeSlow   string
}

// AudioFilename returns the media filename for the requested speed, or ""
// when the card has no clip at that speed. The mapping is deterministic:
// the service guarantees codes are unique, so filenames never collide.
func (f *Flashcard) AudioFilename(speed AudioSpeed) string {
	var code string
	switch speed {
	case SpeedNormal:
		code = f.AudioCodeNormal
	case SpeedSlow:
		code = f.AudioCodeSlow
	}
	if code == "" {
		return ""
	}
	return code + ".mp3"
}

// WordTypeLabel returns "Word", "Sentence", or "" per the API's wordType
// convention (2 = word, 3 = sentence).
func (f *Flashcard) WordTypeLabel() string {
	if f.WordType == nil {
		return ""
	}
	switch *f.WordType {
	case wordTypeWord:
		return "Word"
	case wordTypeSentence:
		return "Sentence"
	default:
		return ""
	}
}

// English returns the combined gloss: the primary translation, joined with
// " | " to the secondary one when present.
func (f *Flashcard) English() string {
	if f.English2 != "" {
		return f.English1 + " | " + f.English2
	}
	return f.English1
}

// jsonFlashcard mirrors one element of the "flashcards" array in the raw
// API response.
type jsonFlashcard struct {
	ID           string          `json:"id"`
	LegacyID     string          `json:"_id"`
	Code         string          `json:"code"`
	MasteryLevel *int            `json:"masteryLevel"`
	WordType     *int            `json:"wordType"`
	Content      jsonCardContent `json:"content"`
}

type jsonCardContent struct {
	Simplified  string `json:"simplified"`
	Traditional string `json:"traditional"`
	Pinyin      string `json:"pinyin"`
	English1    string `json:"english1"`
	English2    string `json:"english2"`
	Normal      string `json:"normal"`
	Slow        string `json:"slow"`
}

// toFlashcard converts the raw JSON record into a normalized Flashcard.
// Identity prefers the primary id key, falling back to the legacy key,
// falling back to empty string. Never fails.
func (j *jsonFlashcard) toFlashcard() Flashcard {
	id := j.ID
	if id == "" {
		id = j.LegacyID
	}
	return Flashcard{
		ID:              id,
		Code:            j.Code,
		MasteryLevel:    j.MasteryLevel,
		WordType:        j.WordType,
		Simplified:      strings.TrimSpace(j.Content.Simplified),
		Traditional:     strings.TrimSpace(j.Content.Traditional),
		Pinyin:          strings.TrimSpace(j.Content.Pinyin),
		English1:        strings.TrimSpace(j.Content.English1),
		English2:        strings.TrimSpace(j.Content.English2),
		AudioCodeNormal: j.Content.Normal,
		AudioCodeSlow:   j.Content.Slow,
	}
}
