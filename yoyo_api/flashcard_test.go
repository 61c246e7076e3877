package yoyo_api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestToFlashcardNormalization(t *testing.T) {
	raw := []byte(`{
		"id": "abc123",
		"code": "bc-1-2-3",
		"masteryLevel": 0,
		"wordType": 2,
		"content": {
			"simplified": " 你好 ",
			"traditional": "你好",
			"pinyin": "  nǐ hǎo ",
			"english1": "hello ",
			"english2": "",
			"normal": "aud-n",
			"slow": "aud-s"
		}
	}`)

	var j jsonFlashcard
	require.NoError(t, json.Unmarshal(raw, &j))
	card := j.toFlashcard()

	assert.Equal(t, "abc123", card.ID)
	assert.Equal(t, "bc-1-2-3", card.Code)
	require.NotNil(t, card.MasteryLevel)
	assert.Equal(t, 0, *card.MasteryLevel, "explicit zero must stay present")
	assert.Equal(t, "你好", card.Simplified)
	assert.Equal(t, "nǐ hǎo", card.Pinyin)
	assert.Equal(t, "hello", card.English1)
	assert.Equal(t, "aud-n", card.AudioCodeNormal)
	assert.Equal(t, "aud-s", card.AudioCodeSlow)
}

func TestToFlashcardMissingFields(t *testing.T) {
	var j jsonFlashcard
	require.NoError(t, json.Unmarshal([]byte(`{"_id": "legacy-1"}`), &j))
	card := j.toFlashcard()

	assert.Equal(t, "legacy-1", card.ID, "identity falls back to _id")
	assert.Empty(t, card.Code)
	assert.Nil(t, card.MasteryLevel, "missing optional int stays absent")
	assert.Nil(t, card.WordType)
	assert.Empty(t, card.Simplified)
	assert.Empty(t, card.English1)
	assert.Empty(t, card.AudioFilename(SpeedNormal))
	assert.Empty(t, card.AudioFilename(SpeedSlow))
}

func TestAudioFilename(t *testing.T) {
	card := Flashcard{AudioCodeNormal: "code-n"}
	assert.Equal(t, "code-n.mp3", card.AudioFilename(SpeedNormal))
	assert.Empty(t, card.AudioFilename(SpeedSlow), "no slow code, no filename")
}

func TestWordTypeLabel(t *testing.T) {
	tests := []struct {
		name     string
		wordType *int
		want     string
	}{
		{name: "word", wordType: intPtr(2), want: "Word"},
		{name: "sentence", wordType: intPtr(3), want: "Sentence"},
		{name: "other value", wordType: intPtr(7), want: ""},
		{name: "absent", wordType: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Flashcard{WordType: tt.wordType}
			assert.Equal(t, tt.want, card.WordTypeLabel())
		})
	}
}

func TestEnglishJoin(t *testing.T) {
	assert.Equal(t, "hello", (&Flashcard{English1: "hello"}).English())
	assert.Equal(t, "hello | hi there", (&Flashcard{English1: "hello", English2: "hi there"}).English())
}

func TestNormalizeCookie(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare value", input: "session=abc", want: "session=abc"},
		{name: "full header", input: "Cookie: session=abc", want: "session=abc"},
		{name: "lowercase prefix", input: "cookie:session=abc", want: "session=abc"},
		{name: "surrounding whitespace", input: "  session=abc  ", want: "session=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeCookie(tt.input))
		})
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "All", capitalize("all"))
	assert.Equal(t, "Learning", capitalize("LEARNING"))
	assert.Equal(t, "", capitalize(""))
}

func TestCourses(t *testing.T) {
	courses := Courses()
	require.NotEmpty(t, courses)
	assert.Equal(t, "Beginner Conversational", courses[0].Name)
	for _, c := range courses {
		levels, ok := CourseLevels(c.ID)
		require.True(t, ok, "every listed course has a level mapping")
		assert.Len(t, levels, 6)
	}

	_, ok := CourseLevels("unknown-course")
	assert.False(t, ok)
	assert.Equal(t, "unknown-course", CourseName("unknown-course"))
}
