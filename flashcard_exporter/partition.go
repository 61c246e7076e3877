package flashcard_exporter

import (
	"fmt"
	"strings"

	"github.com/CaptainLeviR/YoyoChineseFlashcardsToAnki/yoyo_api"
)

// PartitionStrategy assigns every card to exactly one named bucket. The
// same strategy instance drives both the tabular writer and the packaged
// deck grouping, so the two can never disagree.
type PartitionStrategy interface {
	// Key returns the bucket key for a card. The empty key is the default
	// bucket: its output file carries no suffix and its deck no subdeck.
	Key(card yoyo_api.Flashcard) string
	// Buckets returns the canonical bucket order, or nil when buckets are
	// discovered in card order.
	Buckets() []string
}

type singlePartition struct{}

func (singlePartition) Key(yoyo_api.Flashcard) string { return "" }
func (singlePartition) Buckets() []string             { return []string{""} }

// PartitionNone puts every card into the single default bucket.
func PartitionNone() PartitionStrategy { return singlePartition{} }

type wordTypePartition struct{}

func (wordTypePartition) Key(card yoyo_api.Flashcard) string { return card.WordTypeLabel() }
func (wordTypePartition) Buckets() []string                  { return []string{"Word", "Sentence", ""} }

// PartitionByWordType groups cards into "Word" and "Sentence" buckets;
// cards with no word-type label fall into the default bucket.
func PartitionByWordType() PartitionStrategy { return wordTypePartition{} }

type levelPartition struct {
	key string
}

func (p levelPartition) Key(yoyo_api.Flashcard) string { return p.key }
func (p levelPartition) Buckets() []string             { return []string{p.key} }

// PartitionByLevel assigns every card to the bucket of one course level.
// Level membership is a property of the fetch, not of the card itself, so
// the orchestrator binds one such strategy per level sub-fetch.
func PartitionByLevel(level int) PartitionStrategy {
	return levelPartition{key: fmt.Sprintf("Level %d", level)}
}

// fileSuffix converts a bucket key into its filename component:
// "" stays "", "Word" becomes "word", "Level 3" becomes "level3".
func fileSuffix(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, " ", ""))
}

// deckName composes the Anki deck name for a bucket: the base name alone
// for the default bucket, "base::key" otherwise.
func deckName(base, key string) string {
	if key == "" {
		return base
	}
	return base + "::" + key
}
