package anki_package

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Note is one card's worth of content, carrying its field values in the
// model's field order.
type Note struct {
	Model  Model
	Fields []string
}

// guid is a stable identifier derived from the note's field content, so
// re-importing the same export updates notes instead of duplicating them.
func (n Note) guid() string {
	sum := sha256.Sum256([]byte(strings.Join(n.Fields, "\x1f")))
	return hex.EncodeToString(sum[:])[:10]
}

// validate checks that the field count matches the model.
func (n Note) validate() error {
	if len(n.Fields) != len(n.Model.Fields) {
		return fmt.Errorf("note has %d fields, model %q wants %d",
			len(n.Fields), n.Model.Name, len(n.Model.Fields))
	}
	return nil
}

// Deck is a named group of notes. Subdecks use Anki's "Parent::Child"
// naming convention.
type Deck struct {
	ID    int64
	Name  string
	notes []Note
}

// NewDeck creates a deck whose ID is derived deterministically from its name.
func NewDeck(name string) *Deck {
	return &Deck{ID: StableID(name), Name: name}
}

// AddNote appends a note to the deck.
func (d *Deck) AddNote(n Note) {
	d.notes = append(d.notes, n)
}

// Notes returns the deck's notes in insertion order.
func (d *Deck) Notes() []Note {
	return d.notes
}
