package flashcard_exporter

import (
	"errors"
	"strconv"
)

// ErrNoLevelMapping is returned when a level-split export is requested for
// a course that has no configured level list.
var ErrNoLevelMapping = errors.New("no level mapping configured for this course")

// TSVWriteError indicates a failure writing a tabular output file.
type TSVWriteError string

func (e TSVWriteError) Error() string {
	return "failed to write tsv file: " + strconv.Quote(string(e))
}
