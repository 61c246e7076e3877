package yoyo_api

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// MasteryType is the value/label pair the API expects for the mastery filter.
type MasteryType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Filters describes the card selection criteria sent with every page request.
// Empty strings mean "no restriction" on that axis.
type Filters struct {
	MasteryType MasteryType `json:"masteryType"`
	CourseID    string      `json:"courseId"`
	LevelID     string      `json:"levelId"`
	UnitID      string      `json:"unitId"`
	LessonID    string      `json:"lessonId"`
}

// NewFilters builds a Filters with the given mastery type (e.g. "all",
// "learning", "mastered"); the label is the capitalized value, matching
// what the web client sends.
func NewFilters(masteryType string) Filters {
	return Filters{
		MasteryType: MasteryType{Value: masteryType, Label: capitalize(masteryType)},
	}
}

// WithLevel returns a copy of the filters scoped to a single level. Unit and
// lesson restrictions are cleared since they are narrower than a level.
func (f Filters) WithLevel(levelID string) Filters {
	f.LevelID = levelID
	f.UnitID = ""
	f.LessonID = ""
	return f
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// FetchOptions controls pagination behavior.
type FetchOptions struct {
	// PerPage is the page size requested from the API. Defaults to 50.
	PerPage int
	// MaxCards caps the total number of cards fetched; 0 means no cap.
	MaxCards int
	// Delay is a courtesy throttle slept between page requests.
	Delay time.Duration
}

// DefaultPerPage is the page size used when FetchOptions.PerPage is zero.
const DefaultPerPage = 50

// jsonCardsRequest is the POST body of the card-listing endpoint.
type jsonCardsRequest struct {
	Filters      Filters `json:"filters"`
	Page         int     `json:"page"`
	CardsPerPage int     `json:"cardsPerPage"`
}

// jsonCardsResponse is the raw response of the card-listing endpoint.
type jsonCardsResponse struct {
	Flashcards      []jsonFlashcard `json:"flashcards"`
	TotalFlashcards *int            `json:"totalFlashcards"`
}

// PageLogger receives per-page progress notifications during a fetch.
type PageLogger interface {
	Info(msg string, args ...any)
}

// FetchAll retrieves every card matching the filters by walking the paging
// API until exhaustion. Pages are 1-based and fetched sequentially in
// server-returned order. Termination is checked after each page, in order:
//
//  1. a configured MaxCards cap has been reached (result truncated to the cap),
//  2. the page returned zero records (treated as end-of-stream even when a
//     reported total disagrees; servers have been seen returning inconsistent
//     totals),
//  3. a reported total count has been reached.
//
// On any transport or non-2xx failure the whole fetch fails; no partial
// result is returned. A nil logger disables progress output.
func (s *Session) FetchAll(ctx context.Context, filters Filters, opts FetchOptions, log PageLogger) ([]Flashcard, error) {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	var cards []Flashcard
	total := -1 // latched from the first page that reports one

	for page := 1; ; page++ {
		body := jsonCardsRequest{
			Filters:      filters,
			Page:         page,
			CardsPerPage: perPage,
		}

		var parsed jsonCardsResponse
		resp, err := s.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&parsed).
			Post(s.cardsURL)
		if err != nil {
			return nil, HTTPError(err.Error())
		}
		if resp.IsError() {
			return nil, APIError(fmt.Sprintf("HTTP %d fetching page %d: %s",
				resp.StatusCode(), page, strings.TrimSpace(string(resp.Body()))))
		}

		batch := parsed.Flashcards
		for i := range batch {
			cards = append(cards, batch[i].toFlashcard())
		}
		if total < 0 && parsed.TotalFlashcards != nil {
			total = *parsed.TotalFlashcards
		}
		if log != nil {
			log.Info("fetched page", "page", page, "batch", len(batch), "so_far", len(cards), "total", total)
		}

		if opts.MaxCards > 0 && len(cards) >= opts.MaxCards {
			cards = cards[:opts.MaxCards]
			break
		}
		if len(batch) == 0 {
			break
		}
		if total >= 0 && len(cards) >= total {
			break
		}
		if opts.Delay > 0 {
			select {
			case <-time.After(opts.Delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return cards, nil
}
