package yoyo_api

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultCardsURL is the card-listing endpoint of the YoyoChinese flashcard manager.
const DefaultCardsURL = "https://yoyochinese.com/api/v1/flashcards/manage/cards"

// DefaultAudioBaseURL is the CDN prefix that audio codes are resolved against.
const DefaultAudioBaseURL = "https://cdn.yoyochinese.com/audio/practice/"

const defaultRequestTimeout = 30 * time.Second

// Session represents an authenticated connection to the YoyoChinese API.
// Authentication is cookie-based: the operator copies the session cookie
// from a logged-in browser and passes it in verbatim.
type Session struct {
	cardsURL string
	http     *resty.Client
}

// SessionOption configures a Session at construction time.
type SessionOption func(*Session)

// WithCardsURL overrides the card-listing endpoint. Used in tests.
func WithCardsURL(url string) SessionOption {
	return func(s *Session) {
		s.cardsURL = url
	}
}

// WithRequestTimeout overrides the per-request timeout for API calls.
func WithRequestTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.http.SetTimeout(d)
	}
}

// NewSession creates a session authenticated with the given cookie.
// The cookie may be passed either as the bare header value or as a full
// "Cookie: ..." header line copied from browser developer tools.
func NewSession(cookie string, opts ...SessionOption) *Session {
	client := resty.New()
	client.SetTimeout(defaultRequestTimeout)
	client.SetHeader("accept", "*/*")
	client.SetHeader("content-type", "application/json")
	// The browser sends this header; the API rejects requests without it in
	// some deployments, so always include it.
	client.SetHeader("is-native", "false")
	client.SetHeader("Cookie", normalizeCookie(cookie))

	s := &Session{
		cardsURL: DefaultCardsURL,
		http:     client,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalizeCookie strips an optional leading "Cookie:" prefix so operators
// can paste the whole header line.
func normalizeCookie(cookie string) string {
	trimmed := strings.TrimSpace(cookie)
	if len(trimmed) >= 7 && strings.EqualFold(trimmed[:7], "cookie:") {
		return strings.TrimSpace(trimmed[7:])
	}
	return trimmed
}
