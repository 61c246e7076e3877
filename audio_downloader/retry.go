package audio_downloader

import "time"

// RetryPolicy describes how a failing operation is retried: a fixed attempt
// budget with exponential backoff plus a small linear jitter term. The same
// policy value can be shared by any number of concurrent workers.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first one.
	MaxAttempts int
	// BaseDelay is the backoff before the second attempt.
	BaseDelay time.Duration
	// Multiplier scales the delay for each further attempt.
	Multiplier float64
	// JitterStep grows linearly with the attempt number.
	JitterStep time.Duration
	// JitterCap bounds the jitter contribution.
	JitterCap time.Duration
}

// DefaultRetryPolicy matches the tuning the exporter has always used:
// four attempts, 750ms base delay doubling each time, jitter of
// min(250ms, 50ms x attempt).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   750 * time.Millisecond,
		Multiplier:  2,
		JitterStep:  50 * time.Millisecond,
		JitterCap:   250 * time.Millisecond,
	}
}

// Backoff returns how long to sleep after the given failed attempt
// (1-based): BaseDelay x Multiplier^(attempt-1) + min(JitterCap, JitterStep x attempt).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= p.Multiplier
	}
	jitter := time.Duration(attempt) * p.JitterStep
	if jitter > p.JitterCap {
		jitter = p.JitterCap
	}
	return time.Duration(delay) + jitter
}
