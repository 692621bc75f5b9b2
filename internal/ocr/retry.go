package ocr

import "time"

// RetryPolicy is the retry decision table consumed by the queue worker as a
// plain value: bounded attempts, a fixed delay between them, and the
// fatal/retryable classification from this package.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 60 * time.Second}
}

// ShouldRetry decides whether the given 1-based attempt may be re-scheduled
// after failing with err.
func (p RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if IsFatal(err) {
		return false
	}
	return attempt < p.MaxAttempts
}
