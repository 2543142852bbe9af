package webhooks

import "time"

// retrySchedule is the delay applied after failed attempt n (1-based);
// attempts past the table reuse the last entry.
var retrySchedule = []time.Duration{
	60 * time.Second,
	300 * time.Second,
	1800 * time.Second,
	3600 * time.Second,
	7200 * time.Second,
}

// Backoff returns the wait before the next attempt, given the number of
// attempts already performed.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	index := attempts - 1
	if index >= len(retrySchedule) {
		index = len(retrySchedule) - 1
	}
	return retrySchedule[index]
}

// RetrySchedule exposes a copy of the delay table.
func RetrySchedule() []time.Duration {
	out := make([]time.Duration, len(retrySchedule))
	copy(out, retrySchedule)
	return out
}
