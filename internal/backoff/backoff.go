// Package backoff computes jittered exponential retry delays.
package backoff

import (
	"math/rand/v2"
	"time"
)

// JitterMax bounds the random addition applied to every delay. The jitter
// desynchronizes retries across addresses hitting the same RPC endpoint.
const JitterMax = 1 * time.Second

// Delay returns min(base * 2^attempt, maxDelay) plus a random jitter in
// [0, JitterMax). attempt counts from 0. Negative or zero inputs fall back
// to sane values so the function never fails.
func Delay(attempt int, base, maxDelay time.Duration) time.Duration {
	if base <= 0 {
		base = 1 * time.Second
	}
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	if attempt < 0 {
		attempt = 0
	}

	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			d = maxDelay
			break
		}
	}
	if d > maxDelay {
		d = maxDelay
	}

	return d + time.Duration(rand.Int64N(int64(JitterMax)))
}
