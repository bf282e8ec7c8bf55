package retry

import (
	"math/rand/v2"
	"time"
)

// Backoff computes bounded exponential delays. Jitter shortens each delay by
// a random amount of at most that fraction, so Delay stays within
// [d*(1-Jitter), d].
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	// Jitter is the fraction of each delay that is randomised, in [0, 1].
	Jitter float64
}

// DefaultBackoff starts at one second and caps at one minute.
var DefaultBackoff = Backoff{Initial: time.Second, Max: time.Minute, Jitter: 0.2}

// Delay returns the wait before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	initial, maxDelay := b.bounds()

	d := initial
	for i := 0; i < attempt && d < maxDelay; i++ {
		d *= 2
	}
	if d > maxDelay {
		d = maxDelay
	}

	jitter := b.Jitter
	if jitter <= 0 {
		return d
	}
	if jitter > 1 {
		jitter = 1
	}
	spread := time.Duration(float64(d) * jitter)
	if spread <= 0 {
		return d
	}
	return d - spread + time.Duration(rand.Int64N(int64(spread)+1))
}

// Ceiling is the largest delay Delay can return.
func (b Backoff) Ceiling() time.Duration {
	_, maxDelay := b.bounds()
	return maxDelay
}

func (b Backoff) bounds() (time.Duration, time.Duration) {
	initial := b.Initial
	if initial <= 0 {
		initial = DefaultBackoff.Initial
	}
	maxDelay := b.Max
	if maxDelay < initial {
		maxDelay = initial
	}
	return initial, maxDelay
}
