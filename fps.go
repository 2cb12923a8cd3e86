package shade

import "time"

// rateEstimator estimates a tick rate from a sliding window of the
// most recent timestamps. The window size is fixed at construction.
type rateEstimator struct {
	samples []time.Time
	size    int
}

// newRateEstimator creates an estimator over the given sample count.
// Counts below 2 are raised to 2 — a rate needs at least two points.
func newRateEstimator(size int) *rateEstimator {
	if size < 2 {
		size = 2
	}
	return &rateEstimator{
		samples: make([]time.Time, 0, size),
		size:    size,
	}
}

// Push records a timestamp, evicting the oldest when the window is full.
func (e *rateEstimator) Push(t time.Time) {
	if len(e.samples) == e.size {
		copy(e.samples, e.samples[1:])
		e.samples = e.samples[:e.size-1]
	}
	e.samples = append(e.samples, t)
}

// Rate returns samples-per-second over the window. ok is false until
// at least two samples spanning a positive interval exist.
func (e *rateEstimator) Rate() (rate float64, ok bool) {
	if len(e.samples) < 2 {
		return 0, false
	}
	span := e.samples[len(e.samples)-1].Sub(e.samples[0]).Seconds()
	if span <= 0 {
		return 0, false
	}
	return float64(len(e.samples)) / span, true
}

// Reset discards all samples.
func (e *rateEstimator) Reset() {
	e.samples = e.samples[:0]
}
