package shade

import (
	"testing"
	"time"
)

func TestRateEstimatorNeedsTwoSamples(t *testing.T) {
	e := newRateEstimator(30)
	if _, ok := e.Rate(); ok {
		t.Error("empty estimator reported a rate")
	}
	e.Push(time.Now())
	if _, ok := e.Rate(); ok {
		t.Error("single-sample estimator reported a rate")
	}
}

func TestRateEstimatorRate(t *testing.T) {
	e := newRateEstimator(30)
	base := time.Now()
	for i := 0; i < 30; i++ {
		e.Push(base.Add(time.Duration(i) * 10 * time.Millisecond))
	}
	rate, ok := e.Rate()
	if !ok {
		t.Fatal("expected a rate")
	}
	// 30 samples over 290ms.
	want := 30.0 / 0.29
	if rate < want-1 || rate > want+1 {
		t.Errorf("rate = %v, want ≈ %v", rate, want)
	}
}

func TestRateEstimatorEvictsOldest(t *testing.T) {
	e := newRateEstimator(4)
	base := time.Now()
	for i := 0; i < 10; i++ {
		e.Push(base.Add(time.Duration(i) * 10 * time.Millisecond))
	}
	if len(e.samples) != 4 {
		t.Fatalf("window holds %d samples, want 4", len(e.samples))
	}
	// Oldest surviving sample is push #6.
	if !e.samples[0].Equal(base.Add(60 * time.Millisecond)) {
		t.Error("oldest sample was not evicted in order")
	}
}

func TestRateEstimatorZeroSpan(t *testing.T) {
	e := newRateEstimator(8)
	now := time.Now()
	e.Push(now)
	e.Push(now)
	if _, ok := e.Rate(); ok {
		t.Error("zero-span estimator reported a rate")
	}
}

func TestRateEstimatorReset(t *testing.T) {
	e := newRateEstimator(8)
	base := time.Now()
	for i := 0; i < 8; i++ {
		e.Push(base.Add(time.Duration(i) * time.Millisecond))
	}
	e.Reset()
	if _, ok := e.Rate(); ok {
		t.Error("reset estimator retained pre-reset samples")
	}
	if len(e.samples) != 0 {
		t.Errorf("reset left %d samples", len(e.samples))
	}
}

func TestRateEstimatorMinimumWindow(t *testing.T) {
	e := newRateEstimator(0)
	base := time.Now()
	e.Push(base)
	e.Push(base.Add(10 * time.Millisecond))
	if _, ok := e.Rate(); !ok {
		t.Error("estimator with clamped window reported no rate")
	}
}
