package hashrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateDuringWarmupIsZero(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	tr := New(start)
	tr.Increment(start.Add(10*time.Second), 1_000_000)
	got := tr.Rate(start.Add(20 * time.Second))
	assert.Equal(t, float64(0), got)
}

func TestRateAfterWarmupReflectsWindow(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	tr := New(start)

	// one event per second for 60 seconds, all after warmup, 1000 hashes each
	firstAt := WarmupPeriod + time.Second
	for i := 1; i <= 60; i++ {
		tr.Increment(start.Add(WarmupPeriod+time.Duration(i)*time.Second), 1000)
	}

	now := start.Add(WarmupPeriod + 70*time.Second)
	rate := tr.Rate(now)
	require.Greater(t, rate, float64(0))

	// all 60 events are within the 120s window, elapsed = now - earliest
	expectedElapsed := now.Sub(start.Add(firstAt)).Seconds()
	expectedRate := float64(60*1000) / expectedElapsed
	assert.InDelta(t, expectedRate, rate, 1.0)
}

func TestOldEventsAreEvictedFromWindow(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	tr := New(start)

	tr.Increment(start.Add(WarmupPeriod+time.Second), 500)
	now := start.Add(WarmupPeriod + time.Second + Window + 10*time.Second)
	rate := tr.Rate(now)
	assert.Equal(t, float64(0), rate)
}

func TestTotalHashesIsUnwindowed(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	tr := New(start)
	tr.Increment(start.Add(WarmupPeriod+time.Second), 100)
	tr.Increment(start.Add(WarmupPeriod+200*time.Second), 200)
	assert.Equal(t, uint64(300), tr.TotalHashes())
}

func TestPreWarmupIncrementsDoNotCountTowardTotal(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	tr := New(start)
	tr.Increment(start.Add(time.Second), 1_000_000)
	assert.Equal(t, uint64(0), tr.TotalHashes())
}
