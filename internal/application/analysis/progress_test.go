package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAdvancesTowardCap(t *testing.T) {
	tr := newTracker(nil)
	defer tr.Stop()

	tr.Phase("Reading drawing", 20)
	time.Sleep(5 * tickInterval)

	snap := tr.Snapshot()
	assert.Greater(t, snap.Percent, 0)
	assert.LessOrEqual(t, snap.Percent, 20)
	assert.Equal(t, "Reading drawing", snap.Phase)
}

func TestTrackerNeverExceedsCap(t *testing.T) {
	tr := newTracker(nil)
	defer tr.Stop()

	tr.Phase("Compressing drawing", 5)
	time.Sleep(10 * tickInterval)
	assert.LessOrEqual(t, tr.Snapshot().Percent, 5)
}

func TestTrackerCapClampedBelowHundred(t *testing.T) {
	tr := newTracker(nil)
	defer tr.Stop()

	tr.Phase("Analyzing drawing", 250)
	time.Sleep(3 * tickInterval)
	assert.Less(t, tr.Snapshot().Percent, 100, "only Done may reach 100")
}

func TestTrackerStopFreezesPercent(t *testing.T) {
	tr := newTracker(nil)
	tr.Phase("Analyzing drawing", 90)
	time.Sleep(3 * tickInterval)
	tr.Stop()

	frozen := tr.Snapshot().Percent
	time.Sleep(3 * tickInterval)
	assert.Equal(t, frozen, tr.Snapshot().Percent)
}

func TestTrackerDoneIsHundredAndStops(t *testing.T) {
	var got []Snapshot
	tr := newTracker(func(s Snapshot) { got = append(got, s) })
	tr.Phase("Analyzing drawing", 90)
	tr.Done()

	require.NotEmpty(t, got)
	assert.Equal(t, 100, got[len(got)-1].Percent)
	assert.Equal(t, 100, tr.Snapshot().Percent)

	// stopping twice must be safe
	tr.Stop()
}

func TestTrackerMonotonicAcrossPhases(t *testing.T) {
	var got []Snapshot
	tr := newTracker(func(s Snapshot) { got = append(got, s) })

	tr.Phase("Reading drawing", 15)
	time.Sleep(2 * tickInterval)
	tr.Phase("Analyzing drawing", 90)
	time.Sleep(2 * tickInterval)
	// a stale smaller cap must not pull the indicator backwards
	tr.Phase("Preparing results", 40)
	time.Sleep(2 * tickInterval)
	tr.Stop()

	last := -1
	for _, s := range got {
		require.GreaterOrEqual(t, s.Percent, last)
		last = s.Percent
	}
}
