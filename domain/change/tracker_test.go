package change_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helixml/autocommit/domain/change"
)

func TestNewTracker_DefaultsThreshold(t *testing.T) {
	assert.Equal(t, change.DefaultThreshold, change.NewTracker(0).Threshold())
	assert.Equal(t, change.DefaultThreshold, change.NewTracker(-3).Threshold())
	assert.Equal(t, 2, change.NewTracker(2).Threshold())
}

func TestTracker_CountsOncePerBatch(t *testing.T) {
	tracker := change.NewTracker(5)

	count, reached := tracker.RecordNotification([]string{"a.go", "b.go", "c.go"})
	assert.Equal(t, 1, count)
	assert.False(t, reached)

	count, _ = tracker.RecordNotification([]string{"a.go"})
	assert.Equal(t, 2, count)
}

func TestTracker_IgnoresEmptyBatch(t *testing.T) {
	tracker := change.NewTracker(5)
	tracker.RecordNotification([]string{"a.go"})

	count, reached := tracker.RecordNotification(nil)
	assert.Equal(t, 1, count)
	assert.False(t, reached)

	count, _ = tracker.RecordNotification([]string{})
	assert.Equal(t, 1, count)
}

func TestTracker_ThresholdScenario(t *testing.T) {
	tracker := change.NewTracker(5)

	for i := 1; i <= 4; i++ {
		count, reached := tracker.RecordNotification([]string{"file.txt"})
		assert.Equal(t, i, count)
		assert.False(t, reached, "notification %d should not reach threshold", i)
	}

	count, reached := tracker.RecordNotification([]string{"file.txt"})
	assert.Equal(t, 5, count)
	assert.True(t, reached)

	tracker.Reset()
	assert.Equal(t, 0, tracker.Count())
}

func TestTracker_KeepsCountingPastThreshold(t *testing.T) {
	tracker := change.NewTracker(1)
	tracker.RecordNotification([]string{"x"})

	count, reached := tracker.RecordNotification([]string{"x"})
	assert.Equal(t, 2, count)
	assert.True(t, reached)
}

func TestTracker_SetThreshold(t *testing.T) {
	tracker := change.NewTracker(5)
	tracker.RecordNotification([]string{"x"})
	tracker.RecordNotification([]string{"x"})

	tracker.SetThreshold(2)
	state := tracker.Snapshot()
	assert.Equal(t, 2, state.Count())
	assert.Equal(t, 2, state.Threshold())
	assert.True(t, state.Reached())

	tracker.SetThreshold(0)
	assert.Equal(t, change.DefaultThreshold, tracker.Threshold())
}

func TestTracker_ConcurrentNotifications(t *testing.T) {
	tracker := change.NewTracker(1000)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			for range 10 {
				tracker.RecordNotification([]string{"f"})
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 500, tracker.Count())
}
