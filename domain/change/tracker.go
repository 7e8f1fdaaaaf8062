// Package change counts modification notifications within a session.
package change

import "sync"

// DefaultThreshold is the number of notifications that triggers a commit
// when no threshold is configured.
const DefaultThreshold = 5

// State is a point-in-time view of a Tracker.
type State struct {
	count     int
	threshold int
}

// Count returns the number of notifications recorded.
func (s State) Count() int { return s.count }

// Threshold returns the configured threshold.
func (s State) Threshold() int { return s.threshold }

// Reached reports whether the count has reached the threshold.
func (s State) Reached() bool { return s.count >= s.threshold }

// Tracker counts non-empty change notifications. A notification carrying
// any number of paths counts once. Safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	count     int
	threshold int
}

// NewTracker creates a Tracker. Thresholds below 1 fall back to DefaultThreshold.
func NewTracker(threshold int) *Tracker {
	return &Tracker{threshold: normalizeThreshold(threshold)}
}

// RecordNotification registers one change batch. Empty batches are ignored.
// It returns the resulting count and whether the threshold has been reached.
func (t *Tracker) RecordNotification(paths []string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(paths) == 0 {
		return t.count, false
	}
	t.count++
	return t.count, t.count >= t.threshold
}

// Count returns the current count.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Threshold returns the current threshold.
func (t *Tracker) Threshold() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.threshold
}

// Snapshot returns the count and threshold read under one lock.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{count: t.count, threshold: t.threshold}
}

// SetThreshold replaces the threshold. Values below 1 fall back to DefaultThreshold.
func (t *Tracker) SetThreshold(threshold int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.threshold = normalizeThreshold(threshold)
}

// Reset sets the count back to zero.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = 0
}

func normalizeThreshold(threshold int) int {
	if threshold < 1 {
		return DefaultThreshold
	}
	return threshold
}
