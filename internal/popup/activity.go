package popup

import (
	"sync"
	"time"
)

// ActivityTracker records user input and focus signals for the popup
// controller.  UI event handlers call RecordActivity and SetFocused; the
// controller reads the derived state.  Encapsulating this here keeps the
// controller free of ambient global state.
type ActivityTracker struct {
	mu        sync.Mutex
	focused   bool
	lastInput time.Time
	now       func() time.Time
}

// NewActivityTracker returns a tracker that considers the surface focused
// until told otherwise.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{focused: true, now: time.Now}
}

// RecordActivity notes one input event (click, scroll, keypress, pointer
// move) at the current time.
func (a *ActivityTracker) RecordActivity() {
	a.mu.Lock()
	a.lastInput = a.now()
	a.mu.Unlock()
}

// SetFocused records whether the host surface currently has input focus.
func (a *ActivityTracker) SetFocused(focused bool) {
	a.mu.Lock()
	a.focused = focused
	a.mu.Unlock()
}

// Focused reports the last known focus state.
func (a *ActivityTracker) Focused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.focused
}

// IsRecentlyActive reports whether any input event occurred within the
// given window.  A tracker that never saw input is not active.
func (a *ActivityTracker) IsRecentlyActive(window time.Duration) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastInput.IsZero() {
		return false
	}
	return a.now().Sub(a.lastInput) <= window
}
