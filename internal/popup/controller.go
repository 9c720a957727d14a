// Package popup schedules when the registration popup is surfaced to the
// user.  The controller decides *when* the popup becomes visible and
// nothing else: it has no knowledge of checkout state and must never be
// blocked by it.
package popup

import (
	"sync"
	"time"

	"github.com/brajcamp/camp-registration/internal/sched"
)

// Config tunes the controller's timer and guards.
type Config struct {
	Interval          time.Duration // period of the auto-open timer
	Debounce          time.Duration // minimum gap between two opens
	ActivityWindow    time.Duration // how recent input must be for auto-open
	ScrollVelocityMax float64       // velocity above which the timer is cleared
}

// DefaultConfig matches the production popup cadence: a 90-second timer,
// a 5-second reopen debounce, a 30-second activity window and a scroll
// velocity ceiling of 50.
func DefaultConfig() Config {
	return Config{
		Interval:          90 * time.Second,
		Debounce:          5 * time.Second,
		ActivityWindow:    30 * time.Second,
		ScrollVelocityMax: 50,
	}
}

// Controller runs the auto-open timer behind three independent guards:
// debounce, user activity and surface health.  Degraded health or heavy
// scrolling clears the timer entirely instead of merely gating it, so no
// periodic work runs while the surface is struggling; the timer must then
// be explicitly restarted via the corresponding Notify method.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	tracker  *ActivityTracker
	health   HealthSampler
	sch      *sched.Scheduler
	timer    *sched.Handle
	isOpen   bool
	lastOpen time.Time
	mounted  bool
	disposed bool
	onOpen   func()
	onClose  func()
	now      func() time.Time
}

// NewController wires a controller to its activity and health inputs.
// onOpen/onClose surface the popup UI and may be nil.
func NewController(cfg Config, tracker *ActivityTracker, health HealthSampler, onOpen, onClose func()) *Controller {
	return &Controller{
		cfg:     cfg,
		tracker: tracker,
		health:  health,
		sch:     sched.New(),
		onOpen:  onOpen,
		onClose: onClose,
		now:     time.Now,
	}
}

// Start arms the auto-open timer.  Calling Start twice is harmless; Start
// after Stop is a no-op because the scheduler is gone.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.startTimerLocked()
	c.mu.Unlock()
}

// Stop tears the controller down.  Every outstanding timer is disposed and
// all later opens are suppressed; a stopped controller cannot be restarted.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.mounted = false
	c.disposed = true
	c.timer = nil
	c.mu.Unlock()
	c.sch.DisposeAll()
}

// IsOpen reports whether the popup is currently visible.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// Open surfaces the popup, subject to the mounted, debounce and health
// guards.  It returns true when the popup actually became visible.
func (c *Controller) Open() bool {
	c.mu.Lock()
	if !c.mounted || c.isOpen || !c.health.Healthy() {
		c.mu.Unlock()
		return false
	}
	now := c.now()
	if !c.lastOpen.IsZero() && now.Sub(c.lastOpen) < c.cfg.Debounce {
		// Rapid re-trigger; overlapping timers and events must collapse
		// into a single visible open.
		c.mu.Unlock()
		return false
	}
	c.isOpen = true
	c.lastOpen = now
	cb := c.onOpen
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

// Close hides the popup.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.mounted || !c.isOpen {
		c.mu.Unlock()
		return
	}
	c.isOpen = false
	cb := c.onClose
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// ReportScroll feeds the controller the current scroll velocity.  Above
// the ceiling the timer is cleared immediately so no periodic work fires
// during a heavy-scroll interaction.
func (c *Controller) ReportScroll(velocity float64) {
	if velocity <= c.cfg.ScrollVelocityMax {
		return
	}
	c.mu.Lock()
	c.stopTimerLocked()
	c.mu.Unlock()
}

// NotifyScrollSettled restarts the timer after a heavy-scroll suspension.
func (c *Controller) NotifyScrollSettled() {
	c.mu.Lock()
	if c.mounted && c.health.Healthy() {
		c.startTimerLocked()
	}
	c.mu.Unlock()
}

// NotifyHealth restarts or clears the timer on health flips.  Pass this as
// the Monitor's onChange callback.
func (c *Controller) NotifyHealth(healthy bool) {
	c.mu.Lock()
	if healthy && c.mounted {
		c.startTimerLocked()
	} else if !healthy {
		c.stopTimerLocked()
	}
	c.mu.Unlock()
}

// tick is the timer body.  All three guards are re-checked on every fire.
func (c *Controller) tick() {
	c.mu.Lock()
	if !c.mounted || c.isOpen {
		c.mu.Unlock()
		return
	}
	if !c.health.Healthy() {
		// Stop outright rather than opening into a degraded surface and
		// compounding the problem; NotifyHealth restarts on recovery.
		c.stopTimerLocked()
		c.mu.Unlock()
		return
	}
	focused := c.tracker.Focused()
	active := c.tracker.IsRecentlyActive(c.cfg.ActivityWindow)
	c.mu.Unlock()

	if !focused || !active {
		return
	}
	c.Open()
}

func (c *Controller) startTimerLocked() {
	if c.timer != nil {
		return
	}
	c.timer = c.sch.Every(c.cfg.Interval, c.tick)
}

func (c *Controller) stopTimerLocked() {
	if c.timer == nil {
		return
	}
	c.timer.Stop()
	c.timer = nil
}

// timerArmed reports whether the auto-open timer is currently scheduled.
func (c *Controller) timerArmed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}
