package popup

import (
	"testing"
	"time"
)

// fixedHealth is a HealthSampler pinned to one answer.
type fixedHealth bool

func (h fixedHealth) Healthy() bool { return bool(h) }

func testConfig() Config {
	return Config{
		Interval:          time.Hour, // ticks are driven manually in tests
		Debounce:          5 * time.Second,
		ActivityWindow:    30 * time.Second,
		ScrollVelocityMax: 50,
	}
}

// manualClock lets tests advance time explicitly.
type manualClock struct{ t time.Time }

func (m *manualClock) now() time.Time          { return m.t }
func (m *manualClock) advance(d time.Duration) { m.t = m.t.Add(d) }

func newTestController(health HealthSampler) (*Controller, *ActivityTracker, *manualClock) {
	clock := &manualClock{t: time.Unix(1_700_000_000, 0)}
	tracker := NewActivityTracker()
	tracker.now = clock.now
	c := NewController(testConfig(), tracker, health, nil, nil)
	c.now = clock.now
	c.Start()
	return c, tracker, clock
}

func TestOpen_DebouncesRapidReopens(t *testing.T) {
	c, _, clock := newTestController(fixedHealth(true))
	defer c.Stop()

	if !c.Open() {
		t.Fatal("first open refused")
	}
	c.Close()

	clock.advance(2 * time.Second)
	if c.Open() {
		t.Error("reopened within the debounce window")
	}

	clock.advance(4 * time.Second)
	if !c.Open() {
		t.Error("open refused after the debounce window passed")
	}
}

func TestOpen_WhileAlreadyOpenIsNoop(t *testing.T) {
	c, _, _ := newTestController(fixedHealth(true))
	defer c.Stop()

	c.Open()
	if c.Open() {
		t.Error("second open reported success while already open")
	}
	if !c.IsOpen() {
		t.Error("popup not open")
	}
}

func TestTick_RequiresFocus(t *testing.T) {
	c, tracker, _ := newTestController(fixedHealth(true))
	defer c.Stop()

	tracker.RecordActivity()
	tracker.SetFocused(false)
	c.tick()
	if c.IsOpen() {
		t.Error("popup opened on an unfocused surface")
	}

	tracker.SetFocused(true)
	c.tick()
	if !c.IsOpen() {
		t.Error("popup did not open once focused and active")
	}
}

func TestTick_RequiresRecentActivity(t *testing.T) {
	c, tracker, clock := newTestController(fixedHealth(true))
	defer c.Stop()

	// No activity ever recorded.
	c.tick()
	if c.IsOpen() {
		t.Error("popup opened with no recorded activity")
	}

	tracker.RecordActivity()
	clock.advance(31 * time.Second)
	c.tick()
	if c.IsOpen() {
		t.Error("popup opened on stale activity")
	}

	tracker.RecordActivity()
	c.tick()
	if !c.IsOpen() {
		t.Error("popup did not open on fresh activity")
	}
}

func TestTick_DegradedHealthStopsTimer(t *testing.T) {
	c, tracker, _ := newTestController(fixedHealth(false))
	defer c.Stop()

	tracker.RecordActivity()
	c.tick()
	if c.IsOpen() {
		t.Error("popup opened while degraded")
	}
	if c.timerArmed() {
		t.Error("timer still armed after degraded tick")
	}

	// Recovery restarts the timer.
	c.NotifyHealth(true)
	if !c.timerArmed() {
		t.Error("timer not rearmed on recovery")
	}
}

func TestReportScroll_ClearsTimerImmediately(t *testing.T) {
	c, _, _ := newTestController(fixedHealth(true))
	defer c.Stop()

	c.ReportScroll(30)
	if !c.timerArmed() {
		t.Error("timer cleared below the velocity ceiling")
	}

	c.ReportScroll(80)
	if c.timerArmed() {
		t.Error("timer survived a heavy-scroll report")
	}

	c.NotifyScrollSettled()
	if !c.timerArmed() {
		t.Error("timer not restarted once scrolling settled")
	}
}

func TestStop_SuppressesEverything(t *testing.T) {
	c, tracker, _ := newTestController(fixedHealth(true))
	tracker.RecordActivity()

	c.Stop()
	if c.Open() {
		t.Error("open succeeded after Stop")
	}
	c.tick()
	if c.IsOpen() {
		t.Error("tick opened after Stop")
	}
}

func TestStart_AfterStopIsNoop(t *testing.T) {
	c, tracker, _ := newTestController(fixedHealth(true))
	tracker.RecordActivity()

	c.Stop()
	c.Start()
	if c.Open() {
		t.Error("open succeeded on a torn-down controller")
	}
	if c.timerArmed() {
		t.Error("timer armed on a torn-down controller")
	}
	c.tick()
	if c.IsOpen() {
		t.Error("tick opened a torn-down controller")
	}
}

func TestMonitor_FlipsDriveController(t *testing.T) {
	var c *Controller
	m := NewMonitor(DefaultThresholds(), func(healthy bool) { c.NotifyHealth(healthy) })
	clock := &manualClock{t: time.Unix(1_700_000_000, 0)}
	tracker := NewActivityTracker()
	tracker.now = clock.now
	c = NewController(testConfig(), tracker, m, nil, nil)
	c.now = clock.now
	c.Start()
	defer c.Stop()

	m.Observe(Sample{FrameRate: 12, MemoryMB: 40, RenderTimeMs: 5})
	if c.timerArmed() {
		t.Error("timer armed while frame rate below floor")
	}

	m.Observe(Sample{FrameRate: 60, MemoryMB: 40, RenderTimeMs: 5})
	if !c.timerArmed() {
		t.Error("timer not restarted after recovery")
	}
}
