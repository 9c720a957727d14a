package popup

import "sync"

// HealthSampler reports whether the host surface is currently degraded.
// The popup controller refuses to open, and stops its timer entirely,
// while the sampler reports unhealthy.
type HealthSampler interface {
	Healthy() bool
}

// Sample is one performance observation of the host surface.
type Sample struct {
	FrameRate    float64 // rendered frames per second
	MemoryMB     float64 // heap usage in megabytes
	RenderTimeMs float64 // duration of the last render pass
}

// Thresholds are the floors/ceilings that mark a surface degraded.
type Thresholds struct {
	MinFrameRate    float64
	MaxMemoryMB     float64
	MaxRenderTimeMs float64
}

// DefaultThresholds matches the registration popup's production tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{MinFrameRate: 25, MaxMemoryMB: 150, MaxRenderTimeMs: 20}
}

// Monitor is a HealthSampler fed by periodic Samples.  It starts healthy
// and invokes onChange on every healthy/degraded flip, which is how the
// controller learns to stop or restart its timer.
type Monitor struct {
	mu       sync.Mutex
	th       Thresholds
	degraded bool
	onChange func(healthy bool)
}

// NewMonitor returns a Monitor with the given thresholds.  onChange may be
// nil.
func NewMonitor(th Thresholds, onChange func(healthy bool)) *Monitor {
	return &Monitor{th: th, onChange: onChange}
}

// Observe records one sample and fires onChange if the health state
// flipped.  The callback runs outside the lock.
func (m *Monitor) Observe(s Sample) {
	degraded := s.FrameRate < m.th.MinFrameRate ||
		s.MemoryMB > m.th.MaxMemoryMB ||
		s.RenderTimeMs > m.th.MaxRenderTimeMs

	m.mu.Lock()
	flipped := degraded != m.degraded
	m.degraded = degraded
	cb := m.onChange
	m.mu.Unlock()

	if flipped && cb != nil {
		cb(!degraded)
	}
}

// Healthy reports the current state.
func (m *Monitor) Healthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.degraded
}
