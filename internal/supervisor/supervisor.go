// Package supervisor restarts a failed component with exponential backoff.
// The registration surface wraps its popup and checkout widgets in one so a
// crash degrades to a retry instead of a dead page.
package supervisor

import (
	"sync"
	"time"

	"github.com/brajcamp/camp-registration/internal/sched"
)

// State is the supervised component's lifecycle position.
type State string

const (
	StateHealthy  State = "healthy"
	StateRetrying State = "retrying"
	StateGivenUp  State = "given_up"
)

// Policy tunes the retry schedule.  Attempt n waits
// BaseDelay * Multiplier^(n-1) before restarting.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy retries three times starting at two seconds, doubling.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second, Multiplier: 2}
}

// Supervisor tracks consecutive failures of one component and schedules
// restarts.  The component reports failures and recoveries; the supervisor
// owns the backoff timing and the give-up decision.
type Supervisor struct {
	mu       sync.Mutex
	policy   Policy
	state    State
	failures int
	lastErr  error

	sch      *sched.Scheduler
	retry    *sched.Handle
	restart  func()
	onGiveUp func(error)
}

// New returns a healthy supervisor.  restart is invoked after each backoff
// delay; onGiveUp fires once when MaxAttempts is exhausted and may be nil.
func New(policy Policy, restart func(), onGiveUp func(error)) *Supervisor {
	return &Supervisor{
		policy:   policy,
		state:    StateHealthy,
		sch:      sched.New(),
		restart:  restart,
		onGiveUp: onGiveUp,
	}
}

// State reports the current lifecycle position.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Failures reports the consecutive failure count since the last recovery.
func (s *Supervisor) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

// ReportFailure records one crash of the supervised component.  While
// attempts remain a restart is scheduled with the policy's backoff; once
// they run out the supervisor gives up for good.
func (s *Supervisor) ReportFailure(err error) {
	s.mu.Lock()
	if s.state == StateGivenUp {
		s.mu.Unlock()
		return
	}
	s.failures++
	s.lastErr = err
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	if s.failures > s.policy.MaxAttempts {
		s.state = StateGivenUp
		cb := s.onGiveUp
		s.mu.Unlock()
		if cb != nil {
			cb(err)
		}
		return
	}
	s.state = StateRetrying
	delay := s.delayFor(s.failures)
	s.retry = s.sch.After(delay, s.fireRestart)
	s.mu.Unlock()
}

// ReportRecovered marks the component healthy again and clears the failure
// streak.  A supervisor that already gave up stays given up.
func (s *Supervisor) ReportRecovered() {
	s.mu.Lock()
	if s.state == StateGivenUp {
		s.mu.Unlock()
		return
	}
	s.failures = 0
	s.lastErr = nil
	s.state = StateHealthy
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	s.mu.Unlock()
}

// Stop cancels any pending restart.  A stopped supervisor schedules
// nothing further.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	s.retry = nil
	s.mu.Unlock()
	s.sch.DisposeAll()
}

func (s *Supervisor) fireRestart() {
	s.mu.Lock()
	if s.state != StateRetrying {
		s.mu.Unlock()
		return
	}
	s.retry = nil
	cb := s.restart
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// delayFor returns the backoff before restart attempt n (1-based).
func (s *Supervisor) delayFor(attempt int) time.Duration {
	d := float64(s.policy.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= s.policy.Multiplier
	}
	return time.Duration(d)
}
