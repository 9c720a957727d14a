package supervisor

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestReportFailure_SchedulesRestart(t *testing.T) {
	restarted := make(chan struct{}, 1)
	s := New(fastPolicy(), func() { restarted <- struct{}{} }, nil)
	defer s.Stop()

	s.ReportFailure(errors.New("render crash"))
	if st := s.State(); st != StateRetrying {
		t.Fatalf("state = %q, want %q", st, StateRetrying)
	}

	select {
	case <-restarted:
	case <-time.After(time.Second):
		t.Fatal("restart never fired")
	}
}

func TestReportRecovered_ResetsStreak(t *testing.T) {
	s := New(fastPolicy(), nil, nil)
	defer s.Stop()

	s.ReportFailure(errors.New("crash"))
	s.ReportFailure(errors.New("crash"))
	if n := s.Failures(); n != 2 {
		t.Fatalf("failures = %d, want 2", n)
	}

	s.ReportRecovered()
	if st, n := s.State(), s.Failures(); st != StateHealthy || n != 0 {
		t.Errorf("state = %q failures = %d after recovery", st, n)
	}

	// The streak starts over, so the next crash is attempt one again.
	s.ReportFailure(errors.New("crash"))
	if n := s.Failures(); n != 1 {
		t.Errorf("failures = %d after fresh crash, want 1", n)
	}
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	var gaveUp atomic.Int32
	var restarts atomic.Int32
	s := New(Policy{MaxAttempts: 2, BaseDelay: time.Hour, Multiplier: 2},
		func() { restarts.Add(1) },
		func(err error) { gaveUp.Add(1) })
	defer s.Stop()

	s.ReportFailure(errors.New("crash 1"))
	s.ReportFailure(errors.New("crash 2"))
	s.ReportFailure(errors.New("crash 3"))
	if st := s.State(); st != StateGivenUp {
		t.Fatalf("state = %q, want %q", st, StateGivenUp)
	}
	if n := gaveUp.Load(); n != 1 {
		t.Errorf("onGiveUp fired %d times, want 1", n)
	}

	// Further reports are inert either way.
	s.ReportFailure(errors.New("crash 4"))
	s.ReportRecovered()
	if st := s.State(); st != StateGivenUp {
		t.Errorf("state = %q after give-up, want it to stay given up", st)
	}

	time.Sleep(20 * time.Millisecond)
	if n := restarts.Load(); n != 0 {
		t.Errorf("%d restarts fired despite hour-long backoff", n)
	}
}

func TestDelayFor_GrowsExponentially(t *testing.T) {
	s := New(Policy{MaxAttempts: 5, BaseDelay: 2 * time.Second, Multiplier: 2}, nil, nil)
	defer s.Stop()

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	for i, w := range want {
		if got := s.delayFor(i + 1); got != w {
			t.Errorf("delayFor(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestRecoveryCancelsPendingRestart(t *testing.T) {
	var restarts atomic.Int32
	s := New(Policy{MaxAttempts: 3, BaseDelay: 20 * time.Millisecond, Multiplier: 2},
		func() { restarts.Add(1) }, nil)
	defer s.Stop()

	s.ReportFailure(errors.New("crash"))
	s.ReportRecovered()

	time.Sleep(60 * time.Millisecond)
	if n := restarts.Load(); n != 0 {
		t.Errorf("%d restarts fired after recovery", n)
	}
}
