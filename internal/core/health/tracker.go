package health

import (
	"sync"
	"time"
)

func NewTracker(policy Policy, startedAt time.Time) *Tracker {
	return &Tracker{
		policy:         policy,
		startedAt:      startedAt,
		classification: ClassStarting,
	}
}

// Tracker is the probe classification state machine.
//
// It is a plain timestamp-driven struct owned by the probe loop: feeding
// it probe outcomes never touches the wall clock, so the transition rules
// can be exercised in isolation. Reset may be called from other
// goroutines when the supervised process is relaunched.
type Tracker struct {
	mu                  sync.Mutex
	policy              Policy
	startedAt           time.Time
	classification      string
	consecutiveFailures int
}

func (t *Tracker) Classification() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.classification
}

func (t *Tracker) ConsecutiveFailures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consecutiveFailures
}

// Reset returns the machine to starting with a fresh start period.
// Called on every (re)launch of the supervised process; nothing from the
// previous process generation may influence the new classification.
func (t *Tracker) Reset(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = at
	t.classification = ClassStarting
	t.consecutiveFailures = 0
}

// Observe feeds one resolved probe outcome into the state machine and
// returns the resulting classification plus whether it changed.
//
// Rules:
//   - outcomes resolving inside the start period never classify
//   - a success always yields healthy and clears the failure counter
//   - failures accumulate from starting or healthy; the Retries-th
//     consecutive failure yields unhealthy, not earlier
//   - a single success while unhealthy recovers immediately
func (t *Tracker) Observe(success bool, at time.Time) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if at.Before(t.startedAt.Add(t.policy.StartPeriod)) {
		return t.classification, false
	}

	if success {
		t.consecutiveFailures = 0
		if t.classification != ClassHealthy {
			t.classification = ClassHealthy
			return t.classification, true
		}
		return t.classification, false
	}

	t.consecutiveFailures++
	if t.classification != ClassUnhealthy && t.consecutiveFailures >= t.policy.Retries {
		t.classification = ClassUnhealthy
		return t.classification, true
	}
	return t.classification, false
}
