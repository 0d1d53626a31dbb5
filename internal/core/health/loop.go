package health

import (
	"context"
	"log"
	"time"

	"steward/internal/store/hsm"
	"steward/internal/utils"
)

func NewProbeLoop(
	policy Policy,
	prober Prober,
	hsmHandler hsm.HsmHandler,
	eventWriter *utils.JsonlWriter,
	broadcaster *Broadcaster,
) *ProbeLoop {
	return &ProbeLoop{
		policy:      policy,
		prober:      prober,
		hsmHandler:  hsmHandler,
		eventWriter: eventWriter,
		broadcaster: broadcaster,
		tracker:     NewTracker(policy, time.Now()),
	}
}

// ProbeLoop drives the prober on a fixed wall-clock interval and feeds
// outcomes into the tracker. Probes are strictly sequential: the next
// attempt starts only after the previous one resolved and a full
// interval elapsed.
type ProbeLoop struct {
	policy      Policy
	prober      Prober
	hsmHandler  hsm.HsmHandler
	eventWriter *utils.JsonlWriter
	broadcaster *Broadcaster
	tracker     *Tracker
}

// Reset restarts the classification cycle for a relaunched process: the
// tracker returns to starting and a fresh start period begins at at.
func (l *ProbeLoop) Reset(at time.Time) {
	l.tracker.Reset(at)
}

// Run probes until ctx is cancelled. Probe failures are absorbed into
// the classification and never terminate the loop.
func (l *ProbeLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.policy.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.cycle(ctx)
		}
	}
}

// cycle runs one probe attempt and classifies its outcome.
func (l *ProbeLoop) cycle(ctx context.Context) ProbeEvent {
	attemptCtx, cancel := context.WithTimeout(ctx, l.policy.Timeout)
	begin := time.Now()
	err := l.prober.Probe(attemptCtx)
	cancel()

	// a timed-out attempt and a refused connection classify identically
	success := err == nil
	resolvedAt := time.Now()
	classification, transitioned := l.tracker.Observe(success, resolvedAt)

	ev := ProbeEvent{
		TS:                  resolvedAt.Format(time.RFC3339Nano),
		Outcome:             "success",
		Classification:      classification,
		Transitioned:        transitioned,
		ConsecutiveFailures: l.tracker.ConsecutiveFailures(),
		LatencyMs:           resolvedAt.Sub(begin).Milliseconds(),
	}
	if !success {
		ev.Outcome = "failure"
		ev.Error = err.Error()
	}

	if err := l.eventWriter.WriteJSONL(ev); err != nil {
		log.Printf("probe log write failed: %v", err)
	}
	if err := l.hsmHandler.RecordProbe(ev.Outcome, classification, l.tracker.ConsecutiveFailures()); err != nil {
		log.Printf("hsm record failed: %v", err)
	}
	if l.broadcaster != nil {
		l.broadcaster.Publish(ev)
	}

	if transitioned {
		log.Printf("[*] health classification changed: %s (consecutive failures=%d)",
			classification, l.tracker.ConsecutiveFailures())
	}
	return ev
}
