package health

import (
	"errors"
	"time"
)

const (
	ClassStarting  = "starting"
	ClassHealthy   = "healthy"
	ClassUnhealthy = "unhealthy"
)

// Policy holds the probe timing parameters.
type Policy struct {
	Interval    time.Duration
	Timeout     time.Duration
	StartPeriod time.Duration
	Retries     int
}

func DefaultPolicy() Policy {
	return Policy{
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		StartPeriod: 5 * time.Second,
		Retries:     3,
	}
}

func (p Policy) Validate() error {
	if p.StartPeriod < 0 {
		return errors.New("startPeriod must be >= 0")
	}
	if p.Retries < 1 {
		return errors.New("retries must be >= 1")
	}
	if p.Interval <= p.Timeout {
		// a probe must be able to resolve before the next one starts
		return errors.New("interval must be greater than timeout")
	}
	return nil
}

// ProbeEvent is one probe outcome, appended to the probe JSONL log and
// published to stream subscribers.
type ProbeEvent struct {
	TS                  string `json:"ts"`
	Outcome             string `json:"outcome"` // success | failure
	Classification      string `json:"classification"`
	Transitioned        bool   `json:"transitioned,omitempty"`
	ConsecutiveFailures int    `json:"consecutiveFailures"`
	LatencyMs           int64  `json:"latency_ms"`
	Error               string `json:"error,omitempty"`
}
