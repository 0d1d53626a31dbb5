package hsm

import "time"

type ProbeInfo struct {
	Classification      string    `json:"classification"` // starting | healthy | unhealthy
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	TotalProbes         int       `json:"totalProbes"`
	TotalFailures       int       `json:"totalFailures"`
	LastOutcome         string    `json:"lastOutcome,omitempty"` // success | failure
	LastProbeAt         time.Time `json:"lastProbeAt"`
	LastTransitionAt    time.Time `json:"lastTransitionAt"`
}

type HealthState struct {
	Version string    `json:"version"`
	Probe   ProbeInfo `json:"probe"`
}
