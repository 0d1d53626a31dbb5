package health

type HealthResponse struct {
	Classification      string `json:"classification"`
	ConsecutiveFailures int    `json:"consecutiveFailures"`
	TotalProbes         int    `json:"totalProbes"`
	TotalFailures       int    `json:"totalFailures"`
	LastOutcome         string `json:"lastOutcome,omitempty"`
	LastProbeAt         string `json:"lastProbeAt,omitempty"`
	LastTransitionAt    string `json:"lastTransitionAt,omitempty"`
}
