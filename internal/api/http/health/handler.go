package health

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"steward/internal/api/http/logger"
	apimodel "steward/internal/api/http/utils"
	coreHealth "steward/internal/core/health"
	"steward/internal/store/hsm"
	"steward/internal/utils"
)

func NewRequestHandler() *RequestHandler {
	return &RequestHandler{
		hsmHandler:   hsm.NewHsmManager(hsm.NewHsmStore(utils.HsmStorePath)),
		probeLogPath: utils.ProbeLogPath,
	}
}

type RequestHandler struct {
	hsmHandler   hsm.HsmHandler
	probeLogPath string
}

// GetHealth godoc
// @Summary get health classification
// @Description returns 200 only when the service is classified healthy
// @Tags health
// @Produce json
// @Success 200 {object} apimodel.ApiResponse
// @Failure 503 {object} apimodel.ApiResponse
// @Router /v1/health [get]
func (h *RequestHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	probe, err := h.hsmHandler.GetProbe()
	if err != nil {
		apimodel.RespondFail(w, http.StatusInternalServerError, "health lookup failed: "+err.Error(), nil)
		return
	}

	logger.SetTarget(r.Context(), logger.Target{Classification: probe.Classification})

	res := toHealthResponse(probe)
	if probe.Classification == coreHealth.ClassHealthy {
		apimodel.RespondSuccess(w, http.StatusOK, "service healthy", res)
		return
	}
	// starting and unhealthy are both not-ready for traffic
	apimodel.RespondFail(w, http.StatusServiceUnavailable, "service "+probe.Classification, res)
}

// GetProbeHistory godoc
// @Summary list recent probe outcomes
// @Description tail of the probe outcome log
// @Tags health
// @Produce json
// @Param tail_lines query int false "number of probe records"
// @Success 200 {object} apimodel.ApiResponse
// @Router /v1/health/probes [get]
func (h *RequestHandler) GetProbeHistory(w http.ResponseWriter, r *http.Request) {
	lines := 50
	if s := r.URL.Query().Get("tail_lines"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			apimodel.RespondFail(w, http.StatusBadRequest, "invalid tail_lines", nil)
			return
		}
		lines = n
	}

	data, err := utils.TailLines(h.probeLogPath, lines, 1<<20)
	if err != nil {
		apimodel.RespondSuccess(w, http.StatusOK, "probe history", []coreHealth.ProbeEvent{})
		return
	}

	events := make([]coreHealth.ProbeEvent, 0, lines)
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var ev coreHealth.ProbeEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	apimodel.RespondSuccess(w, http.StatusOK, "probe history", events)
}

func toHealthResponse(probe hsm.ProbeInfo) HealthResponse {
	res := HealthResponse{
		Classification:      probe.Classification,
		ConsecutiveFailures: probe.ConsecutiveFailures,
		TotalProbes:         probe.TotalProbes,
		TotalFailures:       probe.TotalFailures,
		LastOutcome:         probe.LastOutcome,
	}
	if !probe.LastProbeAt.IsZero() {
		res.LastProbeAt = probe.LastProbeAt.Format(time.RFC3339)
	}
	if !probe.LastTransitionAt.IsZero() {
		res.LastTransitionAt = probe.LastTransitionAt.Format(time.RFC3339)
	}
	return res
}
