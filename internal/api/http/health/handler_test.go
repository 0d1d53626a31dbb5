package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	apimodel "steward/internal/api/http/utils"
	coreHealth "steward/internal/core/health"
	"steward/internal/store/hsm"
)

type fakeHsmHandler struct {
	probe hsm.ProbeInfo
}

func (f *fakeHsmHandler) RecordProbe(outcome string, classification string, consecutiveFailures int) error {
	return nil
}

func (f *fakeHsmHandler) Reset() error { return nil }

func (f *fakeHsmHandler) GetProbe() (hsm.ProbeInfo, error) { return f.probe, nil }

func TestGetHealthReadyOnlyWhenHealthy(t *testing.T) {
	cases := []struct {
		name           string
		classification string
		expectCode     int
	}{
		{name: "starting", classification: "starting", expectCode: http.StatusServiceUnavailable},
		{name: "healthy", classification: "healthy", expectCode: http.StatusOK},
		{name: "unhealthy", classification: "unhealthy", expectCode: http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			handler := &RequestHandler{
				hsmHandler: &fakeHsmHandler{probe: hsm.ProbeInfo{Classification: tc.classification}},
			}

			rec := httptest.NewRecorder()
			handler.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

			if rec.Code != tc.expectCode {
				t.Fatalf("expected %d, got %d", tc.expectCode, rec.Code)
			}

			var res apimodel.ApiResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("invalid response json: %v", err)
			}
			if tc.expectCode == http.StatusOK && res.Status != "success" {
				t.Fatalf("unexpected status: %s", res.Status)
			}
			if tc.expectCode != http.StatusOK && res.Status != "fail" {
				t.Fatalf("unexpected status: %s", res.Status)
			}
		})
	}
}

func TestGetProbeHistoryTailsLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "probe.jsonl")
	events := []coreHealth.ProbeEvent{
		{Outcome: "success", Classification: "healthy"},
		{Outcome: "failure", Classification: "healthy", ConsecutiveFailures: 1},
		{Outcome: "failure", Classification: "healthy", ConsecutiveFailures: 2},
	}
	var body []byte
	for _, ev := range events {
		b, _ := json.Marshal(ev)
		body = append(body, append(b, '\n')...)
	}
	if err := os.WriteFile(logPath, body, 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := &RequestHandler{
		hsmHandler:   &fakeHsmHandler{},
		probeLogPath: logPath,
	}

	rec := httptest.NewRecorder()
	handler.GetProbeHistory(rec, httptest.NewRequest(http.MethodGet, "/v1/health/probes?tail_lines=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var res struct {
		Status string                  `json:"status"`
		Data   []coreHealth.ProbeEvent `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if len(res.Data) != 2 {
		t.Fatalf("expected 2 events, got %d", len(res.Data))
	}
	if res.Data[1].ConsecutiveFailures != 2 {
		t.Fatalf("unexpected tail order: %+v", res.Data)
	}
}

func TestGetProbeHistoryMissingLogIsEmpty(t *testing.T) {
	handler := &RequestHandler{
		hsmHandler:   &fakeHsmHandler{},
		probeLogPath: filepath.Join(t.TempDir(), "missing.jsonl"),
	}

	rec := httptest.NewRecorder()
	handler.GetProbeHistory(rec, httptest.NewRequest(http.MethodGet, "/v1/health/probes", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetProbeHistoryRejectsBadLines(t *testing.T) {
	handler := &RequestHandler{hsmHandler: &fakeHsmHandler{}}

	rec := httptest.NewRecorder()
	handler.GetProbeHistory(rec, httptest.NewRequest(http.MethodGet, "/v1/health/probes?tail_lines=-1", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
