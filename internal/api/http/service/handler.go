package service

import (
	"net/http"
	"strconv"

	"steward/internal/api/http/logger"
	apimodel "steward/internal/api/http/utils"
	coreService "steward/internal/core/service"
)

func NewRequestHandler(supervisor coreService.SupervisorServiceHandler) *RequestHandler {
	return &RequestHandler{
		supervisor: supervisor,
	}
}

type RequestHandler struct {
	supervisor coreService.SupervisorServiceHandler
}

// GetService godoc
// @Summary get service status
// @Description get the supervised service record and its probe classification
// @Tags service
// @Produce json
// @Success 200 {object} apimodel.ApiResponse
// @Router /v1/service [get]
func (h *RequestHandler) GetService(w http.ResponseWriter, r *http.Request) {
	status, err := h.supervisor.Status()
	if err != nil {
		apimodel.RespondFail(w, http.StatusNotFound, "service not found: "+err.Error(), nil)
		return
	}

	logger.SetTarget(r.Context(), logger.Target{
		ServiceId:   status.Service.ServiceId,
		ServiceName: status.Service.Name,
	})

	apimodel.RespondSuccess(w, http.StatusOK, "service status", ServiceStatusResponse{
		ServiceId:      status.Service.ServiceId,
		Name:           status.Service.Name,
		State:          status.Service.State,
		Pid:            status.Service.Pid,
		Port:           status.Service.Port,
		Account:        status.Service.Account,
		Command:        status.Service.Command,
		ExitNote:       status.Service.ExitNote,
		Classification: status.Probe.Classification,
	})
}

// StartService godoc
// @Summary start service
// @Description launch the supervised service process
// @Tags service
// @Produce json
// @Success 200 {object} apimodel.ApiResponse
// @Router /v1/service/actions/start [post]
func (h *RequestHandler) StartService(w http.ResponseWriter, r *http.Request) {
	serviceId, err := h.supervisor.Start()
	if err != nil {
		apimodel.RespondFail(w, http.StatusInternalServerError, "service failed: "+err.Error(), ServiceActionResponse{ServiceId: ""})
		return
	}

	logger.SetTarget(r.Context(), logger.Target{ServiceId: serviceId})
	apimodel.RespondSuccess(w, http.StatusOK, "service started", ServiceActionResponse{ServiceId: serviceId})
}

// StopService godoc
// @Summary stop service
// @Description terminate the supervised service process
// @Tags service
// @Produce json
// @Success 200 {object} apimodel.ApiResponse
// @Router /v1/service/actions/stop [post]
func (h *RequestHandler) StopService(w http.ResponseWriter, r *http.Request) {
	serviceId, err := h.supervisor.Stop()
	if err != nil {
		apimodel.RespondFail(w, http.StatusInternalServerError, "service failed: "+err.Error(), ServiceActionResponse{ServiceId: ""})
		return
	}

	logger.SetTarget(r.Context(), logger.Target{ServiceId: serviceId})
	apimodel.RespondSuccess(w, http.StatusOK, "service stopped", ServiceActionResponse{ServiceId: serviceId})
}

// GetServiceLogs godoc
// @Summary tail service log
// @Description return the last lines of the service stdout/stderr log
// @Tags service
// @Produce plain
// @Param tail_lines query int false "number of lines"
// @Success 200 {string} string
// @Router /v1/service/logs [get]
func (h *RequestHandler) GetServiceLogs(w http.ResponseWriter, r *http.Request) {
	lines := 100
	if s := r.URL.Query().Get("tail_lines"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			apimodel.RespondFail(w, http.StatusBadRequest, "invalid tail_lines", nil)
			return
		}
		lines = n
	}

	data, err := h.supervisor.Logs(lines)
	if err != nil {
		apimodel.RespondFail(w, http.StatusInternalServerError, "tail failed: "+err.Error(), nil)
		return
	}

	logger.SetTarget(r.Context(), logger.Target{LogLines: lines})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}
