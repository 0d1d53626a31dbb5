package http

import (
	"log"
	"os"

	_ "steward/docs"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	healthapi "steward/internal/api/http/health"
	imageapi "steward/internal/api/http/image"
	"steward/internal/api/http/logger"
	serviceapi "steward/internal/api/http/service"
	wsapi "steward/internal/api/http/websocket"
	coreHealth "steward/internal/core/health"
	coreService "steward/internal/core/service"
	"steward/internal/utils"
)

// @title Steward API
// @version 1.0
// @description Management API for the Steward service supervisor
// @BasePath /
// @schemes http

func NewApiRouter(supervisor coreService.SupervisorServiceHandler, broadcaster *coreHealth.Broadcaster) *chi.Mux {
	r := chi.NewRouter()

	serviceHandler := serviceapi.NewRequestHandler(supervisor)
	healthHandler := healthapi.NewRequestHandler()
	imageHandler := imageapi.NewRequestHandler()
	streamHandler := wsapi.NewRequestHandler(broadcaster)

	// middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(logger.LoggerMiddleware(newAuditLogger(), "steward", nodeName()))

	// == swagger ==
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// == v1 ==
	// == service ==
	r.Get("/v1/service", serviceHandler.GetService)
	r.Post("/v1/service/actions/start", serviceHandler.StartService)
	r.Post("/v1/service/actions/stop", serviceHandler.StopService)
	r.Get("/v1/service/logs", serviceHandler.GetServiceLogs)

	// == health ==
	r.Get("/v1/health", healthHandler.GetHealth)
	r.Get("/v1/health/probes", healthHandler.GetProbeHistory)
	r.Get("/v1/health/stream", streamHandler.ServeHTTP)

	// == images ==
	r.Get("/v1/images", imageHandler.GetImageList)

	return r
}

func newAuditLogger() logger.Logger {
	w, err := utils.NewJsonlWriter(utils.AuditLogPath)
	if err != nil {
		log.Printf("[*] audit log unavailable: %v", err)
		return logger.JsonLineLogger{Out: os.Stderr}
	}
	return auditLogger{writer: w}
}

type auditLogger struct {
	writer *utils.JsonlWriter
}

func (l auditLogger) Write(event logger.Event) {
	_ = l.writer.WriteJSONL(event)
}

func nodeName() string {
	host, err := os.Hostname()
	if err != nil {
		return ""
	}
	return host
}
