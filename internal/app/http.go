package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yashpatel08/railsathi/internal/http"
	httpH "github.com/yashpatel08/railsathi/internal/http/handlers"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Complaint *httpH.ComplaintHandler
	Train     *httpH.TrainHandler
}

func wireHandlers(log *logger.Logger, cfg Config, db httpH.Pinger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Complaint: httpH.NewComplaintHandler(log, s.Complaints, cfg.Server.MaxFormBytes),
		Train:     httpH.NewTrainHandler(s.Catalog),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		HealthHandler:    handlers.Health,
		ComplaintHandler: handlers.Complaint,
		TrainHandler:     handlers.Train,
	})
}
