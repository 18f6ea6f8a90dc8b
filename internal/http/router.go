package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yashpatel08/railsathi/internal/http/handlers"
	httpMW "github.com/yashpatel08/railsathi/internal/http/middleware"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

const APIPrefix = "/rs_microservice"

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	HealthHandler    *httpH.HealthHandler
	ComplaintHandler *httpH.ComplaintHandler
	TrainHandler     *httpH.TrainHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	api := r.Group(APIPrefix)

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		api.GET("", cfg.HealthHandler.Root)
		api.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	// Complaints
	if cfg.ComplaintHandler != nil {
		api.GET("/complaint/get/:complain_id", cfg.ComplaintHandler.GetComplaint)
		api.GET("/complaint/get/date/:date_str", cfg.ComplaintHandler.ListByDate)
		api.POST("/complaint/add", cfg.ComplaintHandler.CreateComplaint)
		api.PATCH("/complaint/update/:complain_id", cfg.ComplaintHandler.UpdateComplaint)
		api.PUT("/complaint/update/:complain_id", cfg.ComplaintHandler.ReplaceComplaint)
		api.DELETE("/complaint/delete/:complain_id", cfg.ComplaintHandler.DeleteComplaint)
		api.DELETE("/media/delete/:complain_id", cfg.ComplaintHandler.DeleteMedia)
	}

	// Trains
	if cfg.TrainHandler != nil {
		api.GET("/trains", cfg.TrainHandler.ListTrains)
		api.POST("/train", cfg.TrainHandler.CreateTrain)
		api.GET("/trains/:train_no", cfg.TrainHandler.GetTrain)
		api.GET("/train_details/:train_no", cfg.TrainHandler.GetTrainDetails)
	}

	return r
}
