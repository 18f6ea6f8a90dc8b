package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yashpatel08/railsathi/internal/domain"
	"github.com/yashpatel08/railsathi/internal/http/response"
	"github.com/yashpatel08/railsathi/internal/services"
)

type TrainHandler struct {
	catalog services.TrainCatalogService
}

func NewTrainHandler(catalog services.TrainCatalogService) *TrainHandler {
	return &TrainHandler{catalog: catalog}
}

type createTrainRequest struct {
	TrainNo     string  `json:"train_no"`
	TrainName   *string `json:"train_name"`
	Source      *string `json:"source"`
	Destination *string `json:"destination"`
	StartTime   *string `json:"start_time"`
	ArrivalTime *string `json:"arrival_time"`
}

// GET /rs_microservice/trains
func (h *TrainHandler) ListTrains(c *gin.Context) {
	rows, err := h.catalog.ListTrains(c.Request.Context())
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, "Train list retrieved successfully", rows)
}

// POST /rs_microservice/train
func (h *TrainHandler) CreateTrain(c *gin.Context) {
	var req createTrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	train, err := h.catalog.CreateTrain(c.Request.Context(), &types.Train{
		TrainNo:     req.TrainNo,
		TrainName:   req.TrainName,
		Source:      req.Source,
		Destination: req.Destination,
		StartTime:   req.StartTime,
		ArrivalTime: req.ArrivalTime,
	})
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, "Train added successfully", train)
}

// GET /rs_microservice/trains/:train_no
func (h *TrainHandler) GetTrain(c *gin.Context) {
	train, err := h.catalog.GetTrain(c.Request.Context(), c.Param("train_no"))
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, "Train retrieved successfully", train)
}

// GET /rs_microservice/train_details/:train_no
func (h *TrainHandler) GetTrainDetails(c *gin.Context) {
	view, err := h.catalog.GetTrainDetails(c.Request.Context(), c.Param("train_no"))
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, "Train details retrieved successfully", view)
}
