package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/judiguard/judi_guard_server/internal/model/dto"
	"github.com/judiguard/judi_guard_server/internal/pkg/classifier"
	"github.com/judiguard/judi_guard_server/internal/pkg/response"
	"github.com/judiguard/judi_guard_server/internal/service"
)

type PredictHandler struct {
	predictService *service.PredictService
}

func NewPredictHandler(predictService *service.PredictService) *PredictHandler {
	return &PredictHandler{
		predictService: predictService,
	}
}

// Predict classifies one piece of text without touching YouTube.
// POST /api/v1/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var req dto.PredictTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.predictService.Predict(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, classifier.ErrAlreadyLoading):
			response.Error(c, response.CodeServerError, "model is warming up, retry shortly")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
