package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/judiguard/judi_guard_server/internal/api/middleware"
	"github.com/judiguard/judi_guard_server/internal/pkg/response"
	"github.com/judiguard/judi_guard_server/internal/service"
)

type StudioHandler struct {
	studioService *service.StudioService
}

func NewStudioHandler(studioService *service.StudioService) *StudioHandler {
	return &StudioHandler{
		studioService: studioService,
	}
}

// CommentLink returns a YouTube Studio deep link to the run's comment
// moderation page, pre-selecting the owner's Google account.
// GET /api/v1/analyses/:id/studio-link
func (h *StudioHandler) CommentLink(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	analysisID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid analysis id")
		return
	}

	link, err := h.studioService.CommentLink(userID, analysisID)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"studio_url": link})
}
