package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/judiguard/judi_guard_server/internal/api/middleware"
	"github.com/judiguard/judi_guard_server/internal/model/dto"
	"github.com/judiguard/judi_guard_server/internal/pkg/response"
	"github.com/judiguard/judi_guard_server/internal/pkg/youtube"
	"github.com/judiguard/judi_guard_server/internal/service"
)

type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Start queues a new analysis run for a video.
// POST /api/v1/analyses
func (h *AnalysisHandler) Start(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.StartAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	analysis, err := h.analysisService.Start(c.Request.Context(), userID, req.VideoURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVideoID):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrYouTubeNotConnected):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "analysis queued", service.AnalysisDetailFromModel(analysis))
}

// List pages through the user's runs, newest first.
// GET /api/v1/analyses
func (h *AnalysisHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")

	analyses, total, err := h.analysisService.List(userID, page, pageSize, status)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	items := make([]*dto.AnalysisListItem, 0, len(analyses))
	for _, a := range analyses {
		items = append(items, service.AnalysisListItemFromModel(a))
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// Get returns one run.
// GET /api/v1/analyses/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
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

	analysis, err := h.analysisService.GetByID(userID, analysisID)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, service.AnalysisDetailFromModel(analysis))
}

// Results pages through a run's classified comments.
// GET /api/v1/analyses/:id/comments
func (h *AnalysisHandler) Results(c *gin.Context) {
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

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	classification := c.Query("classification")

	comments, total, err := h.analysisService.Results(userID, analysisID, page, pageSize, classification)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	items := make([]*dto.AnalyzedCommentItem, 0, len(comments))
	for _, comment := range comments {
		items = append(items, service.CommentItemFromModel(comment))
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// Delete removes a run record. Runs that still hold analyzed comments
// are kept.
// DELETE /api/v1/analyses/:id
func (h *AnalysisHandler) Delete(c *gin.Context) {
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

	if err := h.analysisService.Delete(userID, analysisID); err != nil {
		switch {
		case errors.Is(err, service.ErrAnalysisNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAnalysisHasComments):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "analysis deleted", nil)
}

// DeleteComment removes one flagged comment from YouTube.
// DELETE /api/v1/comments/:id
func (h *AnalysisHandler) DeleteComment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid comment id")
		return
	}

	comment, err := h.analysisService.DeleteComment(c.Request.Context(), userID, commentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrYouTubeNotConnected):
			response.PermissionError(c, err.Error())
		case errors.Is(err, youtube.ErrTokenRefresh):
			response.AuthError(c, err.Error())
		case errors.Is(err, youtube.ErrNotCommentOwner):
			response.PermissionError(c, err.Error())
		case errors.Is(err, youtube.ErrQuotaExceeded):
			response.QuotaError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "comment deleted from youtube", service.CommentItemFromModel(comment))
}

// BatchDelete removes every flagged comment of a run from YouTube.
// POST /api/v1/analyses/:id/batch-delete
func (h *AnalysisHandler) BatchDelete(c *gin.Context) {
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

	result, err := h.analysisService.BatchDeleteJudi(c.Request.Context(), userID, analysisID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnalysisNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrYouTubeNotConnected):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "batch deletion finished", result)
}
