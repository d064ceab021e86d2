package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/poster-threads/internal/middleware"
	"github.com/d60-Lab/poster-threads/internal/service"
	"github.com/d60-Lab/poster-threads/pkg/logger"
	"github.com/d60-Lab/poster-threads/pkg/response"
)

const imageCacheControl = "public, max-age=3600"

type generatePosterRequest struct {
	Prompt         string `json:"prompt"`
	ConversationID string `json:"conversation_id"`
}

// GeneratePoster 调用算法服务生成海报。算法服务或数据库不可用时仍返回 200（降级结果）
// @Summary 生成海报
// @Tags 海报
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body generatePosterRequest true "提示词"
// @Success 200 {object} response.Response{data=service.GenerateResult}
// @Failure 400 {object} response.Response
// @Router /api/poster/generate [post]
func (h *Handler) GeneratePoster(c *gin.Context) {
	var req generatePosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	res, err := h.posterService.Generate(c.Request.Context(), middleware.UserID(c), service.GenerateRequest{
		Prompt:         req.Prompt,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		handleError(c, err, "Poster not found")
		return
	}
	response.Success(c, res)
}

// ListPosters 当前用户最近的海报
// @Summary 海报列表
// @Tags 海报
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 503 {object} response.Response
// @Router /api/poster/list [get]
func (h *Handler) ListPosters(c *gin.Context) {
	list, err := h.posterService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, err, "Poster not found")
		return
	}
	response.Success(c, gin.H{"posters": list})
}

// PosterImage 代理算法服务的海报图片
// @Summary 海报图片
// @Tags 海报
// @Produce image/png
// @Security BearerAuth
// @Param posterId path string true "海报ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/poster/image/{posterId} [get]
func (h *Handler) PosterImage(c *gin.Context) {
	img, err := h.imageRelay.Fetch(c.Request.Context(), c.Param("posterId"))
	if err != nil {
		handleError(c, err, "Image not found")
		return
	}
	defer img.Body.Close()

	c.Header("Content-Type", img.ContentType)
	c.Header("Cache-Control", imageCacheControl)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, img.Body); err != nil {
		// 头已写出，只能记录
		logger.Warn("stream poster image interrupted", zap.String("poster_id", c.Param("posterId")), zap.Error(err))
	}
}
