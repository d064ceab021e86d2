package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/poster-threads/internal/middleware"
	"github.com/d60-Lab/poster-threads/pkg/response"
)

const threadNotFound = "Thread not found"

type createThreadRequest struct {
	Title          string `json:"title"`
	InitialMessage string `json:"initial_message"`
}

type updateThreadRequest struct {
	Title string `json:"title"`
}

// ListThreads 当前用户的主题列表，按最近活跃倒序
// @Summary 主题列表
// @Tags 主题
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/thread/list [get]
func (h *Handler) ListThreads(c *gin.Context) {
	list, err := h.threadService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, err, threadNotFound)
		return
	}
	response.Success(c, gin.H{"threads": list})
}

// CreateThread 新建主题，可带首条消息
// @Summary 创建主题
// @Tags 主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createThreadRequest true "主题信息"
// @Success 201 {object} response.Response{data=service.CreateThreadResult}
// @Failure 400 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/thread/create [post]
func (h *Handler) CreateThread(c *gin.Context) {
	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	res, err := h.threadService.Create(c.Request.Context(), middleware.UserID(c), req.Title, req.InitialMessage)
	if err != nil {
		handleError(c, err, threadNotFound)
		return
	}
	response.Created(c, res)
}

// GetThread 主题详情：对话与关联海报
// @Summary 主题详情
// @Tags 主题
// @Produce json
// @Security BearerAuth
// @Param threadId path string true "主题ID"
// @Success 200 {object} response.Response{data=service.ThreadDetail}
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/thread/{threadId} [get]
func (h *Handler) GetThread(c *gin.Context) {
	detail, err := h.threadService.Get(c.Request.Context(), middleware.UserID(c), c.Param("threadId"))
	if err != nil {
		handleError(c, err, threadNotFound)
		return
	}
	response.Success(c, detail)
}

// UpdateThread 修改标题
// @Summary 修改主题标题
// @Tags 主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param threadId path string true "主题ID"
// @Param request body updateThreadRequest true "新标题"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/thread/{threadId} [put]
func (h *Handler) UpdateThread(c *gin.Context) {
	var req updateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	thread, err := h.threadService.Update(c.Request.Context(), middleware.UserID(c), c.Param("threadId"), req.Title)
	if err != nil {
		handleError(c, err, threadNotFound)
		return
	}
	response.Success(c, gin.H{"thread": thread})
}

// DeleteThread 删除主题及其对话
// @Summary 删除主题
// @Tags 主题
// @Produce json
// @Security BearerAuth
// @Param threadId path string true "主题ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/thread/{threadId} [delete]
func (h *Handler) DeleteThread(c *gin.Context) {
	if err := h.threadService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("threadId")); err != nil {
		handleError(c, err, threadNotFound)
		return
	}
	response.Success(c, gin.H{"message": "Thread deleted successfully"})
}
