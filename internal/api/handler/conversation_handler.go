package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/poster-threads/internal/middleware"
	"github.com/d60-Lab/poster-threads/internal/service"
	"github.com/d60-Lab/poster-threads/pkg/response"
)

type newConversationRequest struct {
	ThreadID string `json:"thread_id" binding:"required"`
	Message  string `json:"message"`
}

// NewConversation 在主题下追加一条消息
// @Summary 追加对话
// @Tags 对话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body newConversationRequest true "消息"
// @Success 201 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/conversation/new [post]
func (h *Handler) NewConversation(c *gin.Context) {
	var req newConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "a valid thread_id is required")
		return
	}
	conv, err := h.conversationService.Append(c.Request.Context(), middleware.UserID(c), req.ThreadID, req.Message)
	if err != nil {
		handleError(c, err, threadNotFound)
		return
	}
	response.Created(c, gin.H{"conversation": conv})
}

// ConversationHistory 最近的对话，跨主题
// @Summary 对话历史
// @Tags 对话
// @Produce json
// @Security BearerAuth
// @Param limit query int false "条数，最多 50" default(50)
// @Failure 400 {object} response.Response
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/conversation/history [get]
func (h *Handler) ConversationHistory(c *gin.Context) {
	limit := service.DefaultHistoryLimit
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := h.conversationService.History(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		handleError(c, err, "Conversation not found")
		return
	}
	response.Success(c, gin.H{"conversations": list})
}
