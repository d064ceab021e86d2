package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Health 存活检查，附带数据库连接状态。数据库断开时服务仍返回 200。
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	db := "disconnected"
	if h.gw.Check(c.Request.Context()) {
		db = "connected"
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Database: db, Timestamp: h.now()})
}
