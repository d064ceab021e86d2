package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/poster-threads/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func write(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, "success", data)
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, "created", data)
}

// BadRequest 400，message 面向调用方，可直接展示
func BadRequest(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: message})
}

func NotFound(c *gin.Context, message string) {
	write(c, http.StatusNotFound, message, nil)
}

func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: http.StatusTooManyRequests, Message: "too many requests, please retry later"})
}

func BadGateway(c *gin.Context, message string) {
	write(c, http.StatusBadGateway, message, nil)
}

func ServiceUnavailable(c *gin.Context, message string) {
	write(c, http.StatusServiceUnavailable, message, nil)
}

// InternalError 500；原始错误只写日志，不返回给调用方
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.String("path", c.FullPath()),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	_ = c.Error(err)
	write(c, http.StatusInternalServerError, "internal server error", nil)
}
