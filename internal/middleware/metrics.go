package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/poster-threads/pkg/metrics"
)

// Metrics 按路由模板统计请求数和耗时，未匹配路由归入 "unmatched"
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
