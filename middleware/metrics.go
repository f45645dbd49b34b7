package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/famfit/metrics"
)

// Metrics records request counts and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		metrics.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(ctx.Writer.Status())).Inc()
		metrics.HTTPLatency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
