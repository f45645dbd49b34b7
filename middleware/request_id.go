package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	// ContextRequestIDKey is the Gin context key read by the access logger.
	ContextRequestIDKey = "request_id"
)

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// RequestID reuses the caller's X-Request-ID when it is a short token of
// letters, digits, dots, dashes or underscores, and generates one otherwise.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		ctx.Set(ContextRequestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}
