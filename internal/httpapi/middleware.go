package httpapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerRequestID     = "X-Request-ID"
	contextKeyRequestID = "httpapi_request_id"
	maxRequestIDLength  = 64

	logEventHTTP        = "http"
	logFieldMethod      = "method"
	logFieldPath        = "path"
	logFieldStatus      = "status"
	logFieldDuration    = "dur"
	logFieldClientIP    = "ip"
	logFieldUserAgent   = "ua"
	logFieldRequestID   = "request_id"
	logFieldTier        = "tier"
	logFieldUsername    = "username"
	logFieldRoute       = "route"
	logFieldState       = "state"
	logFieldOperationID = "operation_id"
)

// RequestLogger logs one line per request and tags it with a request id.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(context *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(context.GetHeader(headerRequestID))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		context.Set(contextKeyRequestID, requestID)
		context.Header(headerRequestID, requestID)

		context.Next()

		logger.Info(logEventHTTP,
			zap.String(logFieldRequestID, requestID),
			zap.String(logFieldMethod, context.Request.Method),
			zap.String(logFieldPath, context.Request.URL.Path),
			zap.Int(logFieldStatus, context.Writer.Status()),
			zap.Duration(logFieldDuration, time.Since(start)),
			zap.String(logFieldClientIP, context.ClientIP()),
			zap.String(logFieldUserAgent, context.Request.UserAgent()),
		)
	}
}
