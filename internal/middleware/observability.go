package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"github.com/prefeitura-rio/app-login/internal/utils"
	"go.uber.org/zap"
)

const (
	// RequestIDKey is the gin context key holding the request ID
	RequestIDKey = "RequestID"
	// DeviceIDKey is the gin context key holding the caller's device ID
	DeviceIDKey = "DeviceID"

	headerRequestID = "X-Request-ID"
	headerDeviceID  = "X-Device-ID"
)

// RequestLogger logs request information
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		observability.Logger().Info("request completed",
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("device_id", c.GetString(DeviceIDKey)),
		)
	}
}

// RequestTracker tracks active connections
func RequestTracker() gin.HandlerFunc {
	return func(c *gin.Context) {
		observability.ActiveConnections.Inc()
		defer observability.ActiveConnections.Dec()
		c.Next()
	}
}

// RequestID adds a unique request ID to the context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = utils.GenerateUUID()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(headerRequestID, requestID)
		c.Next()
	}
}

// DeviceID identifies the caller's device. Clients keep the echoed ID and
// send it back so their login flow and stored session follow them.
func DeviceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetHeader(headerDeviceID)
		if !utils.IsUUID(deviceID) {
			deviceID = utils.GenerateUUID()
		}
		c.Set(DeviceIDKey, deviceID)
		c.Header(headerDeviceID, deviceID)
		c.Next()
	}
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}
