package middleware

import (
    "time"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"

    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request context with an id that ContextLogger picks up.
func RequestID() gin.HandlerFunc {
    return func(c *gin.Context) {
        id := c.GetHeader(RequestIDHeader)
        if id == "" {
            id = uuid.New().String()
        }
        c.Header(RequestIDHeader, id)
        c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
        c.Next()
    }
}

// AccessLog writes one entry per request through the context logger.
func AccessLog(log logger.ContextLogger) gin.HandlerFunc {
    return func(c *gin.Context) {
        start := time.Now()
        c.Next()

        log.FromContext(c.Request.Context()).Info("HTTP request",
            logger.String("method", c.Request.Method),
            logger.String("path", c.Request.URL.Path),
            logger.Int("status", c.Writer.Status()),
            logger.Duration("elapsed", time.Since(start)),
        )
    }
}
