package handlers

import (
    "github.com/gin-gonic/gin"

    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
    Error   string `json:"error,omitempty"`
    Message string `json:"message"`
}

// handleError 统一错误处理
func handleError(c *gin.Context, log logger.Logger, status int, message string, err error) {
    fields := []logger.Field{
        logger.String("path", c.Request.URL.Path),
        logger.Int("status", status),
    }
    if err != nil {
        fields = append(fields, logger.Error(err))
    }
    if status >= 500 {
        log.Error(message, fields...)
    } else {
        log.Warn(message, fields...)
    }

    response := ErrorResponse{
        Message: message,
    }
    if err != nil {
        response.Error = err.Error()
    }

    c.AbortWithStatusJSON(status, response)
}
