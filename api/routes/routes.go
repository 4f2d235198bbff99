package routes

import (
    "github.com/gin-gonic/gin"

    "github.com/feichai0017/screenshot-ocr/api/handlers"
    "github.com/feichai0017/screenshot-ocr/api/middleware"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, log logger.Logger) {
    // 全局中间件
    r.Use(middleware.RequestID())
    r.Use(middleware.AccessLog(logger.NewContextLogger(log)))
    r.Use(middleware.CORS())

    // 健康检查
    r.GET("/healthz", h.Session.Health)

    // API 版本组
    v1 := r.Group("/api/v1")

    // 三个输入通道
    in := v1.Group("/intake")
    {
        in.POST("/select", h.Intake.Select)
        in.POST("/drop", h.Intake.Drop)
        in.POST("/paste", h.Intake.Paste)
    }

    // 会话状态与用户操作
    sess := v1.Group("/session")
    {
        sess.GET("", h.Session.GetSession)
        sess.POST("/copy", h.Session.Copy)
        sess.POST("/clear", h.Session.Clear)
        sess.PUT("/autocopy", h.Session.SetAutoCopy)
        sess.GET("/preview", h.Session.GetPreview)
        sess.GET("/download", h.Session.Download)
    }
}
