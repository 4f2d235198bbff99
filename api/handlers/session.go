package handlers

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/feichai0017/screenshot-ocr/internal/service/session"
    "github.com/feichai0017/screenshot-ocr/pkg/converters"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

type SessionHandler struct {
    service session.ScreenshotSession
    logger  logger.Logger
}

// AutoCopyRequest 自动复制开关
type AutoCopyRequest struct {
    Enabled *bool `json:"enabled" binding:"required"`
}

// CopyResponse 复制结果
type CopyResponse struct {
    Copied   bool             `json:"copied"`
    Snapshot session.Snapshot `json:"session"`
}

func NewSessionHandler(service session.ScreenshotSession, logger logger.Logger) *SessionHandler {
    return &SessionHandler{
        service: service,
        logger:  logger,
    }
}

// GetSession 获取当前会话状态
func (h *SessionHandler) GetSession(c *gin.Context) {
    c.JSON(http.StatusOK, h.service.Snapshot())
}

// Copy 复制识别文本到剪贴板。复制失败不是请求错误, 由 copied 字段和通知反映。
func (h *SessionHandler) Copy(c *gin.Context) {
    ok, err := h.service.Copy(c.Request.Context())
    if err != nil {
        if errors.Is(err, session.ErrNoResult) {
            handleError(c, h.logger, http.StatusNotFound, "No extracted text to copy", err)
            return
        }
        handleError(c, h.logger, http.StatusInternalServerError, "Failed to copy text", err)
        return
    }

    c.JSON(http.StatusOK, CopyResponse{
        Copied:   ok,
        Snapshot: h.service.Snapshot(),
    })
}

// Clear 清除结果和预览
func (h *SessionHandler) Clear(c *gin.Context) {
    c.JSON(http.StatusOK, h.service.Clear(c.Request.Context()))
}

// SetAutoCopy 设置自动复制
func (h *SessionHandler) SetAutoCopy(c *gin.Context) {
    var req AutoCopyRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        handleError(c, h.logger, http.StatusBadRequest, "Invalid request body", err)
        return
    }

    c.JSON(http.StatusOK, h.service.SetAutoCopy(*req.Enabled))
}

// GetPreview 返回预览图, format=dataurl 时返回 data URL
func (h *SessionHandler) GetPreview(c *gin.Context) {
    preview, err := h.service.Preview(c.Request.Context())
    if err != nil {
        if errors.Is(err, session.ErrNoPreview) {
            handleError(c, h.logger, http.StatusNotFound, "No preview image", err)
            return
        }
        handleError(c, h.logger, http.StatusInternalServerError, "Failed to load preview", err)
        return
    }

    if c.Query("format") == "dataurl" {
        c.JSON(http.StatusOK, gin.H{
            "name":    preview.Image.Name,
            "dataUrl": converters.DataURL(preview.Image.MimeType, preview.Data),
        })
        return
    }

    c.Header("Cache-Control", "no-store")
    c.Data(http.StatusOK, preview.Image.MimeType, preview.Data)
}

// Download 下载识别文本
func (h *SessionHandler) Download(c *gin.Context) {
    download, err := h.service.Download()
    if err != nil {
        handleError(c, h.logger, http.StatusNotFound, "No extracted text to download", err)
        return
    }

    c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", download.Filename))
    c.Data(http.StatusOK, download.ContentType, download.Body)
}

// Health 健康检查
func (h *SessionHandler) Health(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{
        "status": "ok",
        "busy":   h.service.Snapshot().Busy,
    })
}
