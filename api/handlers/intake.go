package handlers

import (
    "errors"
    "io"
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/feichai0017/screenshot-ocr/internal/intake"
    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/internal/service/session"
    "github.com/feichai0017/screenshot-ocr/internal/utils/validator"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

const (
    selectField = "file"
    dropField   = "files"
    pasteField  = "item"
)

type IntakeHandler struct {
    service   session.ScreenshotSession
    validator *validator.UploadValidator
    logger    logger.Logger
}

// SubmitResponse 定义提交响应结构
type SubmitResponse struct {
    JobID     string `json:"jobId"`
    Status    string `json:"status"`
    Filename  string `json:"filename"`
    MimeType  string `json:"mimeType"`
    StartedAt string `json:"startedAt"`
}

func NewIntakeHandler(service session.ScreenshotSession, v *validator.UploadValidator, logger logger.Logger) *IntakeHandler {
    return &IntakeHandler{
        service:   service,
        validator: v,
        logger:    logger,
    }
}

// Select 文件选择通道, 只取第一个文件
func (h *IntakeHandler) Select(c *gin.Context) {
    if h.rejectBusy(c) {
        return
    }

    header, err := c.FormFile(selectField)
    if err != nil {
        handleError(c, h.logger, http.StatusBadRequest, "Invalid file upload", err)
        return
    }

    info, err := h.validator.ValidateFile(header, true)
    if err != nil {
        h.uploadError(c, err)
        return
    }

    h.submit(c, &intake.FileSelectEvent{Files: []*intake.File{toFile(info)}})
}

// Drop 拖放通道, 保持文件顺序
func (h *IntakeHandler) Drop(c *gin.Context) {
    if h.rejectBusy(c) {
        return
    }

    form, err := c.MultipartForm()
    if err != nil {
        handleError(c, h.logger, http.StatusBadRequest, "Invalid form data", err)
        return
    }

    headers := form.File[dropField]
    ev := &intake.DropEvent{Files: make([]*intake.File, 0, len(headers))}
    // 只有第一张图片会被识别, 其余条目只解析类型
    taken := false
    for _, header := range headers {
        info, err := h.validator.ValidateFile(header, !taken)
        if err != nil {
            h.uploadError(c, err)
            return
        }
        taken = taken || models.IsImageType(info.MimeType)
        ev.Files = append(ev.Files, toFile(info))
    }

    h.submit(c, ev)
}

// Paste 粘贴通道。按到达顺序逐个读取 part; 没有文件名的 part 是纯文本条目。
func (h *IntakeHandler) Paste(c *gin.Context) {
    if h.rejectBusy(c) {
        return
    }

    reader, err := c.Request.MultipartReader()
    if err != nil {
        handleError(c, h.logger, http.StatusBadRequest, "Invalid form data", err)
        return
    }

    ev := &intake.PasteEvent{}
    taken := false
    for {
        part, err := reader.NextPart()
        if errors.Is(err, io.EOF) {
            break
        }
        if err != nil {
            handleError(c, h.logger, http.StatusBadRequest, "Invalid form data", err)
            return
        }
        if part.FormName() != pasteField {
            _ = part.Close()
            continue
        }

        // 纯文本条目与第一张图片之后的条目不读取正文
        info, err := h.validator.ValidatePart(part, !taken && part.FileName() != "")
        _ = part.Close()
        if err != nil {
            h.uploadError(c, err)
            return
        }
        taken = taken || models.IsImageType(info.MimeType)

        if part.FileName() == "" {
            ev.Items = append(ev.Items, intake.TextItem(info.MimeType))
            continue
        }
        ev.Items = append(ev.Items, intake.FileItem(toFile(info)))
    }

    h.submit(c, ev)
}

func (h *IntakeHandler) submit(c *gin.Context, ev intake.Event) {
    job, err := h.service.Submit(c.Request.Context(), ev)
    switch {
    case err == nil:
        c.JSON(http.StatusAccepted, toSubmitResponse(job))

    case errors.Is(err, session.ErrBusy):
        handleError(c, h.logger, http.StatusConflict, "A screenshot is already being processed", err)

    case errors.Is(err, intake.ErrNoImage):
        if ev.Channel() == intake.ChannelFileSelect {
            handleError(c, h.logger, http.StatusUnprocessableEntity, "Please select an image file", err)
            return
        }
        // 拖放/粘贴的非图片内容静默忽略
        c.Status(http.StatusNoContent)

    default:
        handleError(c, h.logger, http.StatusInternalServerError, "Failed to submit image", err)
    }
}

// rejectBusy answers 409 before reading any upload while a job runs.
func (h *IntakeHandler) rejectBusy(c *gin.Context) bool {
    if !h.service.Snapshot().Busy {
        return false
    }
    handleError(c, h.logger, http.StatusConflict, "A screenshot is already being processed", session.ErrBusy)
    return true
}

func (h *IntakeHandler) uploadError(c *gin.Context, err error) {
    if errors.Is(err, validator.ErrFileTooLarge) {
        handleError(c, h.logger, http.StatusRequestEntityTooLarge, "File too large", err)
        return
    }
    handleError(c, h.logger, http.StatusBadRequest, "Invalid file upload", err)
}

func toFile(info *validator.FileInfo) *intake.File {
    return &intake.File{
        Name: info.Filename,
        Type: info.MimeType,
        Data: info.Data,
    }
}

func toSubmitResponse(job models.Job) SubmitResponse {
    return SubmitResponse{
        JobID:     job.ID,
        Status:    string(job.Status),
        Filename:  job.ImageName,
        MimeType:  job.MimeType,
        StartedAt: job.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
    }
}
