package session

import (
    "context"
    "errors"

    "github.com/feichai0017/screenshot-ocr/internal/intake"
    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/pkg/converters"
)

var (
    // ErrBusy is returned for submissions while a recognition is in flight.
    ErrBusy = errors.New("a screenshot is already being processed")
    // ErrNoResult is returned by Copy and Download when there is no text.
    ErrNoResult = errors.New("no extracted text")
    // ErrNoPreview is returned by Preview when nothing has been submitted.
    ErrNoPreview = errors.New("no preview image")
)

// Snapshot 会话的可展示状态
type Snapshot struct {
    Status       models.JobStatus     `json:"status"`
    Busy         bool                 `json:"busy"`
    JobID        string               `json:"jobId,omitempty"`
    Error        string               `json:"error,omitempty"`
    ResultText   string               `json:"resultText"`
    Stats        converters.TextStats `json:"stats"`
    Preview      *models.PreviewImage `json:"preview,omitempty"`
    Notification string               `json:"notification,omitempty"`
    AutoCopy     bool                 `json:"autoCopy"`
    Copied       bool                 `json:"copied"`
}

// Preview 预览图内容
type Preview struct {
    Image models.PreviewImage
    Data  []byte
}

type ScreenshotSession interface {
    Submit(ctx context.Context, ev intake.Event) (models.Job, error)
    Snapshot() Snapshot
    Copy(ctx context.Context) (bool, error)
    Clear(ctx context.Context) Snapshot
    SetAutoCopy(enabled bool) Snapshot
    Preview(ctx context.Context) (*Preview, error)
    Download() (converters.Download, error)
    Wait(ctx context.Context) (Snapshot, error)
    Close(ctx context.Context) error
}
