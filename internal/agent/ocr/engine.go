package ocr

import (
    "context"

    "github.com/feichai0017/screenshot-ocr/internal/models"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "eng"

// Engine OCR 引擎接口
type Engine interface {
    // Name 引擎名称
    Name() string

    // Acquire 为一次提交获取独占会话，调用方负责 Close
    Acquire(ctx context.Context) (Session, error)
}

// Session 单次识别会话
type Session interface {
    // Recognize 识别图像并返回原始文本
    Recognize(ctx context.Context, img models.CandidateImage) (string, error)

    // Close 释放会话资源
    Close() error
}

// EngineFunc adapts a plain recognize function into an Engine whose
// sessions hold no resources.
type EngineFunc func(ctx context.Context, img models.CandidateImage) (string, error)

func (f EngineFunc) Name() string { return "func" }

func (f EngineFunc) Acquire(ctx context.Context) (Session, error) {
    return funcSession(f), nil
}

type funcSession EngineFunc

func (s funcSession) Recognize(ctx context.Context, img models.CandidateImage) (string, error) {
    return s(ctx, img)
}

func (s funcSession) Close() error { return nil }
