// Package tesseract runs recognition locally through the Tesseract engine.
package tesseract

import (
    "context"
    "fmt"

    "github.com/otiai10/gosseract/v2"

    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr"
    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr/preprocess"
    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

// Options Tesseract 引擎选项
type Options struct {
    Languages     []string
    PageSegMode   gosseract.PageSegMode
    Preprocess    bool
    Preprocessing preprocess.Config
}

// Engine creates one gosseract client per submission.
type Engine struct {
    opts          Options
    clientFactory func() *gosseract.Client
    pipeline      *preprocess.Pipeline
    logger        logger.Logger
}

// NewEngine 创建 Tesseract 引擎
func NewEngine(opts Options, log logger.Logger) *Engine {
    if len(opts.Languages) == 0 {
        opts.Languages = []string{ocr.DefaultLanguage}
    }
    if opts.PageSegMode == 0 {
        opts.PageSegMode = gosseract.PSM_AUTO
    }
    e := &Engine{
        opts:          opts,
        clientFactory: gosseract.NewClient,
        logger:        log,
    }
    if opts.Preprocess {
        e.pipeline = preprocess.NewPipeline(opts.Preprocessing)
    }
    return e
}

func (e *Engine) Name() string { return "tesseract" }

// Acquire 为每次提交创建新的 Tesseract 客户端
func (e *Engine) Acquire(ctx context.Context) (ocr.Session, error) {
    client := e.clientFactory()

    if err := client.SetLanguage(e.opts.Languages...); err != nil {
        client.Close()
        return nil, fmt.Errorf("failed to set language: %w", err)
    }
    if err := client.SetPageSegMode(e.opts.PageSegMode); err != nil {
        client.Close()
        return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
    }

    return &session{client: client, pipeline: e.pipeline, logger: e.logger}, nil
}

type session struct {
    client   *gosseract.Client
    pipeline *preprocess.Pipeline
    logger   logger.Logger
}

func (s *session) Recognize(ctx context.Context, img models.CandidateImage) (string, error) {
    data := img.Data
    if s.pipeline != nil {
        decoded, format, err := preprocess.Decode(img.Data)
        if err != nil {
            return "", err
        }
        processed, err := s.pipeline.Process(decoded)
        if err != nil {
            return "", err
        }
        if data, err = preprocess.EncodePNG(processed); err != nil {
            return "", err
        }
        s.logger.Debug("Preprocessed image",
            logger.String("format", format),
            logger.Int("width", processed.Bounds().Dx()),
            logger.Int("height", processed.Bounds().Dy()),
        )
    }

    if err := ctx.Err(); err != nil {
        return "", err
    }

    if err := s.client.SetImageFromBytes(data); err != nil {
        return "", fmt.Errorf("failed to set image: %w", err)
    }

    text, err := s.client.Text()
    if err != nil {
        return "", fmt.Errorf("failed to get text: %w", err)
    }
    return text, nil
}

func (s *session) Close() error {
    return s.client.Close()
}
