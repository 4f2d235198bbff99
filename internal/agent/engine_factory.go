package agent

import (
    "context"
    "fmt"

    "github.com/otiai10/gosseract/v2"

    cfg "github.com/feichai0017/screenshot-ocr/config"
    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr"
    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr/preprocess"
    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr/remote"
    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr/tesseract"
    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr/textract"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
    "github.com/feichai0017/screenshot-ocr/pkg/queue"
)

// NewEngine 按配置创建 OCR 引擎。返回的 closer 释放引擎持有的共享连接。
func NewEngine(ctx context.Context, engineCfg cfg.EngineConfig, log logger.Logger) (ocr.Engine, func() error, error) {
    log.Info("Creating OCR engine",
        logger.String("kind", engineCfg.Kind),
        logger.Any("languages", engineCfg.Languages),
    )

    noop := func() error { return nil }

    switch engineCfg.Kind {
    case cfg.EngineTesseract:
        return NewTesseractEngine(engineCfg, log), noop, nil

    case cfg.EngineTextract:
        textractCfg := cfg.GetTextractConfig()
        engine, err := textract.NewEngine(ctx, &textract.Config{
            Region:        textractCfg.Region,
            Endpoint:      textractCfg.Endpoint,
            AccessKey:     textractCfg.AccessKey,
            SecretKey:     textractCfg.SecretKey,
            MinConfidence: engineCfg.MinConfidence,
        }, log)
        if err != nil {
            return nil, nil, fmt.Errorf("failed to create textract engine: %w", err)
        }
        return engine, noop, nil

    case cfg.EngineQueue:
        redisCfg := cfg.GetRedisConfig()
        q, err := queue.NewAsynqQueue(&queue.QueueConfig{
            RedisAddr:      redisCfg.Addr,
            RedisPassword:  redisCfg.Password,
            RedisDB:        redisCfg.DB,
            ProcessTimeout: redisCfg.ProcessTimeout,
        })
        if err != nil {
            return nil, nil, fmt.Errorf("failed to initialize queue: %w", err)
        }
        return remote.NewEngine(q, log), q.Close, nil

    default:
        log.Error("Unsupported engine kind", logger.String("kind", engineCfg.Kind))
        return nil, nil, fmt.Errorf("unsupported engine kind: %s", engineCfg.Kind)
    }
}

// NewTesseractEngine is shared by the server and the queue worker.
func NewTesseractEngine(engineCfg cfg.EngineConfig, log logger.Logger) *tesseract.Engine {
    return tesseract.NewEngine(tesseract.Options{
        Languages:     engineCfg.Languages,
        PageSegMode:   gosseract.PageSegMode(engineCfg.PageSegMode),
        Preprocess:    engineCfg.Preprocess,
        Preprocessing: preprocess.DefaultConfig(),
    }, log)
}
