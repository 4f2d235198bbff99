package ocr

import (
    "context"
    "fmt"

    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

// RecognizeOnce acquires a session, runs one recognition and releases the
// session whatever the outcome. A panicking engine is reported as an error.
func RecognizeOnce(ctx context.Context, engine Engine, img models.CandidateImage, log logger.Logger) (text string, err error) {
    defer func() {
        if r := recover(); r != nil {
            err = fmt.Errorf("ocr engine panic: %v", r)
        }
    }()

    session, err := engine.Acquire(ctx)
    if err != nil {
        return "", fmt.Errorf("failed to acquire %s engine: %w", engine.Name(), err)
    }
    defer func() {
        if cerr := session.Close(); cerr != nil {
            log.Warn("Failed to release engine session",
                logger.String("engine", engine.Name()),
                logger.Error(cerr),
            )
        }
    }()

    return session.Recognize(ctx, img)
}
