// Package remote hands recognition to a worker process over the task queue
// and waits for the worker to publish the result.
package remote

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"

    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr"
    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
    "github.com/feichai0017/screenshot-ocr/pkg/queue"
)

type Engine struct {
    queue  queue.Queue
    logger logger.Logger
    newID  func() string
}

func NewEngine(q queue.Queue, log logger.Logger) *Engine {
    return &Engine{
        queue:  q,
        logger: log,
        newID:  func() string { return uuid.New().String() },
    }
}

func (e *Engine) Name() string { return "queue" }

func (e *Engine) Acquire(ctx context.Context) (ocr.Session, error) {
    return &session{engine: e}, nil
}

type session struct {
    engine  *Engine
    pending string
}

func (s *session) Recognize(ctx context.Context, img models.CandidateImage) (string, error) {
    taskID := s.engine.newID()

    sub, err := s.engine.queue.Subscribe(ctx, taskID)
    if err != nil {
        return "", err
    }
    defer sub.Close()

    task := &queue.RecognizeTask{
        ID:        taskID,
        Name:      img.Name,
        MimeType:  img.MimeType,
        Image:     img.Data,
        CreatedAt: time.Now(),
    }
    if err := s.engine.queue.Enqueue(ctx, task); err != nil {
        return "", err
    }
    s.pending = taskID

    s.engine.logger.Debug("Recognition task enqueued",
        logger.String("taskId", taskID),
        logger.Int64("size", img.Size()),
    )

    result, err := sub.Wait(ctx)
    if err != nil {
        return "", fmt.Errorf("failed to wait for result: %w", err)
    }
    s.pending = ""

    if result.Error != "" {
        return "", errors.New(result.Error)
    }
    return result.Text, nil
}

// Close drops a task that never reported back.
func (s *session) Close() error {
    if s.pending == "" {
        return nil
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    return s.engine.queue.Cancel(ctx, s.pending)
}
