package worker

import (
    "context"
    "sync"

    "github.com/hibiken/asynq"

    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

type Worker interface {
    Start(ctx context.Context) error
    Stop() error
}

type Config struct {
    RedisAddr     string
    RedisPassword string
    RedisDB       int
    Concurrency   int
    Queues        map[string]int
}

type BaseWorker struct {
    server   *asynq.Server
    mux      *asynq.ServeMux
    logger   logger.Logger
    stopOnce sync.Once
}

// Start runs the asynq server until ctx is done.
func (w *BaseWorker) Start(ctx context.Context) error {
    if err := w.server.Start(w.mux); err != nil {
        return err
    }

    go func() {
        <-ctx.Done()
        _ = w.Stop()
    }()

    return nil
}

func (w *BaseWorker) Stop() error {
    w.stopOnce.Do(func() {
        w.logger.Info("Stopping worker")
        w.server.Shutdown()
    })
    return nil
}
