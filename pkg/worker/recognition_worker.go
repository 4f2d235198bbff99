package worker

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"
    "time"

    "github.com/hibiken/asynq"

    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr"
    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
    "github.com/feichai0017/screenshot-ocr/pkg/queue"
)

// publishTimeout bounds result delivery after the task context has ended.
const publishTimeout = 5 * time.Second

// Publisher delivers a task result back to the waiting server.
type Publisher interface {
    Publish(ctx context.Context, result *queue.RecognizeResult) error
}

// RecognizeHandler runs one recognition per task on a fresh engine session.
type RecognizeHandler struct {
    engine    ocr.Engine
    publisher Publisher
    logger    logger.Logger
    now       func() time.Time
}

func NewRecognizeHandler(engine ocr.Engine, publisher Publisher, logger logger.Logger) *RecognizeHandler {
    return &RecognizeHandler{
        engine:    engine,
        publisher: publisher,
        logger:    logger,
        now:       time.Now,
    }
}

// ProcessTask implements asynq.Handler. Failures are published to the
// server and never retried.
func (h *RecognizeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
    task, err := queue.DecodeTask(t.Payload())
    if err != nil {
        h.logger.Error("Invalid recognize task", logger.Error(err))
        return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
    }

    h.logger.Info("Processing recognize task",
        logger.String("taskId", task.ID),
        logger.String("mimeType", task.MimeType),
        logger.Int("size", len(task.Image)),
    )

    text, recognizeErr := ocr.RecognizeOnce(ctx, h.engine, models.CandidateImage{
        Name:     task.Name,
        MimeType: task.MimeType,
        Data:     task.Image,
    }, h.logger)

    result := &queue.RecognizeResult{
        TaskID:     task.ID,
        Text:       text,
        FinishedAt: h.now(),
    }
    if recognizeErr != nil {
        result.Error = recognizeErr.Error()
    }

    // 获取任务写入器, 只有 asynq server 派发的任务才有
    if rw := t.ResultWriter(); rw != nil {
        if data, err := json.Marshal(result); err == nil {
            if _, err := rw.Write(data); err != nil {
                h.logger.Warn("Failed to write task result", logger.Error(err))
            }
        }
    }

    // 任务超时或被取消时 ctx 已失效, 结果仍须送达等待中的 server
    publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
    defer cancel()

    if err := h.publisher.Publish(publishCtx, result); err != nil {
        h.logger.Error("Failed to publish result",
            logger.String("taskId", task.ID),
            logger.Error(err),
        )
        return fmt.Errorf("%w: failed to publish result: %v", asynq.SkipRetry, err)
    }

    if recognizeErr != nil {
        h.logger.Error("Recognition failed",
            logger.String("taskId", task.ID),
            logger.Error(recognizeErr),
        )
        return fmt.Errorf("%w: %v", asynq.SkipRetry, recognizeErr)
    }

    h.logger.Info("Recognize task completed",
        logger.String("taskId", task.ID),
        logger.Int("chars", len(strings.TrimSpace(text))),
    )
    return nil
}

type RecognitionWorker struct {
    BaseWorker
}

func NewRecognitionWorker(cfg *Config, handler *RecognizeHandler, log logger.Logger) *RecognitionWorker {
    queues := cfg.Queues
    if len(queues) == 0 {
        queues = map[string]int{queue.QueueName: 1}
    }

    server := asynq.NewServer(
        asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
        asynq.Config{
            Concurrency: cfg.Concurrency,
            Queues:      queues,
            ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
                log.Warn("Task failed",
                    logger.String("type", task.Type()),
                    logger.Error(err),
                )
            }),
        },
    )

    w := &RecognitionWorker{
        BaseWorker: BaseWorker{
            server: server,
            mux:    asynq.NewServeMux(),
            logger: log,
        },
    }

    // 注册任务处理器
    w.mux.Handle(queue.TaskTypeRecognize, handler)
    return w
}
