package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"

    "github.com/feichai0017/screenshot-ocr/config"
    "github.com/feichai0017/screenshot-ocr/internal/agent"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
    "github.com/feichai0017/screenshot-ocr/pkg/queue"
    "github.com/feichai0017/screenshot-ocr/pkg/worker"
)

func main() {
    appCfg, err := config.GetAppConfig()
    if err != nil {
        panic(err)
    }

    // 初始化日志
    log, err := logger.NewLogger(
        logger.WithLevel(appCfg.Log.Level),
        logger.WithEncoding(appCfg.Log.Encoding),
        logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
        logger.WithErrorPaths(appCfg.Log.ErrorPaths),
        logger.WithRotation(appCfg.Log.Rotation),
        logger.WithService("worker"),
    )
    if err != nil {
        panic(err)
    }
    defer log.Sync()

    redisCfg := config.GetRedisConfig()

    // 结果通过 redis 频道回传给 server
    q, err := queue.NewAsynqQueue(&queue.QueueConfig{
        RedisAddr:      redisCfg.Addr,
        RedisPassword:  redisCfg.Password,
        RedisDB:        redisCfg.DB,
        ProcessTimeout: redisCfg.ProcessTimeout,
    })
    if err != nil {
        log.Error("Failed to connect queue", logger.Error(err))
        os.Exit(1)
    }
    defer q.Close()

    // worker 总是在本地运行 tesseract
    handler := worker.NewRecognizeHandler(agent.NewTesseractEngine(appCfg.Engine, log), q, log)

    recognitionWorker := worker.NewRecognitionWorker(&worker.Config{
        RedisAddr:     redisCfg.Addr,
        RedisPassword: redisCfg.Password,
        RedisDB:       redisCfg.DB,
        Concurrency:   redisCfg.Concurrency,
        Queues:        map[string]int{queue.QueueName: 1},
    }, handler, log)

    // 创建上下文和取消函数
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // 启动 worker
    if err := recognitionWorker.Start(ctx); err != nil {
        log.Error("Failed to start worker", logger.Error(err))
        os.Exit(1)
    }
    log.Info("Worker started",
        logger.String("redis", redisCfg.Addr),
        logger.Int("concurrency", redisCfg.Concurrency),
    )

    // 等待中断信号
    sigChan := make(chan os.Signal, 1)
    signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
    <-sigChan

    // 优雅关闭
    log.Info("Shutting down worker...")
    recognitionWorker.Stop()
    log.Info("Worker stopped")
}
