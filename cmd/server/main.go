package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "github.com/gin-gonic/gin"
    "golang.org/x/sync/errgroup"

    "github.com/feichai0017/screenshot-ocr/api/handlers"
    "github.com/feichai0017/screenshot-ocr/api/routes"
    "github.com/feichai0017/screenshot-ocr/config"
    "github.com/feichai0017/screenshot-ocr/internal/service/session"
    "github.com/feichai0017/screenshot-ocr/internal/utils/validator"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

func main() {
    appCfg, err := config.GetAppConfig()
    if err != nil {
        panic(err)
    }

    // init logger
    log, err := logger.NewLogger(
        logger.WithLevel(appCfg.Log.Level),
        logger.WithEncoding(appCfg.Log.Encoding),
        logger.WithOutputPaths(appCfg.Log.OutputPaths),
        logger.WithErrorPaths(appCfg.Log.ErrorPaths),
        logger.WithRotation(appCfg.Log.Rotation),
        logger.WithService("server"),
    )
    if err != nil {
        panic(err)
    }
    defer log.Sync()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    // init session service
    sessionService, err := session.GetService(ctx, log, appCfg)
    if err != nil {
        log.Fatal("Failed to create session service", logger.Error(err))
    }

    // init handlers
    uploadValidator := validator.NewUploadValidator(log, &validator.ValidatorConfig{
        MaxFileSize: appCfg.Session.MaxUploadSize,
    })
    h := handlers.NewHandlers(sessionService, uploadValidator, log)

    gin.SetMode(gin.ReleaseMode)
    r := gin.New()
    r.Use(gin.Recovery())
    r.MaxMultipartMemory = appCfg.Session.MaxUploadSize
    routes.SetupRoutes(r, h, log)

    srv := &http.Server{
        Addr:    appCfg.Server.Addr,
        Handler: r,
    }

    g, gctx := errgroup.WithContext(ctx)

    // start server
    g.Go(func() error {
        log.Info("Server starting",
            logger.String("addr", appCfg.Server.Addr),
            logger.String("engine", appCfg.Engine.Kind),
            logger.String("previewStore", appCfg.Preview.Store),
        )
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            return err
        }
        return nil
    })

    // wait for interrupt signal to gracefully shut down the server
    g.Go(func() error {
        <-gctx.Done()
        log.Info("Shutting down server...")

        shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.Server.ShutdownTimeout)
        defer cancel()

        var errs []error
        if err := srv.Shutdown(shutdownCtx); err != nil {
            errs = append(errs, err)
        }
        if err := sessionService.Close(shutdownCtx); err != nil {
            errs = append(errs, err)
        }
        return errors.Join(errs...)
    })

    if err := g.Wait(); err != nil {
        log.Error("Server stopped with error", logger.Error(err))
        return
    }
    log.Info("Server stopped")
}
