package session

import (
    "bytes"
    "context"
    "errors"
    "fmt"
    "io"
    "sync"
    "time"

    "github.com/google/uuid"

    cfg "github.com/feichai0017/screenshot-ocr/config"
    "github.com/feichai0017/screenshot-ocr/internal/agent"
    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr"
    "github.com/feichai0017/screenshot-ocr/internal/clipboard"
    "github.com/feichai0017/screenshot-ocr/internal/intake"
    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/internal/reconciler"
    "github.com/feichai0017/screenshot-ocr/internal/recognition"
    "github.com/feichai0017/screenshot-ocr/pkg/converters"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
    "github.com/feichai0017/screenshot-ocr/pkg/storage"
)

const previewPrefix = "previews/"

type ServiceConfig struct {
    AutoCopy        bool
    NotificationTTL time.Duration
    CopiedTTL       time.Duration
}

// SessionService is the single logical writer of session state. The
// controller's observer and every user action run under mu.
type SessionService struct {
    mu         sync.Mutex
    state      reconciler.State
    job        models.Job
    rec        reconciler.Reconciler
    controller *recognition.Controller
    bridge     *clipboard.Bridge
    storage    storage.Storage
    logger     logger.Logger
    closer     func() error

    now   func() time.Time
    newID func() string
}

type Option func(*SessionService)

// WithClock overrides time.Now for the session and its controller.
func WithClock(now func() time.Time) Option {
    return func(s *SessionService) { s.now = now }
}

// WithCloser registers a release hook run by Close.
func WithCloser(closer func() error) Option {
    return func(s *SessionService) { s.closer = closer }
}

func NewService(
    engine ocr.Engine,
    store storage.Storage,
    bridge *clipboard.Bridge,
    log logger.Logger,
    config *ServiceConfig,
    opts ...Option,
) *SessionService {
    if config == nil {
        config = &ServiceConfig{AutoCopy: true}
    }

    rec := reconciler.New(config.NotificationTTL, config.CopiedTTL)
    s := &SessionService{
        state:   rec.Initial(config.AutoCopy),
        job:     models.Job{Status: models.JobStatusIdle},
        rec:     rec,
        bridge:  bridge,
        storage: store,
        logger:  log,
        now:     time.Now,
        newID:   func() string { return uuid.New().String() },
    }
    for _, opt := range opts {
        opt(s)
    }
    s.controller = recognition.NewController(engine, s.onJobFinished, log,
        recognition.WithClock(s.now),
    )
    return s
}

// GetService 按应用配置装配会话
func GetService(ctx context.Context, log logger.Logger, appCfg *cfg.AppConfig) (*SessionService, error) {
    engine, closeEngine, err := agent.NewEngine(ctx, appCfg.Engine, log)
    if err != nil {
        return nil, fmt.Errorf("failed to initialize engine: %w", err)
    }

    store, err := storage.NewStorage(storage.StorageType(appCfg.Preview.Store), log)
    if err != nil {
        _ = closeEngine()
        return nil, fmt.Errorf("failed to initialize storage: %w", err)
    }

    // 预览只属于当前会话, 清掉上次运行遗留的对象
    if err := store.CleanupBefore(ctx, time.Now()); err != nil {
        log.Warn("Failed to purge stale previews", logger.Error(err))
    }

    var writer clipboard.Writer = clipboard.DisabledWriter{}
    if appCfg.Clipboard.Enabled {
        writer = clipboard.SystemWriter{}
    }

    return NewService(engine, store, clipboard.NewBridge(writer, log), log, &ServiceConfig{
        AutoCopy:        appCfg.Session.AutoCopy,
        NotificationTTL: appCfg.Session.NotificationTTL,
        CopiedTTL:       appCfg.Session.CopiedTTL,
    }, WithCloser(closeEngine)), nil
}

// Submit normalizes ev and starts recognition of the accepted image.
func (s *SessionService) Submit(ctx context.Context, ev intake.Event) (models.Job, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    // 拖放总是阻止默认行为, 忙碌时也一样; 粘贴忙碌时直接返回
    if d, ok := ev.(*intake.DropEvent); ok {
        d.PreventDefault()
    }
    if s.controller.IsRunning() {
        return s.job, ErrBusy
    }

    img, err := intake.Normalize(ev)
    if err != nil {
        if errors.Is(err, intake.ErrNoImage) {
            s.logger.Debug("Intake rejected event", logger.String("channel", channelOf(ev)))
        }
        return s.job, err
    }

    preview := models.PreviewImage{
        Key:         previewPrefix + s.newID(),
        Name:        img.Name,
        MimeType:    img.MimeType,
        Size:        img.Size(),
        SubmittedAt: s.now(),
    }
    if _, err := s.storage.Store(ctx, bytes.NewReader(img.Data), preview.Key); err != nil {
        return s.job, fmt.Errorf("failed to store preview: %w", err)
    }
    previous := s.state.Preview
    s.state = s.rec.Submitted(s.state, preview)
    s.dropPreview(ctx, previous)

    job, err := s.controller.Submit(img)
    if err != nil {
        if errors.Is(err, recognition.ErrJobRunning) {
            return s.job, ErrBusy
        }
        return s.job, err
    }
    s.job = job
    return job, nil
}

// onJobFinished runs on the controller goroutine before it accepts the
// next submission.
func (s *SessionService) onJobFinished(job models.Job) {
    s.mu.Lock()
    defer s.mu.Unlock()

    s.job = job
    s.state = s.rec.JobFinished(s.state, job, s.now(), func(text string) bool {
        return s.bridge.WriteText(context.Background(), text)
    })

    s.logger.Info("Session updated",
        logger.String("jobId", job.ID),
        logger.String("status", string(job.Status)),
        logger.String("notification", s.state.Notification.Message),
    )
}

func (s *SessionService) Snapshot() Snapshot {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.snapshotLocked()
}

func (s *SessionService) snapshotLocked() Snapshot {
    now := s.now()
    s.state = s.rec.Expire(s.state, now)

    snap := Snapshot{
        Status:       s.job.Status,
        Busy:         s.controller.IsRunning(),
        JobID:        s.job.ID,
        ResultText:   s.state.ResultText,
        Stats:        converters.Stats(s.state.ResultText),
        Notification: s.state.NotificationAt(now),
        AutoCopy:     s.state.AutoCopy,
        Copied:       s.state.CopiedAt(now),
    }
    if s.job.Status == models.JobStatusFailed {
        snap.Error = s.job.Error
    }
    if s.state.Preview != nil {
        p := *s.state.Preview
        snap.Preview = &p
    }
    return snap
}

// Copy writes ResultText to the clipboard on user request.
func (s *SessionService) Copy(ctx context.Context) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    if s.state.ResultText == "" {
        return false, ErrNoResult
    }
    ok := s.bridge.WriteText(ctx, s.state.ResultText)
    s.state = s.rec.Copied(s.state, ok, s.now())
    return ok, nil
}

// Clear drops the result and preview. A running job is left alone.
func (s *SessionService) Clear(ctx context.Context) Snapshot {
    s.mu.Lock()
    defer s.mu.Unlock()

    previous := s.state.Preview
    s.state = s.rec.Cleared(s.state, s.now())
    s.dropPreview(ctx, previous)
    return s.snapshotLocked()
}

func (s *SessionService) SetAutoCopy(enabled bool) Snapshot {
    s.mu.Lock()
    defer s.mu.Unlock()

    s.state = s.rec.AutoCopyToggled(s.state, enabled)
    return s.snapshotLocked()
}

func (s *SessionService) Preview(ctx context.Context) (*Preview, error) {
    s.mu.Lock()
    if s.state.Preview == nil {
        s.mu.Unlock()
        return nil, ErrNoPreview
    }
    image := *s.state.Preview
    s.mu.Unlock()

    rc, err := s.storage.Get(ctx, image.Key)
    if err != nil {
        if storage.IsNotFound(err) {
            return nil, ErrNoPreview
        }
        return nil, fmt.Errorf("failed to load preview: %w", err)
    }
    defer rc.Close()

    data, err := io.ReadAll(rc)
    if err != nil {
        return nil, fmt.Errorf("failed to read preview: %w", err)
    }
    return &Preview{Image: image, Data: data}, nil
}

func (s *SessionService) Download() (converters.Download, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    if s.state.ResultText == "" {
        return converters.Download{}, ErrNoResult
    }
    return converters.ToDownload(s.state.ResultText), nil
}

// Wait blocks until the in-flight job has been applied to the session.
func (s *SessionService) Wait(ctx context.Context) (Snapshot, error) {
    if _, err := s.controller.Wait(ctx); err != nil {
        return s.Snapshot(), err
    }
    return s.Snapshot(), nil
}

// Close waits for a running job up to ctx, then releases the engine and the
// current preview.
func (s *SessionService) Close(ctx context.Context) error {
    var errs []error
    if _, err := s.controller.Wait(ctx); err != nil {
        errs = append(errs, fmt.Errorf("failed to wait for running job: %w", err))
    }

    s.mu.Lock()
    s.dropPreview(ctx, s.state.Preview)
    s.mu.Unlock()

    if s.closer != nil {
        if err := s.closer(); err != nil {
            errs = append(errs, fmt.Errorf("failed to close engine: %w", err))
        }
    }
    return errors.Join(errs...)
}

func (s *SessionService) dropPreview(ctx context.Context, preview *models.PreviewImage) {
    if preview == nil {
        return
    }
    if err := s.storage.Delete(ctx, preview.Key); err != nil {
        s.logger.Warn("Failed to delete preview",
            logger.String("key", preview.Key),
            logger.Error(err),
        )
    }
}

func channelOf(ev intake.Event) string {
    if ev == nil {
        return ""
    }
    return string(ev.Channel())
}

var _ ScreenshotSession = (*SessionService)(nil)
