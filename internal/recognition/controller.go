// Package recognition owns the single-flight OCR job lifecycle.
package recognition

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr"
    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

// ErrJobRunning is returned when a submission arrives while a job is in flight.
var ErrJobRunning = errors.New("recognition already running")

// DefaultErrorMessage is reported when an engine error carries no message.
const DefaultErrorMessage = "Failed to process image"

// Observer receives every terminal job. It runs before the controller
// accepts the next submission.
type Observer func(job models.Job)

// Controller runs at most one recognition at a time.
type Controller struct {
    mu       sync.Mutex
    engine   ocr.Engine
    observer Observer
    logger   logger.Logger
    current  models.Job
    inflight bool
    done     chan struct{}

    newID func() string
    now   func() time.Time
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
    return func(c *Controller) { c.now = now }
}

// WithIDGenerator overrides uuid job IDs.
func WithIDGenerator(newID func() string) Option {
    return func(c *Controller) { c.newID = newID }
}

// NewController creates an idle controller.
func NewController(engine ocr.Engine, observer Observer, log logger.Logger, opts ...Option) *Controller {
    c := &Controller{
        engine:   engine,
        observer: observer,
        logger:   log,
        current:  models.Job{Status: models.JobStatusIdle},
        newID:    func() string { return uuid.New().String() },
        now:      time.Now,
    }
    for _, opt := range opts {
        opt(c)
    }
    return c
}

// Submit starts recognizing img and returns the running job. It never blocks
// on the engine.
func (c *Controller) Submit(img models.CandidateImage) (models.Job, error) {
    c.mu.Lock()
    defer c.mu.Unlock()

    if c.inflight {
        return c.current, ErrJobRunning
    }
    if !isValidTransition(c.current.Status, models.JobStatusRunning) {
        return c.current, fmt.Errorf("invalid transition: %s -> %s", c.current.Status, models.JobStatusRunning)
    }

    job := models.Job{
        ID:        c.newID(),
        Status:    models.JobStatusRunning,
        Engine:    c.engine.Name(),
        ImageName: img.Name,
        MimeType:  img.MimeType,
        StartedAt: c.now(),
    }
    c.current = job
    c.inflight = true
    c.done = make(chan struct{})

    c.logger.Info("Recognition started",
        logger.String("jobId", job.ID),
        logger.String("engine", job.Engine),
        logger.String("mimeType", img.MimeType),
        logger.Int64("size", img.Size()),
    )

    go c.run(job, img, c.done)
    return job, nil
}

func (c *Controller) run(job models.Job, img models.CandidateImage, done chan struct{}) {
    // no timeout: a job whose engine never answers stays running
    text, err := ocr.RecognizeOnce(context.Background(), c.engine, img, c.logger)

    job.FinishedAt = c.now()
    if err != nil {
        job.Status = models.JobStatusFailed
        job.Error = errorMessage(err)
        c.logger.Error("Recognition failed",
            logger.String("jobId", job.ID),
            logger.Duration("elapsed", job.Duration()),
            logger.Error(err),
        )
    } else {
        job.Status = models.JobStatusSucceeded
        job.Text = strings.TrimSpace(text)
        c.logger.Info("Recognition completed",
            logger.String("jobId", job.ID),
            logger.Duration("elapsed", job.Duration()),
            logger.Int("chars", len(job.Text)),
        )
    }

    c.mu.Lock()
    c.current = job
    c.mu.Unlock()

    if c.observer != nil {
        c.observer(job)
    }

    c.mu.Lock()
    c.inflight = false
    close(done)
    c.mu.Unlock()
}

// Current returns a snapshot of the current job.
func (c *Controller) Current() models.Job {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.current
}

// IsRunning reports whether a submission is still in flight, including
// delivery of its terminal state to the observer.
func (c *Controller) IsRunning() bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.inflight
}

// Wait blocks until the in-flight job, if any, has concluded.
func (c *Controller) Wait(ctx context.Context) (models.Job, error) {
    c.mu.Lock()
    done := c.done
    c.mu.Unlock()

    if done != nil {
        select {
        case <-done:
        case <-ctx.Done():
            return c.Current(), ctx.Err()
        }
    }
    return c.Current(), nil
}

func errorMessage(err error) string {
    if msg := strings.TrimSpace(err.Error()); msg != "" {
        return msg
    }
    return DefaultErrorMessage
}

// isValidTransition enforces the job state machine edges.
func isValidTransition(from, to models.JobStatus) bool {
    switch from {
    case models.JobStatusIdle, models.JobStatusSucceeded, models.JobStatusFailed:
        return to == models.JobStatusRunning
    case models.JobStatusRunning:
        return to == models.JobStatusSucceeded || to == models.JobStatusFailed
    default:
        return false
    }
}
