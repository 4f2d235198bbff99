package ocr

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

type countingEngine struct {
    acquireErr error
    closeErr   error
    recognize  func() (string, error)
    closed     int
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Acquire(ctx context.Context) (Session, error) {
    if e.acquireErr != nil {
        return nil, e.acquireErr
    }
    return e, nil
}

func (e *countingEngine) Recognize(ctx context.Context, img models.CandidateImage) (string, error) {
    return e.recognize()
}

func (e *countingEngine) Close() error {
    e.closed++
    return e.closeErr
}

func TestRecognizeOnceReleasesSession(t *testing.T) {
    e := &countingEngine{recognize: func() (string, error) { return "text", nil }}

    text, err := RecognizeOnce(context.Background(), e, models.CandidateImage{}, logger.NewTestLogger())
    require.NoError(t, err)
    assert.Equal(t, "text", text)
    assert.Equal(t, 1, e.closed)
}

func TestRecognizeOnceReleasesOnFailure(t *testing.T) {
    log := logger.NewTestLogger()
    e := &countingEngine{
        recognize: func() (string, error) { return "", errors.New("bad image") },
        closeErr:  errors.New("close failed"),
    }

    _, err := RecognizeOnce(context.Background(), e, models.CandidateImage{}, log)
    assert.EqualError(t, err, "bad image")
    assert.Equal(t, 1, e.closed)
    assert.True(t, log.HasMessage("WARN", "Failed to release engine session"))
}

func TestRecognizeOnceRecoversPanic(t *testing.T) {
    e := &countingEngine{recognize: func() (string, error) { panic("boom") }}

    _, err := RecognizeOnce(context.Background(), e, models.CandidateImage{}, logger.NewTestLogger())
    require.Error(t, err)
    assert.Contains(t, err.Error(), "boom")
    assert.Equal(t, 1, e.closed)
}

func TestRecognizeOnceAcquireError(t *testing.T) {
    e := &countingEngine{acquireErr: errors.New("no tessdata")}

    _, err := RecognizeOnce(context.Background(), e, models.CandidateImage{}, logger.NewTestLogger())
    assert.ErrorContains(t, err, "failed to acquire counting engine")
    assert.Zero(t, e.closed)
}
