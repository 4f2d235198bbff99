package logger

import (
    "context"
    "errors"
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewLoggerWritesToFile(t *testing.T) {
    path := filepath.Join(t.TempDir(), "logs", "app.log")
    log, err := NewLogger(WithLevel("debug"), WithEncoding("console"), WithOutputPaths([]string{path}), WithErrorPaths(nil))
    require.NoError(t, err)

    log.Named("test").With(String("k", "v")).Info("hello")
    assert.NoError(t, log.Sync())
    assert.FileExists(t, path)
}

func TestErrorPathsReceiveErrorsOnly(t *testing.T) {
    dir := t.TempDir()
    appPath := filepath.Join(dir, "app.log")
    errPath := filepath.Join(dir, "errors", "error.log")

    log, err := NewLogger(
        WithOutputPaths([]string{appPath}),
        WithErrorPaths([]string{errPath}),
        WithService("worker"),
    )
    require.NoError(t, err)

    log.Info("task started")
    log.Warn("slow engine")
    log.Error("task failed", Error(errors.New("boom")))
    require.NoError(t, log.Sync())

    app, err := os.ReadFile(appPath)
    require.NoError(t, err)
    assert.Contains(t, string(app), "task started")
    assert.Contains(t, string(app), "task failed")

    errs, err := os.ReadFile(errPath)
    require.NoError(t, err)
    assert.NotContains(t, string(errs), "task started")
    assert.NotContains(t, string(errs), "slow engine")
    assert.Contains(t, string(errs), "task failed")
    assert.Contains(t, string(errs), `"service":"worker"`)
    assert.Contains(t, string(errs), `"error":"boom"`)
}

func TestErrorPathsHonourLevel(t *testing.T) {
    dir := t.TempDir()
    errPath := filepath.Join(dir, "error.log")

    log, err := NewLogger(
        WithLevel("fatal"),
        WithOutputPaths([]string{filepath.Join(dir, "app.log")}),
        WithErrorPaths([]string{errPath}),
    )
    require.NoError(t, err)

    log.Error("filtered")
    require.NoError(t, log.Sync())
    assert.NoFileExists(t, errPath)
}

func TestWithRotationKeepsDefaults(t *testing.T) {
    cfg := &Config{Rotation: Rotation{MaxSize: 100, MaxBackups: 3, MaxAge: 7, Compress: true}}
    WithRotation(Rotation{MaxSize: 10})(cfg)

    assert.Equal(t, Rotation{MaxSize: 10, MaxBackups: 3, MaxAge: 7}, cfg.Rotation)
}

func TestNewLoggerRequiresOutput(t *testing.T) {
    _, err := NewLogger(WithOutputPaths(nil), WithErrorPaths(nil))
    assert.Error(t, err)
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
    _, err := NewLogger(WithLevel("loud"), WithOutputPaths([]string{"stdout"}), WithErrorPaths([]string{"stderr"}))
    assert.Error(t, err)
}

func TestTestLoggerRecordsEntries(t *testing.T) {
    log := NewTestLogger()
    log.Info("started", String("jobId", "1"))
    log.Warn("slow")

    assert.True(t, log.HasMessage("INFO", "started"))
    assert.True(t, log.HasMessage("WARN", "slow"))
    assert.False(t, log.HasMessage("ERROR", "started"))

    log.Clear()
    assert.Empty(t, log.GetEntries())
}

func TestContextLoggerAddsRequestID(t *testing.T) {
    base := NewTestLogger()
    cl := NewContextLogger(base)

    assert.NotNil(t, cl.FromContext(context.Background()))
    assert.NotNil(t, cl.FromContext(WithRequestID(context.Background(), "req-1")))
}
