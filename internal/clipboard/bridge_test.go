package clipboard

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

func TestBridgeReportsSuccess(t *testing.T) {
    var got string
    b := NewBridge(WriterFunc(func(_ context.Context, text string) error {
        got = text
        return nil
    }), logger.NewTestLogger())

    assert.True(t, b.WriteText(context.Background(), "INVOICE #123"))
    assert.Equal(t, "INVOICE #123", got)
}

func TestBridgeSwallowsErrors(t *testing.T) {
    log := logger.NewTestLogger()
    b := NewBridge(WriterFunc(func(context.Context, string) error {
        return errors.New("permission denied")
    }), log)

    assert.False(t, b.WriteText(context.Background(), "x"))

    entries := log.GetEntries()
    if assert.Len(t, entries, 1) {
        assert.Equal(t, "WARN", entries[0].Level)
    }
}

func TestBridgeSwallowsPanics(t *testing.T) {
    b := NewBridge(WriterFunc(func(context.Context, string) error {
        panic("display went away")
    }), logger.NewTestLogger())

    assert.False(t, b.WriteText(context.Background(), "x"))
}

func TestBridgeNilWriterIsDisabled(t *testing.T) {
    b := NewBridge(nil, logger.NewTestLogger())
    assert.False(t, b.WriteText(context.Background(), "x"))
}
