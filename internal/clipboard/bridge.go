// Package clipboard writes recognized text to the system clipboard.
package clipboard

import (
    "context"
    "errors"
    "fmt"
    "sync"

    "github.com/atotto/clipboard"

    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

// ErrUnavailable is returned when no clipboard utility is present.
var ErrUnavailable = errors.New("system clipboard unavailable")

// Writer is the platform clipboard write primitive.
type Writer interface {
    WriteText(ctx context.Context, text string) error
}

// WriterFunc adapts a function into a Writer.
type WriterFunc func(ctx context.Context, text string) error

func (f WriterFunc) WriteText(ctx context.Context, text string) error { return f(ctx, text) }

// SystemWriter writes through xclip/xsel/wl-copy, pbcopy or the Win32 API.
type SystemWriter struct{}

func (SystemWriter) WriteText(ctx context.Context, text string) error {
    if clipboard.Unsupported {
        return ErrUnavailable
    }
    if err := ctx.Err(); err != nil {
        return err
    }
    return clipboard.WriteAll(text)
}

// DisabledWriter refuses every write; used when the clipboard is turned off.
type DisabledWriter struct{}

func (DisabledWriter) WriteText(context.Context, string) error { return ErrUnavailable }

// Bridge reports clipboard writes as a boolean and never fails the caller.
type Bridge struct {
    mu     sync.Mutex
    writer Writer
    logger logger.Logger
}

func NewBridge(w Writer, log logger.Logger) *Bridge {
    if w == nil {
        w = DisabledWriter{}
    }
    return &Bridge{writer: w, logger: log}
}

// WriteText returns true only if the platform accepted the text.
func (b *Bridge) WriteText(ctx context.Context, text string) (ok bool) {
    b.mu.Lock()
    defer b.mu.Unlock()

    defer func() {
        if r := recover(); r != nil {
            b.logger.Warn("Clipboard write panicked", logger.Any("panic", fmt.Sprint(r)))
            ok = false
        }
    }()

    if err := b.writer.WriteText(ctx, text); err != nil {
        b.logger.Warn("Clipboard write failed",
            logger.Int("chars", len(text)),
            logger.Error(err),
        )
        return false
    }
    return true
}
