package intake

import "sync/atomic"

// Channel identifies which input surface produced an event.
type Channel string

const (
    ChannelFileSelect Channel = "select"
    ChannelDrop       Channel = "drop"
    ChannelPaste      Channel = "paste"
)

// File is a platform file handle: a name, a declared MIME type and its bytes.
type File struct {
    Name string
    Type string
    Data []byte
}

// PasteItem is one typed clipboard data item. AsFile is nil for items that
// cannot be converted to a file (plain text, html).
type PasteItem struct {
    Type   string
    AsFile func() (*File, error)
}

// Event is an input event handed to Normalize.
type Event interface {
    Channel() Channel
}

// defaultGuard records whether the platform default action was suppressed.
type defaultGuard struct {
    prevented atomic.Bool
}

// PreventDefault suppresses the platform's default handling of the event.
func (g *defaultGuard) PreventDefault() { g.prevented.Store(true) }

// DefaultPrevented reports whether PreventDefault was called.
func (g *defaultGuard) DefaultPrevented() bool { return g.prevented.Load() }

// FileSelectEvent carries the files picked in a file dialog.
type FileSelectEvent struct {
    Files []*File
}

func (e *FileSelectEvent) Channel() Channel { return ChannelFileSelect }

// DropEvent carries the ordered file list of a drag-and-drop.
type DropEvent struct {
    defaultGuard
    Files []*File
}

func (e *DropEvent) Channel() Channel { return ChannelDrop }

// PasteEvent carries the ordered clipboard items of a paste.
type PasteEvent struct {
    defaultGuard
    Items []PasteItem
}

func (e *PasteEvent) Channel() Channel { return ChannelPaste }

// FileItem wraps a file as a paste item whose accessor returns it.
func FileItem(f *File) PasteItem {
    return PasteItem{
        Type:   f.Type,
        AsFile: func() (*File, error) { return f, nil },
    }
}

// TextItem is a non-file paste item of the given type.
func TextItem(mimeType string) PasteItem {
    return PasteItem{Type: mimeType}
}
