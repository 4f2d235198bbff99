package handlers_test

import (
    "bytes"
    "context"
    "encoding/json"
    "image"
    "image/png"
    "mime/multipart"
    "net/http"
    "net/http/httptest"
    "net/textproto"
    "testing"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/feichai0017/screenshot-ocr/api/handlers"
    "github.com/feichai0017/screenshot-ocr/api/routes"
    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr"
    "github.com/feichai0017/screenshot-ocr/internal/clipboard"
    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/internal/reconciler"
    "github.com/feichai0017/screenshot-ocr/internal/service/session"
    "github.com/feichai0017/screenshot-ocr/internal/utils/validator"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
    "github.com/feichai0017/screenshot-ocr/pkg/storage/memory"
)

type server struct {
    router    *gin.Engine
    svc       *session.SessionService
    release   chan string
    clipboard []string
}

func newServer(t *testing.T, maxSize int64) *server {
    t.Helper()
    gin.SetMode(gin.TestMode)

    s := &server{release: make(chan string, 1)}
    log := logger.NewTestLogger()

    engine := ocr.EngineFunc(func(ctx context.Context, img models.CandidateImage) (string, error) {
        return <-s.release, nil
    })
    bridge := clipboard.NewBridge(clipboard.WriterFunc(func(ctx context.Context, text string) error {
        s.clipboard = append(s.clipboard, text)
        return nil
    }), log)

    s.svc = session.NewService(engine, memory.NewStorage(), bridge, log, &session.ServiceConfig{AutoCopy: true})
    v := validator.NewUploadValidator(log, &validator.ValidatorConfig{MaxFileSize: maxSize})

    s.router = gin.New()
    routes.SetupRoutes(s.router, handlers.NewHandlers(s.svc, v, log), log)
    return s
}

func (s *server) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
    t.Helper()
    w := httptest.NewRecorder()
    s.router.ServeHTTP(w, req)
    return w
}

func (s *server) finish(t *testing.T, text string) session.Snapshot {
    t.Helper()
    s.release <- text
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    snap, err := s.svc.Wait(ctx)
    require.NoError(t, err)
    return snap
}

func pngData(t *testing.T) []byte {
    t.Helper()
    var buf bytes.Buffer
    require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
    return buf.Bytes()
}

type part struct {
    field    string
    filename string
    ctype    string
    data     []byte
}

func multipartRequest(t *testing.T, path string, parts ...part) *http.Request {
    t.Helper()
    var body bytes.Buffer
    w := multipart.NewWriter(&body)
    for _, p := range parts {
        h := make(textproto.MIMEHeader)
        disposition := `form-data; name="` + p.field + `"`
        if p.filename != "" {
            disposition += `; filename="` + p.filename + `"`
        }
        h.Set("Content-Disposition", disposition)
        if p.ctype != "" {
            h.Set("Content-Type", p.ctype)
        }
        pw, err := w.CreatePart(h)
        require.NoError(t, err)
        _, _ = pw.Write(p.data)
    }
    require.NoError(t, w.Close())

    req := httptest.NewRequest(http.MethodPost, path, &body)
    req.Header.Set("Content-Type", w.FormDataContentType())
    return req
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) session.Snapshot {
    t.Helper()
    var snap session.Snapshot
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
    return snap
}

func TestPasteTextThenImage(t *testing.T) {
    s := newServer(t, 1<<20)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/paste",
        part{field: "item", ctype: "text/plain", data: []byte("hello")},
        part{field: "item", filename: "image.png", ctype: "image/png", data: pngData(t)},
    ))
    require.Equal(t, http.StatusAccepted, w.Code)
    assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

    var resp handlers.SubmitResponse
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
    assert.Equal(t, "running", resp.Status)
    assert.Equal(t, "image.png", resp.Filename)

    w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
    snap := decodeSnapshot(t, w)
    assert.True(t, snap.Busy)
    require.NotNil(t, snap.Preview)

    w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/preview", nil))
    assert.Equal(t, http.StatusOK, w.Code)
    assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

    s.finish(t, "Hello")
}

func TestPasteTextOnlyIsSilent(t *testing.T) {
    s := newServer(t, 1<<20)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/paste",
        part{field: "item", ctype: "text/plain", data: []byte("hello")},
    ))
    assert.Equal(t, http.StatusNoContent, w.Code)
    assert.Empty(t, s.svc.Snapshot().Notification)
}

func TestDropSniffsUntypedImage(t *testing.T) {
    s := newServer(t, 1<<20)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/drop",
        part{field: "files", filename: "notes.txt", ctype: "text/plain", data: []byte("notes")},
        part{field: "files", filename: "invoice", ctype: "application/octet-stream", data: pngData(t)},
    ))
    require.Equal(t, http.StatusAccepted, w.Code)

    snap := s.finish(t, "INVOICE #123")
    assert.Equal(t, "INVOICE #123", snap.ResultText)
    assert.Equal(t, reconciler.MsgExtractedAndCopied, snap.Notification)
    assert.Equal(t, []string{"INVOICE #123"}, s.clipboard)

    w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/download", nil))
    assert.Equal(t, http.StatusOK, w.Code)
    assert.Equal(t, "attachment; filename=extracted-text.txt", w.Header().Get("Content-Disposition"))
    assert.Equal(t, "INVOICE #123", w.Body.String())
}

func TestSelectRejectsNonImage(t *testing.T) {
    s := newServer(t, 1<<20)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/select",
        part{field: "file", filename: "notes.txt", ctype: "text/plain", data: []byte("notes")},
    ))
    assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSelectTooLarge(t *testing.T) {
    s := newServer(t, 8)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/select",
        part{field: "file", filename: "shot.png", ctype: "image/png", data: pngData(t)},
    ))
    assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDropSkipsOversizedNonImage(t *testing.T) {
    s := newServer(t, 1024)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/drop",
        part{field: "files", filename: "log.txt", ctype: "text/plain", data: bytes.Repeat([]byte("a"), 4096)},
        part{field: "files", filename: "shot.png", ctype: "image/png", data: pngData(t)},
    ))
    require.Equal(t, http.StatusAccepted, w.Code)

    var resp handlers.SubmitResponse
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
    assert.Equal(t, "shot.png", resp.Filename)

    s.finish(t, "ok")
}

func TestDropIgnoresOversizedLaterImage(t *testing.T) {
    s := newServer(t, 1024)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/drop",
        part{field: "files", filename: "first.png", ctype: "image/png", data: pngData(t)},
        part{field: "files", filename: "second.png", ctype: "image/png", data: bytes.Repeat([]byte{1}, 4096)},
    ))
    require.Equal(t, http.StatusAccepted, w.Code)
    s.finish(t, "ok")
}

func TestDropOversizedImage(t *testing.T) {
    s := newServer(t, 1024)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/drop",
        part{field: "files", filename: "log.txt", ctype: "text/plain", data: []byte("notes")},
        part{field: "files", filename: "big.png", ctype: "image/png", data: bytes.Repeat([]byte{1}, 4096)},
    ))
    assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
    assert.False(t, s.svc.Snapshot().Busy)
}

func TestPasteSkipsOversizedText(t *testing.T) {
    s := newServer(t, 1024)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/paste",
        part{field: "item", ctype: "text/html", data: bytes.Repeat([]byte("<p>"), 2048)},
        part{field: "item", filename: "clip.txt", ctype: "text/plain", data: bytes.Repeat([]byte("a"), 4096)},
        part{field: "item", filename: "image.png", ctype: "image/png", data: pngData(t)},
    ))
    require.Equal(t, http.StatusAccepted, w.Code)
    s.finish(t, "ok")
}

func TestBusyRejectsSubmission(t *testing.T) {
    s := newServer(t, 1<<20)

    w := s.do(t, multipartRequest(t, "/api/v1/intake/select",
        part{field: "file", filename: "a.png", ctype: "image/png", data: pngData(t)},
    ))
    require.Equal(t, http.StatusAccepted, w.Code)

    w = s.do(t, multipartRequest(t, "/api/v1/intake/select",
        part{field: "file", filename: "b.png", ctype: "image/png", data: pngData(t)},
    ))
    assert.Equal(t, http.StatusConflict, w.Code)

    s.finish(t, "")
}

func TestCopyClearAndAutoCopy(t *testing.T) {
    s := newServer(t, 1<<20)

    w := s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/copy", nil))
    assert.Equal(t, http.StatusNotFound, w.Code)

    req := httptest.NewRequest(http.MethodPut, "/api/v1/session/autocopy", bytes.NewBufferString(`{"enabled":false}`))
    req.Header.Set("Content-Type", "application/json")
    w = s.do(t, req)
    require.Equal(t, http.StatusOK, w.Code)
    assert.False(t, decodeSnapshot(t, w).AutoCopy)

    w = s.do(t, multipartRequest(t, "/api/v1/intake/select",
        part{field: "file", filename: "a.png", ctype: "image/png", data: pngData(t)},
    ))
    require.Equal(t, http.StatusAccepted, w.Code)
    s.finish(t, "copy me")
    assert.Empty(t, s.clipboard)

    w = s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/copy", nil))
    require.Equal(t, http.StatusOK, w.Code)
    var copied handlers.CopyResponse
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &copied))
    assert.True(t, copied.Copied)
    assert.True(t, copied.Snapshot.Copied)
    assert.Equal(t, reconciler.MsgCopied, copied.Snapshot.Notification)

    w = s.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/clear", nil))
    require.Equal(t, http.StatusOK, w.Code)
    snap := decodeSnapshot(t, w)
    assert.Empty(t, snap.ResultText)
    assert.Nil(t, snap.Preview)
    assert.Equal(t, reconciler.MsgCleared, snap.Notification)
}

func TestAutoCopyRequiresEnabled(t *testing.T) {
    s := newServer(t, 1<<20)

    req := httptest.NewRequest(http.MethodPut, "/api/v1/session/autocopy", bytes.NewBufferString(`{}`))
    req.Header.Set("Content-Type", "application/json")
    w := s.do(t, req)
    assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewDataURLAndHealth(t *testing.T) {
    s := newServer(t, 1<<20)

    w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/preview", nil))
    assert.Equal(t, http.StatusNotFound, w.Code)

    w = s.do(t, multipartRequest(t, "/api/v1/intake/select",
        part{field: "file", filename: "a.png", ctype: "image/png", data: pngData(t)},
    ))
    require.Equal(t, http.StatusAccepted, w.Code)
    s.finish(t, "x")

    w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/preview?format=dataurl", nil))
    require.Equal(t, http.StatusOK, w.Code)
    var body map[string]string
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
    assert.Contains(t, body["dataUrl"], "data:image/png;base64,")

    w = s.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    assert.Equal(t, http.StatusOK, w.Code)
}
