package validator

import (
    "bytes"
    "errors"
    "fmt"
    "io"
    "mime/multipart"
    "strings"

    "github.com/gabriel-vasile/mimetype"

    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

// DefaultMaxFileSize 单个上传文件的默认大小上限
const DefaultMaxFileSize int64 = 20 * 1024 * 1024

// sniffLen matches the prefix length mimetype inspects by default.
const sniffLen = 3072

var ErrFileTooLarge = errors.New("file exceeds maximum upload size")

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
    MaxFileSize int64
}

// FileInfo 上传文件信息。未加载的条目 Data 为空, Size 取请求头声明值。
type FileInfo struct {
    Filename string `json:"filename"`
    Size     int64  `json:"size"`
    MimeType string `json:"mimeType"`
    Sniffed  bool   `json:"sniffed"`
    Data     []byte `json:"-"`
}

// UploadValidator resolves the media type of uploaded parts and reads the
// chosen image under a size limit.
type UploadValidator struct {
    logger logger.Logger
    config ValidatorConfig
}

func NewUploadValidator(log logger.Logger, config *ValidatorConfig) *UploadValidator {
    cfg := ValidatorConfig{MaxFileSize: DefaultMaxFileSize}
    if config != nil && config.MaxFileSize > 0 {
        cfg = *config
    }
    return &UploadValidator{logger: log, config: cfg}
}

func (v *UploadValidator) MaxFileSize() int64 {
    return v.config.MaxFileSize
}

// ValidateFile 读取 multipart 文件。load 为 false 或内容不是图片时只解析类型,
// 不读取正文也不检查大小。
func (v *UploadValidator) ValidateFile(file *multipart.FileHeader, load bool) (*FileInfo, error) {
    f, err := file.Open()
    if err != nil {
        return nil, fmt.Errorf("failed to open file: %w", err)
    }
    defer f.Close()

    return v.read(f, file.Filename, file.Header.Get("Content-Type"), file.Size, load)
}

// ValidatePart 读取流式 multipart part, 用于需要保持顺序的粘贴请求
func (v *UploadValidator) ValidatePart(part *multipart.Part, load bool) (*FileInfo, error) {
    return v.read(part, part.FileName(), part.Header.Get("Content-Type"), 0, load)
}

// read resolves the media type from the declared header or a bounded
// prefix. Only an image entry that is loaded is held to the size limit.
func (v *UploadValidator) read(r io.Reader, filename, declared string, size int64, load bool) (*FileInfo, error) {
    head := make([]byte, sniffLen)
    n, err := io.ReadFull(r, head)
    if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
        return nil, fmt.Errorf("failed to read file: %w", err)
    }
    head = head[:n]

    info := &FileInfo{Filename: filename, Size: size}
    info.MimeType, info.Sniffed = DetectMimeType(declared, head)

    if !load || !models.IsImageType(info.MimeType) {
        v.logger.Debug("Upload part skipped",
            logger.String("filename", filename),
            logger.String("mimeType", info.MimeType),
            logger.Bool("load", load),
        )
        return info, nil
    }

    if size > v.config.MaxFileSize {
        return nil, fmt.Errorf("%s: %w", filename, ErrFileTooLarge)
    }

    var buf bytes.Buffer
    buf.Write(head)
    if _, err := io.Copy(&buf, io.LimitReader(r, v.config.MaxFileSize+1-int64(n))); err != nil {
        return nil, fmt.Errorf("failed to read file: %w", err)
    }
    if int64(buf.Len()) > v.config.MaxFileSize {
        return nil, fmt.Errorf("%s: %w", filename, ErrFileTooLarge)
    }

    info.Data = buf.Bytes()
    info.Size = int64(buf.Len())

    v.logger.Debug("Upload part read",
        logger.String("filename", filename),
        logger.String("declared", declared),
        logger.String("mimeType", info.MimeType),
        logger.Int64("size", info.Size),
    )
    return info, nil
}

// DetectMimeType keeps a declared media type and only sniffs the content
// when the client sent none or a generic binary type.
func DetectMimeType(declared string, data []byte) (string, bool) {
    mediaType := strings.TrimSpace(declared)
    if i := strings.IndexByte(mediaType, ';'); i >= 0 {
        mediaType = strings.TrimSpace(mediaType[:i])
    }
    mediaType = strings.ToLower(mediaType)

    if mediaType != "" && mediaType != "application/octet-stream" {
        return mediaType, false
    }
    if len(data) == 0 {
        return mediaType, false
    }
    return mimetype.Detect(data).String(), true
}
