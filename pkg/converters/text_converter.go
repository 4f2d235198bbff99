package converters

import (
    "encoding/base64"
    "strings"
    "unicode/utf8"
)

const (
    // DownloadFilename 下载文件名
    DownloadFilename = "extracted-text.txt"
    // DownloadContentType 下载内容类型
    DownloadContentType = "text/plain; charset=utf-8"
)

// TextStats 识别文本统计
type TextStats struct {
    Characters int `json:"characters"`
    Lines      int `json:"lines"`
}

// Download 文本下载内容
type Download struct {
    Filename    string
    ContentType string
    Body        []byte
}

// Stats counts runes and newline-separated lines. Empty text has no lines.
func Stats(text string) TextStats {
    if text == "" {
        return TextStats{}
    }
    return TextStats{
        Characters: utf8.RuneCountInString(text),
        Lines:      strings.Count(text, "\n") + 1,
    }
}

// ToDownload 将识别结果转换为可下载的纯文本文件
func ToDownload(text string) Download {
    return Download{
        Filename:    DownloadFilename,
        ContentType: DownloadContentType,
        Body:        []byte(text),
    }
}

// DataURL 将预览图编码为 data URL
func DataURL(mimeType string, data []byte) string {
    var b strings.Builder
    b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
    b.WriteString("data:")
    b.WriteString(mimeType)
    b.WriteString(";base64,")
    b.WriteString(base64.StdEncoding.EncodeToString(data))
    return b.String()
}
