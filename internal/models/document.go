package models

import (
    "strings"
    "time"
)

// CandidateImage 规范化后的待识别图像
type CandidateImage struct {
    Name     string `json:"name"`
    MimeType string `json:"mimeType"`
    Data     []byte `json:"-"`
}

// IsImageType reports whether a MIME tag matches image/*.
func IsImageType(mimeType string) bool {
    return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// Size returns the payload length in bytes.
func (c CandidateImage) Size() int64 {
    return int64(len(c.Data))
}

// PreviewImage 最近一次提交图像的可渲染引用
type PreviewImage struct {
    Key         string    `json:"key"`
    Name        string    `json:"name"`
    MimeType    string    `json:"mimeType"`
    Size        int64     `json:"size"`
    SubmittedAt time.Time `json:"submittedAt"`
}

// Notification 短暂显示的状态消息
type Notification struct {
    Message   string    `json:"message"`
    ShownAt   time.Time `json:"shownAt"`
    ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether the notification is still visible at now.
func (n Notification) Active(now time.Time) bool {
    return n.Message != "" && now.Before(n.ExpiresAt)
}
