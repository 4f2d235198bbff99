package models

import "time"

// JobStatus 识别任务状态
type JobStatus string

const (
    JobStatusIdle      JobStatus = "idle"
    JobStatusRunning   JobStatus = "running"
    JobStatusSucceeded JobStatus = "succeeded"
    JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status ends a job.
func (s JobStatus) IsTerminal() bool {
    return s == JobStatusSucceeded || s == JobStatusFailed
}

// Job 一次识别尝试
type Job struct {
    ID         string    `json:"id,omitempty"`
    Status     JobStatus `json:"status"`
    Engine     string    `json:"engine,omitempty"`
    ImageName  string    `json:"imageName,omitempty"`
    MimeType   string    `json:"mimeType,omitempty"`
    Text       string    `json:"text,omitempty"`
    Error      string    `json:"error,omitempty"`
    StartedAt  time.Time `json:"startedAt,omitempty"`
    FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// Duration returns how long a finished job ran.
func (j Job) Duration() time.Duration {
    if j.FinishedAt.IsZero() || j.StartedAt.IsZero() {
        return 0
    }
    return j.FinishedAt.Sub(j.StartedAt)
}
