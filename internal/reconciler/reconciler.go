// Package reconciler derives the user-facing session state from job outcomes
// and user actions. Every transition takes a State and returns a new one;
// nothing here touches a clock, a timer or the clipboard on its own.
package reconciler

import (
    "time"

    "github.com/feichai0017/screenshot-ocr/internal/models"
)

// State is the session state owned by the reconciler.
type State struct {
    ResultText   string
    Preview      *models.PreviewImage
    Notification models.Notification
    AutoCopy     bool
    // CopiedUntil is when the "copied" acknowledgement on the copy button ends.
    CopiedUntil time.Time
}

// NotificationAt returns the visible notification text at now.
func (s State) NotificationAt(now time.Time) string {
    if s.Notification.Active(now) {
        return s.Notification.Message
    }
    return ""
}

// CopiedAt reports whether the copy acknowledgement is visible at now.
func (s State) CopiedAt(now time.Time) bool {
    return now.Before(s.CopiedUntil)
}

// Copier writes text to the clipboard and reports success.
type Copier func(text string) bool

// Reconciler holds the display durations.
type Reconciler struct {
    NotificationTTL time.Duration
    CopiedTTL       time.Duration
}

// New returns a reconciler with the given durations, falling back to 3s/2s.
func New(notificationTTL, copiedTTL time.Duration) Reconciler {
    if notificationTTL <= 0 {
        notificationTTL = 3 * time.Second
    }
    if copiedTTL <= 0 {
        copiedTTL = 2 * time.Second
    }
    return Reconciler{NotificationTTL: notificationTTL, CopiedTTL: copiedTTL}
}

// Initial is the state of a fresh session.
func (r Reconciler) Initial(autoCopy bool) State {
    return State{AutoCopy: autoCopy}
}

// Submitted shows the preview of an accepted image right away.
func (r Reconciler) Submitted(s State, preview models.PreviewImage) State {
    s.Preview = &preview
    return s
}

// JobFinished applies a terminal job. On a non-empty success with auto-copy
// on, copier runs after ResultText is set and before the notification is
// chosen. A failed job never touches ResultText.
func (r Reconciler) JobFinished(s State, job models.Job, now time.Time, copier Copier) State {
    switch job.Status {
    case models.JobStatusSucceeded:
        s.ResultText = job.Text
        if job.Text == "" {
            return r.notify(s, MsgNoText, now)
        }
        if !s.AutoCopy || copier == nil {
            return r.notify(s, MsgExtracted, now)
        }
        if copier(s.ResultText) {
            return r.notify(s, MsgExtractedAndCopied, now)
        }
        return r.notify(s, MsgExtractedCopyFailed, now)

    case models.JobStatusFailed:
        return r.notify(s, MsgFailed, now)

    default:
        return s
    }
}

// Copied records the outcome of a user copy request.
func (r Reconciler) Copied(s State, ok bool, now time.Time) State {
    s.CopiedUntil = now.Add(r.CopiedTTL)
    if ok {
        return r.notify(s, MsgCopied, now)
    }
    return r.notify(s, MsgCopyFailed, now)
}

// Cleared drops the result and the preview.
func (r Reconciler) Cleared(s State, now time.Time) State {
    s.ResultText = ""
    s.Preview = nil
    s.CopiedUntil = time.Time{}
    return r.notify(s, MsgCleared, now)
}

// AutoCopyToggled sets the auto-copy preference.
func (r Reconciler) AutoCopyToggled(s State, enabled bool) State {
    s.AutoCopy = enabled
    return s
}

// Expire drops a notification whose time is up.
func (r Reconciler) Expire(s State, now time.Time) State {
    if s.Notification.Message != "" && !s.Notification.Active(now) {
        s.Notification = models.Notification{}
    }
    if !s.CopiedUntil.IsZero() && !s.CopiedAt(now) {
        s.CopiedUntil = time.Time{}
    }
    return s
}

// notify replaces any visible notification.
func (r Reconciler) notify(s State, msg string, now time.Time) State {
    s.Notification = models.Notification{
        Message:   msg,
        ShownAt:   now,
        ExpiresAt: now.Add(r.NotificationTTL),
    }
    return s
}
