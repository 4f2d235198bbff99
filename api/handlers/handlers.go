package handlers

import (
    "github.com/feichai0017/screenshot-ocr/internal/service/session"
    "github.com/feichai0017/screenshot-ocr/internal/utils/validator"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

type Handlers struct {
    Intake  *IntakeHandler
    Session *SessionHandler
}

func NewHandlers(
    sessionService session.ScreenshotSession,
    uploadValidator *validator.UploadValidator,
    logger logger.Logger,
) *Handlers {
    return &Handlers{
        Intake:  NewIntakeHandler(sessionService, uploadValidator, logger),
        Session: NewSessionHandler(sessionService, logger),
    }
}
