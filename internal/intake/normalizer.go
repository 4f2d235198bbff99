package intake

import (
    "errors"
    "fmt"

    "github.com/feichai0017/screenshot-ocr/internal/models"
)

// ErrNoImage is returned when an event carries no image-typed entry.
var ErrNoImage = errors.New("no image in input event")

// Normalize converts an input event into a single candidate image.
//
// Drop and paste events always have their default action suppressed, even
// when no image is found. The first image/* entry in channel order wins.
func Normalize(ev Event) (models.CandidateImage, error) {
    switch e := ev.(type) {
    case *FileSelectEvent:
        return fromFileSelect(e)
    case *DropEvent:
        e.PreventDefault()
        return fromDrop(e)
    case *PasteEvent:
        e.PreventDefault()
        return fromPaste(e)
    case nil:
        return models.CandidateImage{}, ErrNoImage
    default:
        return models.CandidateImage{}, fmt.Errorf("unsupported intake event %T", ev)
    }
}

func fromFileSelect(e *FileSelectEvent) (models.CandidateImage, error) {
    if len(e.Files) == 0 || e.Files[0] == nil {
        return models.CandidateImage{}, ErrNoImage
    }
    // the picker only offers images, but the tag is still checked
    first := e.Files[0]
    if !models.IsImageType(first.Type) {
        return models.CandidateImage{}, ErrNoImage
    }
    return candidate(first), nil
}

func fromDrop(e *DropEvent) (models.CandidateImage, error) {
    for _, f := range e.Files {
        if f != nil && models.IsImageType(f.Type) {
            return candidate(f), nil
        }
    }
    return models.CandidateImage{}, ErrNoImage
}

func fromPaste(e *PasteEvent) (models.CandidateImage, error) {
    for _, item := range e.Items {
        if !models.IsImageType(item.Type) {
            continue
        }
        // only the first image item is considered
        if item.AsFile == nil {
            return models.CandidateImage{}, ErrNoImage
        }
        f, err := item.AsFile()
        if err != nil {
            return models.CandidateImage{}, fmt.Errorf("failed to read pasted image: %w", err)
        }
        if f == nil {
            return models.CandidateImage{}, ErrNoImage
        }
        img := candidate(f)
        if !models.IsImageType(img.MimeType) {
            img.MimeType = item.Type
        }
        return img, nil
    }
    return models.CandidateImage{}, ErrNoImage
}

func candidate(f *File) models.CandidateImage {
    return models.CandidateImage{
        Name:     f.Name,
        MimeType: f.Type,
        Data:     f.Data,
    }
}
