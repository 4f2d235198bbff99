package reconciler

// User-facing notification texts.
const (
    MsgExtractedAndCopied  = "Text extracted and copied to clipboard!"
    MsgExtractedCopyFailed = "Text extracted! Click copy button to copy manually."
    MsgExtracted           = "Text extracted successfully!"
    MsgNoText              = "No text found in the image."
    MsgFailed              = "Failed to process image. Please try again."
    MsgCopied              = "Text copied to clipboard!"
    MsgCopyFailed          = "Failed to copy text. Please try selecting and copying manually."
    MsgCleared             = "Results cleared"
)
