package textract

import (
    "context"
    "fmt"
    "strings"

    "github.com/aws/aws-sdk-go-v2/config"
    "github.com/aws/aws-sdk-go-v2/credentials"
    "github.com/aws/aws-sdk-go-v2/service/textract"
    "github.com/aws/aws-sdk-go-v2/service/textract/types"

    "github.com/feichai0017/screenshot-ocr/internal/agent/ocr"
    "github.com/feichai0017/screenshot-ocr/internal/models"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

// DetectAPI is the subset of the Textract client the engine calls.
type DetectAPI interface {
    DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

type Config struct {
    Region        string
    Endpoint      string
    AccessKey     string
    SecretKey     string
    MinConfidence float32
}

// Engine sends screenshots to AWS Textract.
type Engine struct {
    client DetectAPI
    logger logger.Logger
    config *Config
}

func NewEngine(ctx context.Context, cfg *Config, log logger.Logger) (*Engine, error) {
    creds := credentials.NewStaticCredentialsProvider(
        cfg.AccessKey,
        cfg.SecretKey,
        "",
    )

    // load aws config
    awsCfg, err := config.LoadDefaultConfig(ctx,
        config.WithRegion(cfg.Region),
        config.WithCredentialsProvider(creds),
    )
    if err != nil {
        return nil, fmt.Errorf("unable to load AWS config: %w", err)
    }

    client := textract.NewFromConfig(awsCfg, func(o *textract.Options) {
        if cfg.Endpoint != "" {
            o.BaseEndpoint = &cfg.Endpoint
        }
    })

    return NewEngineWithClient(client, cfg, log), nil
}

// NewEngineWithClient wires an existing client.
func NewEngineWithClient(client DetectAPI, cfg *Config, log logger.Logger) *Engine {
    return &Engine{client: client, logger: log, config: cfg}
}

func (e *Engine) Name() string { return "textract" }

// Acquire returns a session bound to the shared client; the API is stateless.
func (e *Engine) Acquire(ctx context.Context) (ocr.Session, error) {
    return &session{engine: e}, nil
}

type session struct {
    engine *Engine
}

func (s *session) Recognize(ctx context.Context, img models.CandidateImage) (string, error) {
    if !s.canProcess(img.MimeType) {
        return "", fmt.Errorf("textract does not support %s", img.MimeType)
    }

    result, err := s.engine.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
        Document: &types.Document{Bytes: img.Data},
    })
    if err != nil {
        return "", fmt.Errorf("failed to detect document text: %w", err)
    }

    return strings.Join(s.lines(result.Blocks), "\n"), nil
}

func (s *session) Close() error {
    // textract client doesn't need special cleanup
    return nil
}

func (s *session) canProcess(mimeType string) bool {
    switch strings.ToLower(mimeType) {
    case "image/jpeg", "image/jpg", "image/png", "image/tiff":
        return true
    default:
        return false
    }
}

// lines keeps LINE blocks at or above the confidence floor, in reading order.
func (s *session) lines(blocks []types.Block) []string {
    var texts []string
    for _, block := range blocks {
        if block.BlockType != types.BlockTypeLine || block.Text == nil {
            continue
        }
        if block.Confidence != nil && *block.Confidence < s.engine.config.MinConfidence {
            continue
        }
        texts = append(texts, *block.Text)
    }
    return texts
}
