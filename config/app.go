package config

import (
    "errors"
    "fmt"
    "io/fs"
    "os"
    "strings"
    "sync"
    "time"

    "gopkg.in/yaml.v3"

    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

var (
    appOnce   sync.Once
    appConfig *AppConfig
    appErr    error
)

// Engine kinds.
const (
    EngineTesseract = "tesseract"
    EngineTextract  = "textract"
    EngineQueue     = "queue"
)

// Preview store kinds.
const (
    StoreMemory = "memory"
    StoreMinio  = "minio"
    StoreS3     = "s3"
)

type AppConfig struct {
    Server    ServerConfig    `yaml:"server"`
    Log       LogConfig       `yaml:"log"`
    Engine    EngineConfig    `yaml:"engine"`
    Session   SessionConfig   `yaml:"session"`
    Preview   PreviewConfig   `yaml:"preview"`
    Clipboard ClipboardConfig `yaml:"clipboard"`
}

type ServerConfig struct {
    Addr            string        `yaml:"addr"`
    ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type LogConfig struct {
    Level       string          `yaml:"level"`
    Encoding    string          `yaml:"encoding"`
    OutputPaths []string        `yaml:"outputPaths"`
    ErrorPaths  []string        `yaml:"errorPaths"`
    Rotation    logger.Rotation `yaml:"rotation"`
}

type EngineConfig struct {
    Kind        string   `yaml:"kind"`
    Languages   []string `yaml:"languages"`
    PageSegMode int      `yaml:"pageSegMode"`
    Preprocess  bool     `yaml:"preprocess"`
    // MinConfidence only applies to textract.
    MinConfidence float32 `yaml:"minConfidence"`
}

type SessionConfig struct {
    AutoCopy        bool          `yaml:"autoCopy"`
    NotificationTTL time.Duration `yaml:"notificationTTL"`
    CopiedTTL       time.Duration `yaml:"copiedTTL"`
    MaxUploadSize   int64         `yaml:"maxUploadSize"`
}

type PreviewConfig struct {
    Store string `yaml:"store"`
}

type ClipboardConfig struct {
    Enabled bool `yaml:"enabled"`
}

// DefaultAppConfig returns the built-in defaults.
func DefaultAppConfig() *AppConfig {
    return &AppConfig{
        Server: ServerConfig{
            Addr:            ":8080",
            ShutdownTimeout: 5 * time.Second,
        },
        Log: LogConfig{
            Level:       "info",
            Encoding:    "json",
            OutputPaths: []string{"stdout", "logs/app.log"},
            ErrorPaths:  []string{"logs/error.log"},
            Rotation: logger.Rotation{
                MaxSize:    100,
                MaxBackups: 3,
                MaxAge:     7,
                Compress:   true,
            },
        },
        Engine: EngineConfig{
            Kind:          EngineTesseract,
            Languages:     []string{"eng"},
            PageSegMode:   3,
            Preprocess:    true,
            MinConfidence: 50,
        },
        Session: SessionConfig{
            AutoCopy:        true,
            NotificationTTL: 3 * time.Second,
            CopiedTTL:       2 * time.Second,
            MaxUploadSize:   20 * 1024 * 1024,
        },
        Preview: PreviewConfig{
            Store: StoreMemory,
        },
        Clipboard: ClipboardConfig{
            Enabled: true,
        },
    }
}

// GetAppConfig 读取配置文件（OCR_CONFIG，默认 config.yaml）并应用环境变量覆盖
func GetAppConfig() (*AppConfig, error) {
    appOnce.Do(func() {
        loadDotEnv()
        path := os.Getenv("OCR_CONFIG")
        if path == "" {
            path = "config.yaml"
        }
        appConfig, appErr = LoadAppConfig(path)
    })
    return appConfig, appErr
}

// LoadAppConfig reads path over the defaults; a missing file is not an error.
func LoadAppConfig(path string) (*AppConfig, error) {
    cfg := DefaultAppConfig()

    data, err := os.ReadFile(path)
    switch {
    case errors.Is(err, fs.ErrNotExist):
    case err != nil:
        return nil, fmt.Errorf("failed to read config %s: %w", path, err)
    default:
        if err := yaml.Unmarshal(data, cfg); err != nil {
            return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
        }
    }

    cfg.applyEnv()
    if err := cfg.Validate(); err != nil {
        return nil, err
    }
    return cfg, nil
}

func (c *AppConfig) applyEnv() {
    envString("OCR_SERVER_ADDR", &c.Server.Addr)
    envDuration("OCR_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
    envString("OCR_LOG_LEVEL", &c.Log.Level)
    envString("OCR_LOG_ENCODING", &c.Log.Encoding)
    envString("OCR_ENGINE", &c.Engine.Kind)
    if v := os.Getenv("OCR_LANGUAGES"); v != "" {
        c.Engine.Languages = strings.Split(v, "+")
    }
    envInt("OCR_PAGE_SEG_MODE", &c.Engine.PageSegMode)
    envBool("OCR_PREPROCESS", &c.Engine.Preprocess)
    envBool("OCR_AUTO_COPY", &c.Session.AutoCopy)
    envDuration("OCR_NOTIFICATION_TTL", &c.Session.NotificationTTL)
    envDuration("OCR_COPIED_TTL", &c.Session.CopiedTTL)
    envInt64("OCR_MAX_UPLOAD_SIZE", &c.Session.MaxUploadSize)
    envString("OCR_PREVIEW_STORE", &c.Preview.Store)
    envBool("OCR_CLIPBOARD", &c.Clipboard.Enabled)
}

// Validate checks enumerations and positive limits.
func (c *AppConfig) Validate() error {
    switch c.Engine.Kind {
    case EngineTesseract, EngineTextract, EngineQueue:
    default:
        return fmt.Errorf("unsupported engine kind: %q", c.Engine.Kind)
    }
    switch c.Preview.Store {
    case StoreMemory, StoreMinio, StoreS3:
    default:
        return fmt.Errorf("unsupported preview store: %q", c.Preview.Store)
    }
    if c.Session.NotificationTTL <= 0 || c.Session.CopiedTTL <= 0 {
        return fmt.Errorf("session TTLs must be positive")
    }
    if c.Session.MaxUploadSize <= 0 {
        return fmt.Errorf("maxUploadSize must be positive")
    }
    return nil
}
