package logger

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "gopkg.in/natefinch/lumberjack.v2"
)

// Field type
type Field = zapcore.Field

// Logger interface
type Logger interface {
    Debug(msg string, fields ...Field)
    Info(msg string, fields ...Field)
    Warn(msg string, fields ...Field)
    Error(msg string, fields ...Field)
    Fatal(msg string, fields ...Field)
    With(fields ...Field) Logger
    Named(name string) Logger
    Sync() error
}

// Rotation 文件输出的滚动策略, 交给 lumberjack
type Rotation struct {
    MaxSize    int  `json:"maxSize" yaml:"maxSize"` // MB
    MaxBackups int  `json:"maxBackups" yaml:"maxBackups"`
    MaxAge     int  `json:"maxAge" yaml:"maxAge"` // days
    Compress   bool `json:"compress" yaml:"compress"`
}

// Config defines logger configuration.
//
// OutputPaths receive every entry at Level or above. ErrorPaths additionally
// receive a copy of error and fatal entries only.
type Config struct {
    Level       string   `json:"level" yaml:"level"`
    Encoding    string   `json:"encoding" yaml:"encoding"`
    OutputPaths []string `json:"outputPaths" yaml:"outputPaths"`
    ErrorPaths  []string `json:"errorPaths" yaml:"errorPaths"`
    Rotation    Rotation `json:"rotation" yaml:"rotation"`
    Service     string   `json:"service" yaml:"service"`
}

type logger struct {
    zap *zap.Logger
}

// Option defines logger option function
type Option func(*Config)

// WithLevel sets logger level
func WithLevel(level string) Option {
    return func(c *Config) {
        c.Level = level
    }
}

// WithEncoding sets logger encoding
func WithEncoding(encoding string) Option {
    return func(c *Config) {
        c.Encoding = encoding
    }
}

// WithOutputPaths sets logger output paths
func WithOutputPaths(paths []string) Option {
    return func(c *Config) {
        c.OutputPaths = paths
    }
}

// WithErrorPaths sets the paths that receive error entries only. An empty
// list disables the error copy.
func WithErrorPaths(paths []string) Option {
    return func(c *Config) {
        c.ErrorPaths = paths
    }
}

// WithRotation overrides the rotation policy of file outputs. Zero values
// keep the defaults.
func WithRotation(r Rotation) Option {
    return func(c *Config) {
        if r.MaxSize > 0 {
            c.Rotation.MaxSize = r.MaxSize
        }
        if r.MaxBackups > 0 {
            c.Rotation.MaxBackups = r.MaxBackups
        }
        if r.MaxAge > 0 {
            c.Rotation.MaxAge = r.MaxAge
        }
        c.Rotation.Compress = r.Compress
    }
}

// WithService tags every entry with the process name (server, worker).
func WithService(name string) Option {
    return func(c *Config) {
        c.Service = name
    }
}

// NewLogger creates a new logger instance
func NewLogger(opts ...Option) (Logger, error) {
    cfg := &Config{
        Level:       "info",
        Encoding:    "json",
        OutputPaths: []string{"stdout", "logs/app.log"},
        ErrorPaths:  []string{"logs/error.log"},
        Rotation: Rotation{
            MaxSize:    100,
            MaxBackups: 3,
            MaxAge:     7,
            Compress:   true,
        },
    }
    for _, opt := range opts {
        opt(cfg)
    }

    level := zap.NewAtomicLevel()
    if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
        return nil, fmt.Errorf("can't parse log level: %w", err)
    }
    if len(cfg.OutputPaths) == 0 {
        return nil, fmt.Errorf("no log output paths configured")
    }

    // 错误副本不低于 error 级别, 也不低于全局级别
    errorLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
        return l >= zapcore.ErrorLevel && level.Enabled(l)
    })

    encoder := newEncoder(cfg.Encoding)
    cores := make([]zapcore.Core, 0, len(cfg.OutputPaths)+len(cfg.ErrorPaths))
    for _, path := range cfg.OutputPaths {
        sink, err := openSink(path, cfg.Rotation)
        if err != nil {
            return nil, err
        }
        cores = append(cores, zapcore.NewCore(encoder, sink, level))
    }
    for _, path := range cfg.ErrorPaths {
        sink, err := openSink(path, cfg.Rotation)
        if err != nil {
            return nil, err
        }
        cores = append(cores, zapcore.NewCore(encoder, sink, errorLevel))
    }

    options := []zap.Option{
        zap.AddCaller(),
        zap.AddCallerSkip(1),
        zap.ErrorOutput(zapcore.Lock(os.Stderr)),
    }
    if cfg.Service != "" {
        options = append(options, zap.Fields(zap.String("service", cfg.Service)))
    }

    return &logger{zap: zap.New(zapcore.NewTee(cores...), options...)}, nil
}

func newEncoder(encoding string) zapcore.Encoder {
    encoderConfig := zapcore.EncoderConfig{
        TimeKey:        "timestamp",
        LevelKey:       "level",
        NameKey:        "logger",
        CallerKey:      "caller",
        FunctionKey:    zapcore.OmitKey,
        MessageKey:     "message",
        StacktraceKey:  "stacktrace",
        LineEnding:     zapcore.DefaultLineEnding,
        EncodeLevel:    zapcore.LowercaseLevelEncoder,
        EncodeTime:     zapcore.ISO8601TimeEncoder,
        EncodeDuration: zapcore.SecondsDurationEncoder,
        EncodeCaller:   zapcore.ShortCallerEncoder,
    }
    if encoding == "console" {
        return zapcore.NewConsoleEncoder(encoderConfig)
    }
    return zapcore.NewJSONEncoder(encoderConfig)
}

// openSink maps stdout and stderr to the process streams and anything else
// to a rotated file, creating its directory first.
func openSink(path string, r Rotation) (zapcore.WriteSyncer, error) {
    switch path {
    case "stdout":
        return zapcore.Lock(os.Stdout), nil
    case "stderr":
        return zapcore.Lock(os.Stderr), nil
    }
    if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
        return nil, fmt.Errorf("can't create log directory: %w", err)
    }
    return zapcore.AddSync(&lumberjack.Logger{
        Filename:   path,
        MaxSize:    r.MaxSize,
        MaxBackups: r.MaxBackups,
        MaxAge:     r.MaxAge,
        Compress:   r.Compress,
    }), nil
}

// Various field constructors
func String(key string, val string) Field          { return zap.String(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Int64(key string, val int64) Field            { return zap.Int64(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Any(key string, val interface{}) Field        { return zap.Any(key, val) }
func Error(err error) Field                        { return zap.Error(err) }
func Time(key string, val time.Time) Field         { return zap.Time(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

// Logger implementation
func (l *logger) Debug(msg string, fields ...Field) {
    l.zap.Debug(msg, fields...)
}

func (l *logger) Info(msg string, fields ...Field) {
    l.zap.Info(msg, fields...)
}

func (l *logger) Warn(msg string, fields ...Field) {
    l.zap.Warn(msg, fields...)
}

func (l *logger) Error(msg string, fields ...Field) {
    l.zap.Error(msg, fields...)
}

func (l *logger) Fatal(msg string, fields ...Field) {
    l.zap.Fatal(msg, fields...)
}

func (l *logger) With(fields ...Field) Logger {
    return &logger{zap: l.zap.With(fields...)}
}

func (l *logger) Named(name string) Logger {
    return &logger{zap: l.zap.Named(name)}
}

func (l *logger) Sync() error {
    return l.zap.Sync()
}

type contextKey string

// RequestIDKey is the context key request IDs are stored under.
const RequestIDKey contextKey = "request_id"

// WithRequestID stores a request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
    return context.WithValue(ctx, RequestIDKey, id)
}

// ContextLogger adds context support
type ContextLogger interface {
    Logger
    FromContext(ctx context.Context) Logger
}

type contextLogger struct {
    Logger
}

// NewContextLogger creates a new context logger
func NewContextLogger(l Logger) ContextLogger {
    return &contextLogger{Logger: l}
}

// FromContext creates a new logger with context values
func (l *contextLogger) FromContext(ctx context.Context) Logger {
    if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
        return l.With(String("request_id", requestID))
    }
    return l.Logger
}
