package config

import (
    "log"
    "os"
    "path/filepath"
    "runtime"
    "strconv"
    "sync"
    "time"

    "github.com/joho/godotenv"
)

var envOnce sync.Once

// loadDotEnv 加载项目根目录下的 .env 文件（只执行一次）
func loadDotEnv() {
    envOnce.Do(func() {
        // 获取当前文件的目录
        _, filename, _, _ := runtime.Caller(0)
        rootDir := filepath.Dir(filepath.Dir(filename))
        envPath := filepath.Join(rootDir, ".env")

        if err := godotenv.Load(envPath); err != nil {
            log.Printf("Warning: .env file not found at %s, falling back to environment variables", envPath)
        }
    })
}

func envString(key string, dst *string) {
    if v, ok := os.LookupEnv(key); ok && v != "" {
        *dst = v
    }
}

func envBool(key string, dst *bool) {
    if v, ok := os.LookupEnv(key); ok {
        if b, err := strconv.ParseBool(v); err == nil {
            *dst = b
        }
    }
}

func envInt(key string, dst *int) {
    if v, ok := os.LookupEnv(key); ok {
        if n, err := strconv.Atoi(v); err == nil {
            *dst = n
        }
    }
}

func envInt64(key string, dst *int64) {
    if v, ok := os.LookupEnv(key); ok {
        if n, err := strconv.ParseInt(v, 10, 64); err == nil {
            *dst = n
        }
    }
}

func envDuration(key string, dst *time.Duration) {
    if v, ok := os.LookupEnv(key); ok {
        if d, err := time.ParseDuration(v); err == nil {
            *dst = d
        }
    }
}
