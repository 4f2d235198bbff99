package config

import (
    "os"
    "sync"
)

var (
    textractOnce   sync.Once
    textractConfig *TextractConfig
)

type TextractConfig struct {
    Region    string
    Endpoint  string
    AccessKey string
    SecretKey string
}

func GetTextractConfig() *TextractConfig {
    textractOnce.Do(func() {
        loadDotEnv()

        textractConfig = &TextractConfig{
            Region:    os.Getenv("AWS_REGION"),
            Endpoint:  os.Getenv("AWS_TEXTRACT_ENDPOINT"),
            AccessKey: os.Getenv("AWS_ACCESS_KEY"),
            SecretKey: os.Getenv("AWS_SECRET_KEY"),
        }
    })
    return textractConfig
}
