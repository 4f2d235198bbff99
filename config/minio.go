package config

import (
    "os"
    "sync"
)

var (
    minioOnce   sync.Once
    minioConfig *MinioConfig
)

type MinioConfig struct {
    AccessKey  string
    SecretKey  string
    Endpoint   string
    UseSSL     bool
    Region     string
    BucketName string
}

func GetMinioConfig() *MinioConfig {
    minioOnce.Do(func() {
        loadDotEnv()

        minioConfig = &MinioConfig{
            AccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
            SecretKey:  os.Getenv("MINIO_SECRET_KEY"),
            Endpoint:   os.Getenv("MINIO_ENDPOINT"),
            Region:     os.Getenv("MINIO_REGION"),
            BucketName: os.Getenv("MINIO_BUCKET_NAME"),
        }
        envBool("MINIO_USE_SSL", &minioConfig.UseSSL)
        if minioConfig.BucketName == "" {
            minioConfig.BucketName = "screenshot-previews"
        }
    })
    return minioConfig
}
