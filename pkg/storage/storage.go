package storage

import (
    "context"
    "errors"
    "fmt"
    "io"
    "io/fs"
    "time"

    "github.com/feichai0017/screenshot-ocr/pkg/logger"
    "github.com/feichai0017/screenshot-ocr/pkg/storage/memory"
    "github.com/feichai0017/screenshot-ocr/pkg/storage/minio"
    "github.com/feichai0017/screenshot-ocr/pkg/storage/s3"
)

// StorageType 定义存储类型
type StorageType string

const (
    StorageTypeMemory StorageType = "memory"
    StorageTypeS3     StorageType = "s3"
    StorageTypeMinio  StorageType = "minio"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = fs.ErrNotExist

// Storage 预览图存储接口
type Storage interface {
    // Store 存储文件
    Store(ctx context.Context, reader io.Reader, key string) (string, error)
    // Get 获取文件
    Get(ctx context.Context, key string) (io.ReadCloser, error)
    // Delete 删除文件
    Delete(ctx context.Context, key string) error
    // CleanupBefore 清理过期文件
    CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage 创建存储实例的工厂方法
func NewStorage(storageType StorageType, logger logger.Logger) (Storage, error) {
    switch storageType {
    case StorageTypeMemory:
        return memory.NewStorage(), nil
    case StorageTypeS3:
        return s3.GetClient(logger)
    case StorageTypeMinio:
        return minio.GetClient(logger)
    default:
        return nil, fmt.Errorf("unsupported storage type: %s", storageType)
    }
}

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
    return errors.Is(err, ErrNotFound)
}
