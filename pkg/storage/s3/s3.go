package s3

import (
    "context"
    "errors"
    "fmt"
    "io"
    "io/fs"
    "path"
    "time"

    "github.com/aws/aws-sdk-go-v2/aws"
    "github.com/aws/aws-sdk-go-v2/config"
    "github.com/aws/aws-sdk-go-v2/credentials"
    "github.com/aws/aws-sdk-go-v2/service/s3"
    "github.com/aws/aws-sdk-go-v2/service/s3/types"

    cfg "github.com/feichai0017/screenshot-ocr/config"
    "github.com/feichai0017/screenshot-ocr/pkg/logger"
)

type S3Storage struct {
    client     *s3.Client
    bucketName string
    prefix     string
    logger     logger.Logger
}

func (s *S3Storage) objectKey(key string) string {
    if s.prefix == "" {
        return key
    }
    return path.Join(s.prefix, key)
}

// Store 实现 Storage 接口的 Store 方法
func (s *S3Storage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
    _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
        Bucket: aws.String(s.bucketName),
        Key:    aws.String(s.objectKey(key)),
        Body:   reader,
    })
    if err != nil {
        s.logger.Error("Failed to store preview to S3",
            logger.String("bucket", s.bucketName),
            logger.String("key", key),
            logger.Error(err),
        )
        return "", fmt.Errorf("failed to store file: %w", err)
    }

    return key, nil
}

// Get 实现 Storage 接口的 Get 方法
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
    result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
        Bucket: aws.String(s.bucketName),
        Key:    aws.String(s.objectKey(key)),
    })
    if err != nil {
        var noSuchKey *types.NoSuchKey
        if errors.As(err, &noSuchKey) {
            return nil, fmt.Errorf("failed to get file %s: %w", key, fs.ErrNotExist)
        }
        s.logger.Error("Failed to get preview from S3",
            logger.String("bucket", s.bucketName),
            logger.String("key", key),
            logger.Error(err),
        )
        return nil, fmt.Errorf("failed to get file: %w", err)
    }

    return result.Body, nil
}

// Delete 实现 Storage 接口的 Delete 方法
func (s *S3Storage) Delete(ctx context.Context, key string) error {
    _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
        Bucket: aws.String(s.bucketName),
        Key:    aws.String(s.objectKey(key)),
    })
    if err != nil {
        s.logger.Error("Failed to delete preview from S3",
            logger.String("bucket", s.bucketName),
            logger.String("key", key),
            logger.Error(err),
        )
        return fmt.Errorf("failed to delete file: %w", err)
    }

    return nil
}

// CleanupBefore 只清理 prefix 下的对象
func (s *S3Storage) CleanupBefore(ctx context.Context, threshold time.Time) error {
    input := &s3.ListObjectsV2Input{
        Bucket: aws.String(s.bucketName),
    }
    if s.prefix != "" {
        input.Prefix = aws.String(s.prefix + "/")
    }

    paginator := s3.NewListObjectsV2Paginator(s.client, input)
    for paginator.HasMorePages() {
        page, err := paginator.NextPage(ctx)
        if err != nil {
            return fmt.Errorf("failed to list objects: %w", err)
        }

        for _, obj := range page.Contents {
            if obj.LastModified == nil || !obj.LastModified.Before(threshold) {
                continue
            }
            _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
                Bucket: aws.String(s.bucketName),
                Key:    obj.Key,
            })
            if err != nil {
                s.logger.Warn("Failed to delete stale preview",
                    logger.String("key", aws.ToString(obj.Key)),
                    logger.Error(err),
                )
                continue
            }
            s.logger.Debug("Deleted stale preview",
                logger.String("key", aws.ToString(obj.Key)),
                logger.Time("lastModified", *obj.LastModified),
            )
        }
    }

    return nil
}

func NewS3Storage(log logger.Logger) (*S3Storage, error) {
    s3Config := cfg.GetS3Config()

    log.Info("S3 Configuration",
        logger.String("bucket", s3Config.BucketName),
        logger.String("region", s3Config.Region),
        logger.String("prefix", s3Config.Prefix),
        logger.String("endpoint", s3Config.Endpoint),
    )

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    // AWS SDK 配置
    opts := []func(*config.LoadOptions) error{config.WithRegion(s3Config.Region)}
    if s3Config.AccessKey != "" {
        opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
            s3Config.AccessKey,
            s3Config.SecretKey,
            "",
        )))
    }
    awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
    if err != nil {
        return nil, fmt.Errorf("failed to load AWS config: %w", err)
    }

    client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
        if s3Config.Endpoint != "" {
            o.BaseEndpoint = aws.String(s3Config.Endpoint)
            o.UsePathStyle = true
        }
    })

    // 验证 bucket 是否存在
    _, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
        Bucket: aws.String(s3Config.BucketName),
    })
    if err != nil {
        return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
    }

    return &S3Storage{
        client:     client,
        bucketName: s3Config.BucketName,
        prefix:     s3Config.Prefix,
        logger:     log,
    }, nil
}

func GetClient(logger logger.Logger) (*S3Storage, error) {
    return NewS3Storage(logger)
}
