// pkg/queue/queue.go
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/hibiken/asynq"
    "github.com/redis/go-redis/v9"
)

// TaskType 定义任务类型
const (
    TaskTypeRecognize = "screenshot:recognize"
)

// QueueName is the asynq queue recognition tasks are placed on.
const QueueName = "default"

// ErrSubscriptionClosed is returned by Wait after the subscription is closed.
var ErrSubscriptionClosed = errors.New("result subscription closed")

// Queue 接口定义
type Queue interface {
    Enqueue(ctx context.Context, task *RecognizeTask) error
    Subscribe(ctx context.Context, taskID string) (Subscription, error)
    Publish(ctx context.Context, result *RecognizeResult) error
    Cancel(ctx context.Context, taskID string) error
    Close() error
}

// Subscription delivers the single result of one recognition task.
type Subscription interface {
    Wait(ctx context.Context) (*RecognizeResult, error)
    Close() error
}

// RecognizeTask 识别任务
type RecognizeTask struct {
    ID        string    `json:"id"`
    Name      string    `json:"name"`
    MimeType  string    `json:"mimeType"`
    Image     []byte    `json:"image"`
    CreatedAt time.Time `json:"createdAt"`
}

// RecognizeResult 识别结果
type RecognizeResult struct {
    TaskID     string    `json:"taskId"`
    Text       string    `json:"text"`
    Error      string    `json:"error,omitempty"`
    FinishedAt time.Time `json:"finishedAt"`
}

// ResultChannel names the redis channel a task's result is published on.
func ResultChannel(taskID string) string {
    return fmt.Sprintf("screenshot:result:%s", taskID)
}

// QueueConfig 定义队列配置
type QueueConfig struct {
    RedisAddr      string
    RedisPassword  string
    RedisDB        int
    ProcessTimeout time.Duration
}

// AsynqQueue 实现
type AsynqQueue struct {
    client    *asynq.Client
    inspector *asynq.Inspector
    redis     *redis.Client
    timeout   time.Duration
}

// NewAsynqQueue 创建新的队列实例
func NewAsynqQueue(cfg *QueueConfig) (*AsynqQueue, error) {
    redisOpt := asynq.RedisClientOpt{
        Addr:     cfg.RedisAddr,
        Password: cfg.RedisPassword,
        DB:       cfg.RedisDB,
    }

    redisClient := redis.NewClient(&redis.Options{
        Addr:     cfg.RedisAddr,
        Password: cfg.RedisPassword,
        DB:       cfg.RedisDB,
    })
    if err := redisClient.Ping(context.Background()).Err(); err != nil {
        redisClient.Close()
        return nil, fmt.Errorf("failed to connect to redis: %w", err)
    }

    timeout := cfg.ProcessTimeout
    if timeout <= 0 {
        timeout = 10 * time.Minute
    }

    return &AsynqQueue{
        client:    asynq.NewClient(redisOpt),
        inspector: asynq.NewInspector(redisOpt),
        redis:     redisClient,
        timeout:   timeout,
    }, nil
}

// Enqueue 将任务加入队列
func (q *AsynqQueue) Enqueue(ctx context.Context, task *RecognizeTask) error {
    payload, err := json.Marshal(task)
    if err != nil {
        return fmt.Errorf("failed to marshal task: %w", err)
    }

    // failures are reported to the user, never retried
    opts := []asynq.Option{
        asynq.MaxRetry(0),
        asynq.Timeout(q.timeout),
        asynq.TaskID(task.ID),
        asynq.Queue(QueueName),
    }

    t := asynq.NewTask(TaskTypeRecognize, payload, opts...)
    if _, err := q.client.EnqueueContext(ctx, t); err != nil {
        return fmt.Errorf("failed to enqueue task: %w", err)
    }
    return nil
}

// Subscribe 订阅任务结果，须在 Enqueue 之前调用以免丢失消息
func (q *AsynqQueue) Subscribe(ctx context.Context, taskID string) (Subscription, error) {
    pubsub := q.redis.Subscribe(ctx, ResultChannel(taskID))
    // wait for the subscription confirmation so a fast worker cannot publish first
    if _, err := pubsub.Receive(ctx); err != nil {
        pubsub.Close()
        return nil, fmt.Errorf("failed to subscribe: %w", err)
    }
    return &redisSubscription{pubsub: pubsub}, nil
}

// Publish 发布任务结果
func (q *AsynqQueue) Publish(ctx context.Context, result *RecognizeResult) error {
    data, err := json.Marshal(result)
    if err != nil {
        return fmt.Errorf("failed to marshal result: %w", err)
    }
    if err := q.redis.Publish(ctx, ResultChannel(result.TaskID), data).Err(); err != nil {
        return fmt.Errorf("failed to publish result: %w", err)
    }
    return nil
}

// Cancel 删除尚未执行的任务
func (q *AsynqQueue) Cancel(ctx context.Context, taskID string) error {
    err := q.inspector.DeleteTask(QueueName, taskID)
    if err == nil || errors.Is(err, asynq.ErrTaskNotFound) {
        return nil
    }
    return fmt.Errorf("failed to cancel task: %w", err)
}

func (q *AsynqQueue) Close() error {
    return errors.Join(q.client.Close(), q.inspector.Close(), q.redis.Close())
}

type redisSubscription struct {
    pubsub *redis.PubSub
}

// Wait blocks until the result arrives or ctx ends.
func (s *redisSubscription) Wait(ctx context.Context) (*RecognizeResult, error) {
    select {
    case msg, ok := <-s.pubsub.Channel():
        if !ok {
            return nil, ErrSubscriptionClosed
        }
        return DecodeResult([]byte(msg.Payload))
    case <-ctx.Done():
        return nil, ctx.Err()
    }
}

func (s *redisSubscription) Close() error {
    return s.pubsub.Close()
}

// DecodeTask parses an asynq payload.
func DecodeTask(payload []byte) (*RecognizeTask, error) {
    var task RecognizeTask
    if err := json.Unmarshal(payload, &task); err != nil {
        return nil, fmt.Errorf("failed to unmarshal task: %w", err)
    }
    if task.ID == "" || len(task.Image) == 0 {
        return nil, fmt.Errorf("invalid task data: missing required fields")
    }
    return &task, nil
}

// DecodeResult parses a published result.
func DecodeResult(payload []byte) (*RecognizeResult, error) {
    var result RecognizeResult
    if err := json.Unmarshal(payload, &result); err != nil {
        return nil, fmt.Errorf("failed to unmarshal result: %w", err)
    }
    return &result, nil
}
