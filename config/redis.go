package config

import (
    "sync"
    "time"
)

var (
    redisOnce   sync.Once
    redisConfig *RedisConfig
)

type RedisConfig struct {
    Addr           string
    Password       string
    DB             int
    Concurrency    int
    ProcessTimeout time.Duration
}

func GetRedisConfig() *RedisConfig {
    redisOnce.Do(func() {
        loadDotEnv()

        redisConfig = &RedisConfig{
            Addr:           "localhost:6379",
            Concurrency:    2,
            ProcessTimeout: 10 * time.Minute,
        }
        envString("REDIS_ADDR", &redisConfig.Addr)
        envString("REDIS_PASSWORD", &redisConfig.Password)
        envInt("REDIS_DB", &redisConfig.DB)
        envInt("WORKER_CONCURRENCY", &redisConfig.Concurrency)
        envDuration("WORKER_PROCESS_TIMEOUT", &redisConfig.ProcessTimeout)
    })
    return redisConfig
}
