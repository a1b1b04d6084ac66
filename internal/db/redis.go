package db

import (
  "context"
  "time"

  "github.com/redis/go-redis/v9"

  "github.com/medibot-org/medibot-backend/internal/logger"
)

// NewRedisClient connects the optional classifier-result cache. A failed ping
// returns nil and the caller runs without caching.
func NewRedisClient(log *logger.Logger, address, password string) *redis.Client {
  ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
  defer cancel()

  client := redis.NewClient(&redis.Options{
    Addr:     address,
    Password: password,
  })
  if err := client.Ping(ctx).Err(); err != nil {
    log.Warn("Failed to connect to Redis, continuing without classifier cache", "address", address, "error", err)
    return nil
  }
  log.Info("Successfully connected to Redis :)", "address", address)
  return client
}
